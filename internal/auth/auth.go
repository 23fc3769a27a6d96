// Package auth validates the shared-secret token presented on each
// WebSocket connection URL.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"log"

	"golang.org/x/crypto/bcrypt"
)

// Validator checks connection tokens against the configured secret.
// Two modes exist: cleartext exact match, and a bcrypt-hash mode so release
// builds do not carry the cleartext secret. The hash takes precedence.
type Validator struct {
	token   string
	hashB64 string
}

// NewValidator creates a validator from the compiled-in (or env-overridden)
// token and optional base64 bcrypt hash.
func NewValidator(token, hashB64 string) *Validator {
	v := &Validator{token: token, hashB64: hashB64}
	log.Printf("[i] Token validator initialized (enabled=%v)", v.Enabled())
	return v
}

// Enabled returns true if a token or token hash was configured.
func (v *Validator) Enabled() bool {
	return v.token != "" || v.hashB64 != ""
}

// Validate reports whether candidate matches the configured secret.
// With no secret configured, all candidates pass (dev mode).
func (v *Validator) Validate(candidate string) bool {
	if !v.Enabled() {
		log.Println("[!] AUTH DISABLED: No token configured (dev mode)")
		return true
	}

	if v.hashB64 != "" {
		hashBytes, err := base64.StdEncoding.DecodeString(v.hashB64)
		if err != nil {
			log.Printf("[X] Failed to decode token hash from base64: %v", err)
			return false
		}
		return bcrypt.CompareHashAndPassword(hashBytes, []byte(candidate)) == nil
	}

	return subtle.ConstantTimeCompare([]byte(candidate), []byte(v.token)) == 1
}
