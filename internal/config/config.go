// Package config defines environment-specific settings for the print relay agent.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Build variables, injected at compile time
var (
	BuildEnvironment = "local"
	BuildDate        = "unknown"
	BuildTime        = "unknown"
	// ServiceName is used for logging and as part of the log file path.
	ServiceName = "PrintRelay"
	// AuthToken is the shared secret clients must present on the connection URL.
	// Injected via ldflags; can be overridden at runtime with PRINT_RELAY_TOKEN.
	// If empty (and no hash is set), connections are accepted without token
	// validation (dev mode).
	AuthToken = ""
	// AuthTokenHashB64 is a base64-encoded bcrypt hash of the token, injected
	// via ldflags. When set it takes precedence over AuthToken, so release
	// builds never carry the cleartext secret.
	AuthTokenHashB64 = ""
	// ServerPort is the default port for the service, can be overridden by environment config.
	ServerPort = "8731"
)

// TokenEnvVar names the environment variable that overrides the compiled-in token.
const TokenEnvVar = "PRINT_RELAY_TOKEN"

// Environment holds environment-specific settings
type Environment struct {
	Name        string
	ServiceName string

	// Network. The listener is loopback-only: the relay serves a POS app on
	// the same host and the transport is unencrypted.
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Logging
	Verbose bool
}

// ListenAddr returns the host:port the service binds.
func (e Environment) ListenAddr() string {
	return e.Host + ":" + e.Port
}

// PortNumber returns the configured port as an integer, or 0 if unparseable.
func (e Environment) PortNumber() int {
	n, err := strconv.Atoi(e.Port)
	if err != nil {
		return 0
	}
	return n
}

// LogPath returns the full log file path for this environment.
// Uses the convention: <stateDir>/<ServiceName>/<ServiceName>.log
func (e Environment) LogPath(stateDir string) string {
	return filepath.Join(stateDir, e.ServiceName, e.ServiceName+".log")
}

// environments defines available deployment configurations
var environments = map[string]Environment{
	"prod": {
		Name:         "PRODUCTION",
		ServiceName:  ServiceName,
		Host:         "127.0.0.1",
		Port:         ServerPort,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		Verbose:      false,
	},
	"local": {
		Name:         "LOCAL",
		ServiceName:  ServiceName,
		Host:         "127.0.0.1",
		Port:         ServerPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		Verbose:      true,
	},
}

// GetEnvironment returns config for the specified environment.
func GetEnvironment(env string) Environment {
	cfg, ok := environments[env]
	if !ok {
		log.Printf("[!] Unknown environment '%s', defaulting to 'local'", env)
		cfg = environments["local"]
	}
	return cfg
}

// Token returns the effective shared secret: the PRINT_RELAY_TOKEN
// environment variable when set, otherwise the compiled-in value.
func Token() string {
	if v := os.Getenv(TokenEnvVar); v != "" {
		return v
	}
	return AuthToken
}
