// Package daemon hosts the relay as an OS service: it bootstraps logging,
// builds the Service, and drives its lifecycle.
package daemon

import (
	"log"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger state
var (
	logConfig    = struct{ Verbose bool }{Verbose: true}
	logConfigMux sync.RWMutex
	logFilePath  string
)

// Non-critical prefixes (filtered when verbose=false)
var nonCriticalPrefixes = []string{
	"[WS] ➕ Client connected",
	"[WS] ➖ Client disconnected",
	"[WS] 🖨️ Job",
	"[WS] ✅ Job",
	"[PRINTERS]    •",
}

// FilteredLogger implements io.Writer with verbosity filtering in front of
// the rotating file sink.
type FilteredLogger struct {
	sink *lumberjack.Logger
}

// Write filters log messages based on verbosity
func (l *FilteredLogger) Write(p []byte) (n int, err error) {
	logConfigMux.RLock()
	verbose := logConfig.Verbose
	logConfigMux.RUnlock()

	if !verbose {
		msg := string(p)
		for _, prefix := range nonCriticalPrefixes {
			if strings.Contains(msg, prefix) {
				return len(p), nil // Discard silently
			}
		}
	}

	return l.sink.Write(p)
}

// InitLogger points the standard logger at an append-only, size-rotated
// file. The host supplies the path; lumberjack creates missing directories.
func InitLogger(path string, verbose bool) error {
	logConfigMux.Lock()
	logConfig.Verbose = verbose
	logFilePath = path
	logConfigMux.Unlock()

	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // MB
		MaxBackups: 2,
		MaxAge:     28, // days
	}

	log.SetOutput(&FilteredLogger{sink: sink})
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	return nil
}

// SetVerbose changes the verbosity level at runtime
func SetVerbose(v bool) {
	logConfigMux.Lock()
	logConfig.Verbose = v
	logConfigMux.Unlock()
	log.Printf("[OK] Log verbosity: %v", v)
}

// GetVerbose returns current verbosity level
func GetVerbose() bool {
	logConfigMux.RLock()
	defer logConfigMux.RUnlock()
	return logConfig.Verbose
}

// LogFilePath returns the path the logger writes to.
func LogFilePath() string {
	logConfigMux.RLock()
	defer logConfigMux.RUnlock()
	return logFilePath
}
