// Package spool talks to the host OS print spooler: it enumerates installed
// printers and pushes raw ESC/POS buffers to them through platform spool
// commands.
package spool

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Status classifies a printer's spooler state.
type Status string

const (
	StatusReady    Status = "READY"
	StatusOffline  Status = "OFFLINE"
	StatusPrinting Status = "PRINTING"
)

// PrinterInfo is a snapshot of one printer known to the OS spooler.
// Recomputed on every discovery call; never cached or diffed.
type PrinterInfo struct {
	Name        string `json:"name"`
	IsDefault   bool   `json:"isDefault"`
	Status      Status `json:"status"`
	IsConnected bool   `json:"isConnected"`
}

// PlatformPrinter is the OS-specific printing capability. One implementation
// is selected at startup; callers never re-branch on the platform.
type PlatformPrinter interface {
	// Discover returns the printers known to the OS spooler. It never
	// fails: command or parse errors degrade to an empty list (logged).
	Discover(ctx context.Context) []PrinterInfo

	// Route spools a raw buffer to the named printer via a transient file
	// and the platform's raw-print command, with a bounded timeout. The
	// transient file is removed whether or not the command succeeds.
	Route(ctx context.Context, printerName string, buf []byte) error

	// Platform names the host OS variant ("darwin", "linux", "windows").
	Platform() string
}

// Execution bounds for external spooler commands.
const (
	discoverTimeout = 5 * time.Second
	printTimeout    = 30 * time.Second
)

// ForHost selects the PlatformPrinter for the running OS. Anything that is
// not Windows is treated as a CUPS-style POSIX host.
func ForHost() PlatformPrinter {
	if runtime.GOOS == "windows" {
		return NewWindowsPrinter()
	}
	return NewPosixPrinter(runtime.GOOS)
}

// runnerFunc executes an external command and returns its combined output.
// Indirected so tests can substitute a fake spooler.
type runnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// runCommand is the production runner. Arguments are passed as a structured
// array, never interpolated into a shell string, so printer names containing
// shell metacharacters cannot alter the command.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// writeSpoolFile persists a buffer to a uniquely named transient file in dir.
// Uniqueness comes from the nanosecond timestamp plus PID; two jobs landing
// on the same clock tick in the same process is a known narrow race.
func writeSpoolFile(dir string, buf []byte) (string, error) {
	name := fmt.Sprintf("print-relay-%d-%d.bin", time.Now().UnixNano(), os.Getpid())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf, 0600); err != nil {
		return "", fmt.Errorf("writing spool file: %w", err)
	}
	return path, nil
}

// removeSpoolFile deletes a transient file. Failure is logged, never surfaced.
func removeSpoolFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[SPOOL] ⚠️ Could not remove transient file %s: %v", path, err)
	}
}

// spoolError folds a non-zero exit (or timeout kill) and the command's
// output into one failure the dispatcher can report.
func spoolError(cmd string, out []byte, err error) error {
	detail := strings.TrimSpace(string(out))
	if detail != "" {
		return fmt.Errorf("%s failed: %w: %s", cmd, err, detail)
	}
	return fmt.Errorf("%s failed: %w", cmd, err)
}
