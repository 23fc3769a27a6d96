package spool

import (
	"context"
	"log"
	"os"
	"strings"
)

// PosixPrinter drives CUPS-style spoolers on macOS and Linux. Discovery goes
// through lpstat; raw printing through lpr (darwin) or lp (linux).
type PosixPrinter struct {
	goos     string
	spoolDir string
	run      runnerFunc
}

// NewPosixPrinter creates the POSIX variant for the given GOOS value.
func NewPosixPrinter(goos string) *PosixPrinter {
	return &PosixPrinter{
		goos:     goos,
		spoolDir: os.TempDir(),
		run:      runCommand,
	}
}

// Platform implements PlatformPrinter.
func (p *PosixPrinter) Platform() string {
	return p.goos
}

// Discover implements PlatformPrinter via `lpstat -d` / `lpstat -p`.
func (p *PosixPrinter) Discover(ctx context.Context) []PrinterInfo {
	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	// A missing or failing default-destination lookup means "no default",
	// not an error.
	defaultName := ""
	if out, err := p.run(ctx, "lpstat", "-d"); err == nil {
		defaultName = parseDefaultDestination(string(out))
	} else {
		log.Printf("[PRINTERS] ⚠️ lpstat -d failed, assuming no default: %v", err)
	}

	out, err := p.run(ctx, "lpstat", "-p")
	if err != nil {
		log.Printf("[PRINTERS] ⚠️ lpstat -p failed: %v", err)
		return []PrinterInfo{}
	}

	return parsePrinterLines(string(out), defaultName)
}

// Route implements PlatformPrinter: transient file + lpr/lp raw spool.
func (p *PosixPrinter) Route(ctx context.Context, printerName string, buf []byte) error {
	path, err := writeSpoolFile(p.spoolDir, buf)
	if err != nil {
		return err
	}
	defer removeSpoolFile(path)

	ctx, cancel := context.WithTimeout(ctx, printTimeout)
	defer cancel()

	// Both commands bypass the driver with -o raw; the buffer reaches the
	// device byte for byte.
	var out []byte
	switch p.goos {
	case "darwin":
		out, err = p.run(ctx, "lpr", "-P", printerName, "-o", "raw", path)
		if err != nil {
			return spoolError("lpr", out, err)
		}
	default:
		out, err = p.run(ctx, "lp", "-d", printerName, "-o", "raw", path)
		if err != nil {
			return spoolError("lp", out, err)
		}
	}
	return nil
}

// parseDefaultDestination extracts the default printer name from `lpstat -d`
// output ("system default destination: NAME"). Returns "" when no default
// is configured or the output is unrecognized.
func parseDefaultDestination(out string) string {
	line := strings.TrimSpace(out)
	if line == "" || strings.Contains(strings.ToLower(line), "no system default") {
		return ""
	}
	idx := strings.LastIndex(line, ":")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(line[idx+1:])
}

// parsePrinterLines maps `lpstat -p` output to PrinterInfo entries, in
// command order. Each printer line reads like:
//
//	printer Epson_TM is idle.  enabled since Mon 01 Jan 2026 ...
//	printer Epson_TM now printing Epson_TM-42.  enabled since ...
//	printer Epson_TM disabled since ...
func parsePrinterLines(out, defaultName string) []PrinterInfo {
	printers := []PrinterInfo{}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "printer" {
			continue
		}
		name := fields[1]

		lower := strings.ToLower(line)
		var status Status
		switch {
		case strings.Contains(lower, "idle"):
			status = StatusReady
		case strings.Contains(lower, "printing"):
			status = StatusPrinting
		case strings.Contains(lower, "enabled"):
			status = StatusReady
		default:
			status = StatusOffline
		}

		printers = append(printers, PrinterInfo{
			Name:        name,
			IsDefault:   name == defaultName,
			Status:      status,
			IsConnected: status != StatusOffline,
		})
	}

	return printers
}
