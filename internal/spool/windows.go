package spool

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// WindowsPrinter drives the Windows spooler. Discovery enumerates
// Win32_Printer through PowerShell as JSON; printing is a raw binary copy of
// the buffer to the printer's local share.
//
// The enumeration path carries no live status signal, so every printer is
// reported READY/connected. A known fidelity gap versus the POSIX variant;
// do not upgrade it without a real status source.
type WindowsPrinter struct {
	spoolDir string
	run      runnerFunc
}

// NewWindowsPrinter creates the Windows variant.
func NewWindowsPrinter() *WindowsPrinter {
	return &WindowsPrinter{
		spoolDir: os.TempDir(),
		run:      runCommand,
	}
}

// Platform implements PlatformPrinter.
func (p *WindowsPrinter) Platform() string {
	return "windows"
}

// Discover implements PlatformPrinter via PowerShell + ConvertTo-Json.
func (p *WindowsPrinter) Discover(ctx context.Context) []PrinterInfo {
	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	out, err := p.run(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command",
		"Get-CimInstance -ClassName Win32_Printer | Select-Object Name,Default | ConvertTo-Json -Compress")
	if err != nil {
		log.Printf("[PRINTERS] ⚠️ Win32_Printer enumeration failed: %v", err)
		return []PrinterInfo{}
	}

	printers, err := parseWindowsPrinters(out)
	if err != nil {
		log.Printf("[PRINTERS] ⚠️ Could not parse printer enumeration: %v", err)
		return []PrinterInfo{}
	}
	return printers
}

// Route implements PlatformPrinter: transient file + raw copy to the printer
// share. Arguments go to cmd.exe as an array; no shell string is built.
func (p *WindowsPrinter) Route(ctx context.Context, printerName string, buf []byte) error {
	path, err := writeSpoolFile(p.spoolDir, buf)
	if err != nil {
		return err
	}
	defer removeSpoolFile(path)

	ctx, cancel := context.WithTimeout(ctx, printTimeout)
	defer cancel()

	share := `\\localhost\` + printerName
	out, err := p.run(ctx, "cmd", "/C", "copy", "/B", path, share)
	if err != nil {
		return spoolError("copy", out, err)
	}
	return nil
}

// winPrinterEntry is the subset of Win32_Printer the relay reads.
type winPrinterEntry struct {
	Name    string `json:"Name"`
	Default bool   `json:"Default"`
}

// parseWindowsPrinters decodes ConvertTo-Json output. PowerShell serializes
// a single result as a bare object rather than a one-element array; coerce.
func parseWindowsPrinters(out []byte) ([]PrinterInfo, error) {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return []PrinterInfo{}, nil
	}

	var entries []winPrinterEntry
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, fmt.Errorf("parsing printer array: %w", err)
		}
	} else {
		var single winPrinterEntry
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return nil, fmt.Errorf("parsing printer object: %w", err)
		}
		entries = []winPrinterEntry{single}
	}

	printers := make([]PrinterInfo, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		printers = append(printers, PrinterInfo{
			Name:        e.Name,
			IsDefault:   e.Default,
			Status:      StatusReady,
			IsConnected: true,
		})
	}
	return printers, nil
}
