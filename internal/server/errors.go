package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// humanizeSpoolError creates a clean error message for the POS client UI
func humanizeSpoolError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "PRINTER: Print command timed out - check if the printer is responding"
	}

	errStr := err.Error()

	// Common error patterns and their friendly messages
	errorMappings := []struct {
		pattern string
		message string
	}{
		{"executable file not found", "SPOOLER: Print command not available on this system"},
		{"does not exist", "PRINTER: Printer not found - check the printer name"},
		{"the printer name is invalid", "PRINTER: Printer not found - check the printer name"},
		{"unknown printer", "PRINTER: Printer not found - check the printer name"},
		{"the network name cannot be found", "PRINTER: Printer share not found - check the printer name"},
		{"writing spool file", "SPOOLER: Could not write the temporary print file"},
		{"access is denied", "PRINTER: Access denied to printer share"},
		{"permission denied", "PRINTER: Permission denied by the spooler"},
		{"signal: killed", "PRINTER: Print command timed out - check if the printer is responding"},
	}

	for _, mapping := range errorMappings {
		if strings.Contains(strings.ToLower(errStr), mapping.pattern) {
			return mapping.message
		}
	}

	return fmt.Sprintf("PRINT: %s", errStr)
}
