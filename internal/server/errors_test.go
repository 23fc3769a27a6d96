package server

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestHumanizeSpoolError(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected string
	}{
		{
			name:     "Command missing",
			input:    errors.New(`exec: "lp": executable file not found in $PATH`),
			expected: "SPOOLER: Print command not available on this system",
		},
		{
			name:     "Unknown CUPS printer",
			input:    errors.New("lp failed: exit status 1: lp: The printer or class does not exist."),
			expected: "PRINTER: Printer not found - check the printer name",
		},
		{
			name:     "Windows bad share",
			input:    errors.New("copy failed: exit status 1: The network name cannot be found."),
			expected: "PRINTER: Printer share not found - check the printer name",
		},
		{
			name:     "Timeout",
			input:    fmt.Errorf("lp failed: %w", context.DeadlineExceeded),
			expected: "PRINTER: Print command timed out - check if the printer is responding",
		},
		{
			name:     "Spool file write failure",
			input:    errors.New("writing spool file: permission denied"),
			expected: "SPOOLER: Could not write the temporary print file",
		},
		{
			name:     "Unmapped error falls through",
			input:    errors.New("printer caught fire"),
			expected: "PRINT: printer caught fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := humanizeSpoolError(tt.input); got != tt.expected {
				t.Errorf("humanizeSpoolError(%v) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}
