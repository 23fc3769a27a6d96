package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/natefinch/lumberjack.v2"
)

func TestFilteredLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")
	l := &FilteredLogger{sink: &lumberjack.Logger{Filename: path}}

	SetVerbose(false)
	defer SetVerbose(true)
	if GetVerbose() {
		t.Fatal("SetVerbose(false) did not take")
	}

	if _, err := l.Write([]byte("[WS] ➕ Client connected (total: 1)\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := l.Write([]byte("[STOP] 🛑 Service shutting down...\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)

	if strings.Contains(content, "Client connected") {
		t.Error("non-critical line must be discarded when verbose=false")
	}
	if !strings.Contains(content, "shutting down") {
		t.Error("critical line must reach the log file")
	}

	SetVerbose(true)
	if _, err := l.Write([]byte("[WS] ➕ Client connected (total: 2)\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, _ = os.ReadFile(path)
	if !strings.Contains(string(data), "total: 2") {
		t.Error("verbose=true must let non-critical lines through")
	}
}
