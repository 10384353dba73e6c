package logx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"catalog-admin/internal/config"
)

func TestFileOutputWritesJSON(t *testing.T) {
	dir := t.TempDir()
	l, closer, err := New(config.Config{ConfigDir: dir, LogLevel: "info", LogOutput: "file"}, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.WithField("path", "/users").Info("api request")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "logs", FileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"path":"/users"`) {
		t.Fatalf("expected JSON entry; got %s", b)
	}
}

func TestVerboseGoesToStderrAtDebug(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(config.Config{ConfigDir: t.TempDir(), LogLevel: "warn", LogOutput: "file"}, Options{Verbose: true, Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("fetched")
	if !strings.Contains(buf.String(), "fetched") {
		t.Fatalf("expected debug line on stderr; got %q", buf.String())
	}
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(config.Config{LogLevel: "chatty", LogOutput: "stderr"}, Options{Stderr: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
