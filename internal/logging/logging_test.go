package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFor_TagsCategory(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}, false) })

	For(CatSession).Debug("compiled", "duration", "1ms")

	out := buf.String()
	if !strings.Contains(out, "cat=session") || !strings.Contains(out, "msg=compiled") {
		t.Fatalf("log line = %q", out)
	}
}

func TestConfigure_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tmplplay.log")
	closeLog, err := Configure(path, false)
	if err != nil {
		t.Fatalf("Configure: %v", err)
	}

	log := For(CatApp)
	log.Debug("hidden")
	log.Info("visible", "k", "v")
	closeLog()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("debug line written without debug: %q", data)
	}
	if !strings.Contains(string(data), "msg=visible") || !strings.Contains(string(data), "cat=app") {
		t.Fatalf("log file = %q", data)
	}
}
