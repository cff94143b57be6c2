// Package logging provides file-backed structured logging for tmplplay.
// The TUI owns the terminal, so nothing is written until Configure is called
// with a destination (--debug or [log] file in the config).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Category groups related log messages.
type Category string

const (
	CatApp       Category = "app"       // Startup and wiring
	CatSession   Category = "session"   // Compile session transitions
	CatDebounce  Category = "debounce"  // Timer scheduling
	CatHighlight Category = "highlight" // Highlighting and render cache
	CatStore     Category = "store"     // Persisted state
	CatUI        Category = "ui"        // View events
	CatWatch     Category = "watch"     // Source file watcher
)

const defaultLogFile = "tmplplay.log"

var (
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	root   = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}))
	output io.Closer
)

// Configure opens path for appending and routes all loggers to it. An empty
// path uses tmplplay.log in the working directory. The returned func closes
// the file.
func Configure(path string, debug bool) (func(), error) {
	if strings.TrimSpace(path) == "" {
		path = defaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	if debug {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	mu.Lock()
	root = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	output = f
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		if output != nil {
			_ = output.Close()
			output = nil
		}
		root = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: level}))
	}, nil
}

// SetOutput points logging at w. Tests use it to capture entries.
func SetOutput(w io.Writer, debug bool) {
	if debug {
		level.Set(slog.LevelDebug)
	}
	mu.Lock()
	root = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	mu.Unlock()
}

// For returns a logger tagged with cat. Call it after Configure; loggers
// taken earlier keep writing to the previous destination.
func For(cat Category) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return root.With("cat", string(cat))
}
