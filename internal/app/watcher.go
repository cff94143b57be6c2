package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/five82/tmplplay/internal/logging"
	"github.com/five82/tmplplay/internal/state"
)

// SourceFiles binds buffers to files on disk. Empty paths are unbound.
type SourceFiles struct {
	Struct   string
	Template string
}

// Empty reports whether no file is bound.
func (f SourceFiles) Empty() bool {
	return f.Struct == "" && f.Template == ""
}

// Watcher feeds external writes to bound files into a session. The session's
// debounce coalesces bursts, so the watcher itself does not debounce. A write
// is not applied while the buffer holds edits the file never had.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	session   *state.Session
	files     map[string]state.Source // absolute path -> buffer
	last      map[string]string
	log       *slog.Logger
	done      chan struct{}
	stopped   chan struct{}
}

// StartWatcher watches the directories holding files and returns
// immediately. Directories are watched rather than files so editors that
// save by rename keep being seen.
func StartWatcher(ctx context.Context, session *state.Session, files SourceFiles) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fsWatcher: fsw,
		session:   session,
		files:     map[string]state.Source{},
		last:      map[string]string{},
		log:       logging.For(logging.CatWatch),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	bind := func(path string, which state.Source) error {
		if path == "" {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		w.files[abs] = which
		if data, err := os.ReadFile(abs); err == nil {
			w.last[abs] = string(data)
		}
		dir := filepath.Dir(abs)
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
		return nil
	}
	if err := bind(files.Struct, state.StructSource); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	if err := bind(files.Template, state.TemplateSource); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	go w.loop(ctx)
	return w, nil
}

// Stop terminates the watcher and releases resources. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fsWatcher.Close()
	<-w.stopped
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.stopped)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)

		case <-ctx.Done():
			return

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	path, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	which, ok := w.files[path]
	if !ok {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// Mid-rename; the following create event carries the content.
		w.log.Debug("read watched file", "path", path, "error", err)
		return
	}
	text := string(data)
	prev := w.last[path]
	if text == prev {
		return
	}
	w.last[path] = text
	if cur := w.session.Snapshot().Source(which); cur != prev && cur != text {
		w.log.Warn("source file changed under unsaved edits, keeping buffer", "path", path, "which", which)
		return
	}
	w.log.Debug("source file changed", "path", path, "which", which)
	w.session.OnSourceEdit(which, text)
}
