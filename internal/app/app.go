package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/five82/tmplplay/internal/config"
	"github.com/five82/tmplplay/internal/highlight"
	"github.com/five82/tmplplay/internal/logging"
	"github.com/five82/tmplplay/internal/prefs"
	"github.com/five82/tmplplay/internal/share"
	"github.com/five82/tmplplay/internal/state"
	"github.com/five82/tmplplay/internal/theme"
	"github.com/five82/tmplplay/internal/ui"
)

// Options configure the tmplplay application.
type Options struct {
	ConfigPath   string
	Saved        string // share link or bare payload
	StructFile   string
	TemplateFile string
	Theme        string // overrides the configured theme
	Debug        bool
}

// Env holds what every command needs once configuration is resolved.
type Env struct {
	Config   config.Config
	Store    prefs.Store
	Catalog  *theme.Catalog
	Renderer *highlight.Renderer
	Log      *slog.Logger

	closeStore func() error
	closeLog   func()
}

// Setup loads configuration, starts logging and opens the state store.
// Callers must Close the returned Env.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Debug {
		cfg.Log.Debug = true
	}
	if v := strings.TrimSpace(opts.Theme); v != "" {
		cfg.Theme = v
	}

	env := &Env{Config: cfg, closeLog: func() {}, closeStore: func() error { return nil }}
	if cfg.Log.File != "" {
		closeLog, err := logging.Configure(cfg.Log.File, cfg.Log.Debug)
		if err != nil {
			return nil, fmt.Errorf("configure logging: %w", err)
		}
		env.closeLog = closeLog
	}
	env.Log = logging.For(logging.CatApp)

	store, closeStore, err := prefs.Open(cfg.Store.Backend, cfg.Store.Path)
	if err != nil {
		// Persistence is best-effort; run without it.
		env.Log.Warn("state store unavailable", "backend", cfg.Store.Backend, "error", err)
	} else {
		env.closeStore = closeStore
	}
	env.Store = store

	catalog, err := theme.FromChroma(theme.DefaultID)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("load themes: %w", err)
	}
	env.Catalog = catalog
	env.Renderer = highlight.NewRenderer(nil)
	return env, nil
}

// Close releases the store and the log file.
func (e *Env) Close() error {
	err := e.closeStore()
	e.closeLog()
	return err
}

// Theme resolves the configured or persisted theme.
func (e *Env) Theme(persisted prefs.State) theme.Theme {
	id, ok := persisted.Lookup(prefs.ThemeKey)
	if !ok {
		id = e.Config.Theme
	}
	t, _ := e.Catalog.Resolve(id)
	return t
}

// Sources returns the buffers headless commands work on: the persisted
// buffers (or the examples), overridden by a share link and source files.
func (e *Env) Sources(opts Options) (structSrc, tmplSrc string, err error) {
	persisted := prefs.Read(e.Store)
	structSrc, tmplSrc = state.DefaultStruct, state.DefaultTemplate
	if v, ok := persisted.Lookup(prefs.StructKey); ok {
		structSrc = v
	}
	if v, ok := persisted.Lookup(prefs.TemplateKey); ok {
		tmplSrc = v
	}
	return applyOverrides(opts, structSrc, tmplSrc, e.Log)
}

// applyOverrides layers a share link and then source files over the buffers.
// A malformed link is ignored; unreadable files are errors.
func applyOverrides(opts Options, structSrc, tmplSrc string, log *slog.Logger) (string, string, error) {
	if link := strings.TrimSpace(opts.Saved); link != "" {
		if s, t, ok := share.Parse(link); ok {
			structSrc, tmplSrc = s, t
		} else {
			log.Warn("ignoring malformed share link")
		}
	}
	if opts.StructFile != "" {
		text, err := readSource(opts.StructFile)
		if err != nil {
			return "", "", err
		}
		structSrc = text
	}
	if opts.TemplateFile != "" {
		text, err := readSource(opts.TemplateFile)
		if err != nil {
			return "", "", err
		}
		tmplSrc = text
	}
	return structSrc, tmplSrc, nil
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

// Run boots the tmplplay TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	persisted, restore := prefs.LoadState(env.Store)
	session, err := state.New(state.Options{
		Catalog:   env.Catalog,
		Theme:     env.Config.Theme,
		Persisted: persisted,
		Store:     env.Store,
	})
	if err != nil {
		restore()
		return fmt.Errorf("start session: %w", err)
	}
	defer session.Close()

	snap := session.Snapshot()
	structSrc, tmplSrc, err := applyOverrides(opts, snap.StructSource, snap.TemplateSource, env.Log)
	if err != nil {
		restore()
		return err
	}
	if structSrc != snap.StructSource || tmplSrc != snap.TemplateSource {
		session.Replace(structSrc, tmplSrc)
	}

	files := SourceFiles{Struct: opts.StructFile, Template: opts.TemplateFile}
	if !files.Empty() {
		w, err := StartWatcher(ctx, session, files)
		if err != nil {
			restore()
			return err
		}
		defer w.Stop()
	}

	env.Log.Info("starting ui", "session", session.Key(), "theme", session.Snapshot().Theme)
	err = ui.Run(ui.Options{
		Context:      ctx,
		Session:      session,
		Catalog:      env.Catalog,
		Renderer:     env.Renderer,
		ShareBase:    env.Config.ShareBase,
		OnFirstFrame: restore,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
