package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/tmplplay/internal/prefs"
	"github.com/five82/tmplplay/internal/share"
	"github.com/five82/tmplplay/internal/theme"
)

// Config holds tmplplay's settings.
type Config struct {
	Theme     string
	ShareBase string
	Store     Store
	Log       Log
}

// Store selects the persisted-state backend.
type Store struct {
	Backend string
	Path    string
}

// Log configures the debug log file.
type Log struct {
	File  string
	Debug bool
}

const (
	defaultConfigPath = "~/.config/tmplplay/config.toml"
	defaultLogFile    = "~/.local/state/tmplplay/tmplplay.log"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Theme:     theme.DefaultID,
		ShareBase: share.DefaultBase,
		Store:     Store{Backend: prefs.BackendFile, Path: mustExpand(prefs.DefaultPath)},
		Log:       Log{File: mustExpand(defaultLogFile)},
	}
}

// Load reads the config at path, falling back to defaults when it is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Theme     string `toml:"theme"`
		ShareBase string `toml:"share_base"`
		Store     struct {
			Backend string `toml:"backend"`
			Path    string `toml:"path"`
		} `toml:"store"`
		Log struct {
			File  string `toml:"file"`
			Debug bool   `toml:"debug"`
		} `toml:"log"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Theme); v != "" {
		cfg.Theme = v
	}
	if v := strings.TrimSpace(raw.ShareBase); v != "" {
		cfg.ShareBase = v
	}

	switch backend := strings.ToLower(strings.TrimSpace(raw.Store.Backend)); backend {
	case "", prefs.BackendFile:
	case prefs.BackendSQLite:
		cfg.Store = Store{Backend: backend, Path: mustExpand(prefs.DefaultSQLitePath)}
	case prefs.BackendMemory:
		cfg.Store = Store{Backend: backend}
	default:
		return Config{}, fmt.Errorf("parse config: unknown store backend %q", raw.Store.Backend)
	}
	if v := strings.TrimSpace(raw.Store.Path); v != "" && cfg.Store.Backend != prefs.BackendMemory {
		cfg.Store.Path = mustExpand(v)
	}

	if v := strings.TrimSpace(raw.Log.File); v != "" {
		cfg.Log.File = mustExpand(v)
	}
	cfg.Log.Debug = raw.Log.Debug

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	return prefs.ExpandPath(path)
}
