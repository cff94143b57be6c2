// Package prefs persists tmplplay's editor state: the selected theme and the
// two source buffers. Values are stored JSON-string encoded under fixed keys
// so arbitrary text survives any backend. Every failure here is
// best-effort; callers log and carry on.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Recognised keys.
const (
	ThemeKey    = "tmplplay-theme"
	StructKey   = "tmplplay-struct"
	TemplateKey = "tmplplay-template"
)

// Keys lists the recognised keys in load order.
var Keys = []string{ThemeKey, StructKey, TemplateKey}

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("prefs: key not found")

// Store is a best-effort text key/value store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// State holds the decoded values of the recognised keys that were present.
type State map[string]string

// Lookup returns the value for key and whether it was present.
func (s State) Lookup(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Encode returns text as a JSON string literal.
func Encode(text string) string {
	b, _ := json.Marshal(text)
	return string(b)
}

// Decode parses a JSON string literal.
func Decode(raw string) (string, error) {
	var text string
	if err := json.Unmarshal([]byte(raw), &text); err != nil {
		return "", fmt.Errorf("decode value: %w", err)
	}
	return text, nil
}

// Backends accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the store for backend. The close func is never nil.
func Open(backend, path string) (Store, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		fs, err := NewFileStore(path)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil
	case BackendSQLite:
		if strings.TrimSpace(path) == "" {
			path = DefaultSQLitePath
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return db, db.Close, nil
	case BackendMemory:
		return NewMemoryStore(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown store backend %q", backend)
}

// Save stores text under key. A nil store is a no-op.
func Save(store Store, key, text string) error {
	if store == nil {
		return nil
	}
	if err := store.Set(key, Encode(text)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Read returns the decoded recognised keys without touching the store.
// Corrupt values are skipped.
func Read(store Store) State {
	state := State{}
	if store == nil {
		return state
	}
	for _, key := range Keys {
		value, err := store.Get(key)
		if err != nil {
			continue
		}
		if text, err := Decode(value); err == nil {
			state[key] = text
		}
	}
	return state
}

// LoadState reads the recognised keys and removes them from the store, so a
// state that crashes the program on startup is not loaded again. The returned
// restore func writes the valid values back; call it once the first frame
// has been shown. Keys written in the meantime are left alone. Corrupt values
// are dropped.
func LoadState(store Store) (State, func()) {
	state := State{}
	if store == nil {
		return state, func() {}
	}

	raw := map[string]string{}
	for _, key := range Keys {
		value, err := store.Get(key)
		if err != nil {
			continue
		}
		_ = store.Delete(key)
		text, err := Decode(value)
		if err != nil {
			continue
		}
		raw[key] = value
		state[key] = text
	}

	restored := false
	return state, func() {
		if restored {
			return
		}
		restored = true
		for _, key := range Keys {
			value, ok := raw[key]
			if !ok {
				continue
			}
			if _, err := store.Get(key); err == nil {
				continue
			}
			_ = store.Set(key, value)
		}
	}
}
