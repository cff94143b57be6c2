package state

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/tmplplay/internal/compiler"
	"github.com/five82/tmplplay/internal/debounce"
	"github.com/five82/tmplplay/internal/logging"
	"github.com/five82/tmplplay/internal/prefs"
	"github.com/five82/tmplplay/internal/theme"
)

// QuietPeriod is how long a buffer must stay unedited before it is compiled.
const QuietPeriod = 500 * time.Millisecond

// ErrThemeNotFound is returned by OnThemeChange for ids outside the catalog.
var ErrThemeNotFound = errors.New("theme not found")

// ErrNoCatalog is returned by New without a catalog.
var ErrNoCatalog = errors.New("session needs a theme catalog")

// Options configures a Session.
type Options struct {
	Catalog *theme.Catalog
	// Theme is the preferred theme when none was persisted.
	Theme string
	// Persisted holds values loaded from the store.
	Persisted prefs.State
	// Store receives best-effort writes. Nil disables persistence.
	Store     prefs.Store
	Compile   compiler.Func
	Scheduler *debounce.Scheduler
}

// Session owns the current Snapshot and drives recompilation.
type Session struct {
	key       string
	catalog   *theme.Catalog
	store     prefs.Store
	compile   compiler.Func
	scheduler *debounce.Scheduler
	log       *slog.Logger

	mu          sync.Mutex
	snap        Snapshot
	compileSeq  uint64
	appliedSeq  uint64
	closed      bool
	subscribers []func(Snapshot)
}

// New resolves the initial theme and sources and compiles them once. The
// returned session is Idle.
func New(opts Options) (*Session, error) {
	if opts.Catalog == nil {
		return nil, ErrNoCatalog
	}
	s := &Session{
		key:       uuid.NewString(),
		catalog:   opts.Catalog,
		store:     opts.Store,
		compile:   opts.Compile,
		scheduler: opts.Scheduler,
		log:       logging.For(logging.CatSession),
	}
	if s.compile == nil {
		s.compile = compiler.Compile
	}
	if s.scheduler == nil {
		s.scheduler = debounce.New(nil)
	}

	snap := Snapshot{StructSource: DefaultStruct, TemplateSource: DefaultTemplate}
	if v, ok := opts.Persisted.Lookup(prefs.StructKey); ok {
		snap.StructSource = v
	}
	if v, ok := opts.Persisted.Lookup(prefs.TemplateKey); ok {
		snap.TemplateSource = v
	}

	id, persisted := opts.Persisted.Lookup(prefs.ThemeKey)
	if !persisted {
		id = opts.Theme
	}
	resolved, found := s.catalog.Resolve(id)
	snap.Theme = resolved.ID
	if !found && persisted {
		s.log.Info("persisted theme not in catalog, using default", "theme", id, "default", resolved.ID)
		s.persist(prefs.ThemeKey, resolved.ID)
	}

	seq := s.nextSeq()
	snap.Compiled = s.run(snap.StructSource, snap.TemplateSource)
	s.appliedSeq = seq
	s.snap = snap
	return s, nil
}

// Key identifies the session's debounce slot.
func (s *Session) Key() string {
	return s.key
}

// Snapshot returns the current snapshot.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn to receive snapshots published by timer compiles.
// fn runs on the timer goroutine.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// OnSourceEdit replaces one buffer and arms a compile after QuietPeriod,
// superseding any compile already pending. The returned snapshot still
// shows the previous generated code.
func (s *Session) OnSourceEdit(which Source, text string) Snapshot {
	s.mu.Lock()
	if s.closed {
		snap := s.snap
		s.mu.Unlock()
		return snap
	}
	next := s.snap.withSource(which, text)
	next.Pending = s.scheduler.Reschedule(s.key, QuietPeriod, s.fire)
	s.snap = next
	s.mu.Unlock()

	s.log.Debug("source edited", "which", which, "len", len(text))
	s.persist(sourceKey(which), text)
	return next
}

// Reset restores the built-in text of which through the edit path.
func (s *Session) Reset(which Source) Snapshot {
	return s.OnSourceEdit(which, Default(which))
}

// OnThemeChange switches theme. Unknown ids keep the current theme and
// return ErrThemeNotFound. No recompile happens and a pending compile stays
// armed.
func (s *Session) OnThemeChange(id string) (Snapshot, error) {
	if _, ok := s.catalog.Lookup(id); !ok {
		return s.Snapshot(), fmt.Errorf("%w: %q", ErrThemeNotFound, id)
	}
	s.mu.Lock()
	next := s.snap
	next.Theme = id
	s.snap = next
	s.mu.Unlock()

	s.persist(prefs.ThemeKey, id)
	return next, nil
}

// OnTimerFire compiles the current sources if h is the pending handle.
// Any other handle is stale and ignored.
func (s *Session) OnTimerFire(h debounce.Handle) Snapshot {
	s.mu.Lock()
	if s.closed || h.IsZero() || s.snap.Pending != h {
		snap := s.snap
		s.mu.Unlock()
		s.log.Debug("ignored stale timer", "handle", h.Key())
		return snap
	}
	structSrc, tmplSrc := s.snap.StructSource, s.snap.TemplateSource
	seq := s.nextSeq()
	s.mu.Unlock()

	compiled := s.run(structSrc, tmplSrc)

	s.mu.Lock()
	next := s.snap
	if seq > s.appliedSeq {
		next.Compiled = compiled
		s.appliedSeq = seq
	}
	// An edit during the compile armed a new timer; keep it.
	if next.Pending == h {
		next.Pending = debounce.Handle{}
	}
	s.snap = next
	subs := append(([]func(Snapshot))(nil), s.subscribers...)
	s.mu.Unlock()

	s.log.Debug("compiled", "duration", compiled.Duration, "stale", next.Stale())
	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Replace swaps in both buffers at once and compiles them immediately. Any
// pending compile is cancelled.
func (s *Session) Replace(structSource, templateSource string) Snapshot {
	s.mu.Lock()
	if s.closed {
		snap := s.snap
		s.mu.Unlock()
		return snap
	}
	s.scheduler.Cancel(s.snap.Pending)
	next := s.snap
	next.StructSource, next.TemplateSource = structSource, templateSource
	next.Pending = debounce.Handle{}
	s.snap = next
	seq := s.nextSeq()
	s.mu.Unlock()

	compiled := s.run(structSource, templateSource)

	s.mu.Lock()
	next = s.snap
	if seq > s.appliedSeq {
		next.Compiled = compiled
		s.appliedSeq = seq
	}
	s.snap = next
	s.mu.Unlock()

	s.persist(prefs.StructKey, structSource)
	s.persist(prefs.TemplateKey, templateSource)
	return next
}

// Close cancels any pending compile. Later events are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.scheduler.Cancel(s.snap.Pending)
	s.snap.Pending = debounce.Handle{}
}

func (s *Session) fire(h debounce.Handle) {
	s.OnTimerFire(h)
}

// nextSeq must be called with mu held, or before the session is shared.
func (s *Session) nextSeq() uint64 {
	s.compileSeq++
	return s.compileSeq
}

// run calls the compiler and times it. A panicking compiler is reported as
// diagnostic text.
func (s *Session) run(structSrc, tmplSrc string) (c Compilation) {
	c = Compilation{Struct: structSrc, Template: tmplSrc}
	start := time.Now()
	defer func() {
		c.Duration = time.Since(start)
		if r := recover(); r != nil {
			s.log.Error("compiler panicked", "panic", r)
			c.Code = fmt.Sprintf("error: compiler panicked: %v", r)
		}
	}()
	c.Code = s.compile(structSrc, tmplSrc)
	return c
}

func (s *Session) persist(key, text string) {
	if err := prefs.Save(s.store, key, text); err != nil {
		s.log.Debug("persist failed", "key", key, "error", err)
	}
}

func sourceKey(which Source) string {
	if which == TemplateSource {
		return prefs.TemplateKey
	}
	return prefs.StructKey
}
