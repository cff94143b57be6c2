// Package debounce coalesces bursts of calls into one deferred action per key.
package debounce

import (
	"log/slog"
	"sync"
	"time"

	"github.com/five82/tmplplay/internal/logging"
)

// Handle identifies one scheduled action. The zero Handle means none.
type Handle struct {
	key string
	gen uint64
}

// IsZero reports whether h refers to no action.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

// Key returns the key the action was scheduled under.
func (h Handle) Key() string {
	return h.key
}

// Clock schedules deferred functions.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled function that can be stopped.
type Timer interface {
	Stop() bool
}

// RealClock uses the time package.
type RealClock struct{}

// AfterFunc wraps time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type slot struct {
	gen   uint64
	timer Timer
}

// Scheduler owns one pending slot per key.
type Scheduler struct {
	clock Clock
	log   *slog.Logger

	mu    sync.Mutex
	gen   uint64
	slots map[string]slot
}

// New returns a Scheduler. A nil clock uses RealClock.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{
		clock: clock,
		log:   logging.For(logging.CatDebounce),
		slots: make(map[string]slot),
	}
}

// Reschedule cancels whatever is pending for key and arranges for action to
// run once after delay, receiving the returned handle. The previous action
// will not run even if its timer already fired and is waiting for the lock.
func (s *Scheduler) Reschedule(key string, delay time.Duration, action func(Handle)) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.slots[key]; ok {
		prev.timer.Stop()
		delete(s.slots, key)
	}

	s.gen++
	h := Handle{key: key, gen: s.gen}
	timer := s.clock.AfterFunc(delay, func() { s.fire(h, action) })
	s.slots[key] = slot{gen: h.gen, timer: timer}
	s.log.Debug("rescheduled", "key", key, "gen", h.gen, "delay", delay)
	return h
}

func (s *Scheduler) fire(h Handle, action func(Handle)) {
	s.mu.Lock()
	cur, ok := s.slots[h.key]
	if !ok || cur.gen != h.gen {
		s.mu.Unlock()
		s.log.Debug("dropped superseded timer", "key", h.key, "gen", h.gen)
		return
	}
	delete(s.slots, h.key)
	s.mu.Unlock()

	action(h)
}

// Cancel stops h if it is still pending and reports whether it was.
func (s *Scheduler) Cancel(h Handle) bool {
	if h.IsZero() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.slots[h.key]
	if !ok || cur.gen != h.gen {
		return false
	}
	cur.timer.Stop()
	delete(s.slots, h.key)
	return true
}

// Pending returns the handle pending for key, if any.
func (s *Scheduler) Pending(key string) (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.slots[key]
	if !ok {
		return Handle{}, false
	}
	return Handle{key: key, gen: cur.gen}, true
}

// Stop cancels every pending action.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, cur := range s.slots {
		cur.timer.Stop()
		delete(s.slots, key)
	}
}
