package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const quiet = 500 * time.Millisecond

func TestReschedule_CoalescesBurst(t *testing.T) {
	clock := NewManualClock()
	s := New(clock)

	var fired []time.Duration
	state := ""
	var seen []string
	for i, text := range []string{"a", "ab", "abc", "abcd"} {
		if i > 0 {
			clock.Advance(100 * time.Millisecond)
		}
		state = text
		s.Reschedule("session", quiet, func(Handle) {
			fired = append(fired, clock.Now())
			seen = append(seen, state)
		})
	}

	clock.Advance(time.Second)
	require.Equal(t, []time.Duration{800 * time.Millisecond}, fired)
	require.Equal(t, []string{"abcd"}, seen)
}

func TestReschedule_PassesHandle(t *testing.T) {
	clock := NewManualClock()
	s := New(clock)

	var got Handle
	h := s.Reschedule("k", quiet, func(fired Handle) { got = fired })
	require.False(t, h.IsZero())
	require.Equal(t, "k", h.Key())

	pending, ok := s.Pending("k")
	require.True(t, ok)
	require.Equal(t, h, pending)

	clock.Advance(quiet)
	require.Equal(t, h, got)
	_, ok = s.Pending("k")
	require.False(t, ok)
}

func TestReschedule_KeysAreIndependent(t *testing.T) {
	clock := NewManualClock()
	s := New(clock)

	var fired []string
	s.Reschedule("a", quiet, func(Handle) { fired = append(fired, "a") })
	s.Reschedule("b", quiet, func(Handle) { fired = append(fired, "b") })

	clock.Advance(quiet)
	require.Equal(t, []string{"a", "b"}, fired)
}

func TestCancel(t *testing.T) {
	clock := NewManualClock()
	s := New(clock)

	ran := false
	h := s.Reschedule("k", quiet, func(Handle) { ran = true })
	require.True(t, s.Cancel(h))
	require.False(t, s.Cancel(h), "second cancel is a no-op")
	require.False(t, s.Cancel(Handle{}))

	clock.Advance(time.Second)
	require.False(t, ran)
	require.Equal(t, 0, clock.Pending())
}

func TestCancel_StaleHandleLeavesNewer(t *testing.T) {
	clock := NewManualClock()
	s := New(clock)

	ran := 0
	old := s.Reschedule("k", quiet, func(Handle) { ran++ })
	s.Reschedule("k", quiet, func(Handle) { ran++ })
	require.False(t, s.Cancel(old))

	clock.Advance(quiet)
	require.Equal(t, 1, ran)
}

func TestFire_SupersededTimerDoesNotRun(t *testing.T) {
	// Simulates a timer that fired but lost the lock to a newer Reschedule.
	s := New(NewManualClock())
	ran := false
	old := s.Reschedule("k", quiet, func(Handle) { ran = true })
	s.Reschedule("k", quiet, func(Handle) {})

	s.fire(old, func(Handle) { ran = true })
	require.False(t, ran)
}

func TestStop(t *testing.T) {
	clock := NewManualClock()
	s := New(clock)
	ran := false
	s.Reschedule("a", quiet, func(Handle) { ran = true })
	s.Reschedule("b", quiet, func(Handle) { ran = true })

	s.Stop()
	clock.Advance(time.Second)
	require.False(t, ran)
}

func TestRealClock_FiresOnce(t *testing.T) {
	s := New(nil)
	var mu sync.Mutex
	count := 0
	done := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		s.Reschedule("k", 20*time.Millisecond, func(Handle) {
			mu.Lock()
			count++
			mu.Unlock()
			done <- struct{}{}
		})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, count)
}

// Edits closer together than the quiet period fire once; a gap of at least
// the quiet period starts a new burst.
func TestReschedule_BurstProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gaps := rapid.SliceOfN(rapid.IntRange(0, 1200), 1, 20).Draw(t, "gaps")

		clock := NewManualClock()
		s := New(clock)
		fires := 0
		for i, gap := range gaps {
			if i > 0 {
				clock.Advance(time.Duration(gap) * time.Millisecond)
			}
			s.Reschedule("k", quiet, func(Handle) { fires++ })
		}
		clock.Advance(quiet)

		want := 1
		for _, gap := range gaps[1:] {
			if time.Duration(gap)*time.Millisecond >= quiet {
				want++
			}
		}
		if fires != want {
			t.Fatalf("fires = %d, want %d for gaps %v", fires, want, gaps)
		}
	})
}
