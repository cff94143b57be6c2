// Package state holds the compile session behind the playground view.
//
// # Overview
//
// A Session owns exactly one current Snapshot: the theme id, both source
// buffers, the last Compilation and the pending debounce handle. Every
// transition builds a new Snapshot from the old one and swaps it under the
// session mutex, so readers never observe a half-updated record.
//
// # State Machine
//
//	         edit                      edit (cancel + re-arm)
//	Idle ───────────→ PendingCompile ─────────┐
//	  ↑                    │    ↑             │
//	  │   timer fires      │    └─────────────┘
//	  └────────────────────┘
//	      compile, publish
//
// New compiles once synchronously and starts Idle. OnSourceEdit arms a
// compile QuietPeriod after the edit through debounce.Scheduler; a burst of
// edits closer together than that compiles once, against the last edit.
// OnTimerFire ignores any handle that is not the pending one, so a timer
// that lost a race with a newer edit can never publish.
//
// # Stale While Revalidate
//
// While a compile is pending the Snapshot keeps the previous Compilation.
// Compilation records the sources it was built from; CompileDuration only
// reports a duration when those equal the current buffers, and Stale
// reports the opposite. The view shows the old code with a stale marker.
//
// Theme changes never recompile and leave a pending timer armed. The
// duration shown is always that of the most recent completed compile.
//
// # Persistence
//
// Edits, theme changes and Replace write to the prefs.Store after the swap.
// Failures are logged at debug level and otherwise ignored.
//
// # Publishing
//
// Timer compiles run on the timer goroutine. Subscribers registered with
// Subscribe receive the new Snapshot there, outside the session lock.
// Transitions triggered by the caller return their Snapshot directly.
package state
