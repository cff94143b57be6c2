package state

import (
	"time"

	"github.com/five82/tmplplay/internal/debounce"
)

// Source names one of the two editable buffers.
type Source int

const (
	StructSource Source = iota
	TemplateSource
)

func (s Source) String() string {
	if s == TemplateSource {
		return "template"
	}
	return "struct"
}

// State is the debounce state of a session.
type State int

const (
	Idle State = iota
	PendingCompile
)

func (s State) String() string {
	if s == PendingCompile {
		return "pending"
	}
	return "idle"
}

// Compilation is the result of one compiler call together with the exact
// sources it was produced from.
type Compilation struct {
	Struct   string
	Template string
	Code     string
	Duration time.Duration
}

// Snapshot is the complete state of a session at one point in time. It is
// a value; every transition builds a new one.
type Snapshot struct {
	Theme          string
	StructSource   string
	TemplateSource string
	Compiled       Compilation
	Pending        debounce.Handle
}

// GeneratedCode returns the code of the last completed compile. While a
// recompile is pending this is the previous output.
func (s Snapshot) GeneratedCode() string {
	return s.Compiled.Code
}

// CompileDuration returns the measured duration only when the generated code
// belongs to the current sources.
func (s Snapshot) CompileDuration() (time.Duration, bool) {
	if s.Stale() {
		return 0, false
	}
	return s.Compiled.Duration, true
}

// Stale reports whether the generated code was compiled from sources other
// than the current ones.
func (s Snapshot) Stale() bool {
	return s.Compiled.Struct != s.StructSource || s.Compiled.Template != s.TemplateSource
}

// State reports Idle or PendingCompile.
func (s Snapshot) State() State {
	if s.Pending.IsZero() {
		return Idle
	}
	return PendingCompile
}

// Source returns the text of which.
func (s Snapshot) Source(which Source) string {
	if which == TemplateSource {
		return s.TemplateSource
	}
	return s.StructSource
}

func (s Snapshot) withSource(which Source, text string) Snapshot {
	if which == TemplateSource {
		s.TemplateSource = text
	} else {
		s.StructSource = text
	}
	return s
}
