// Package ui provides the terminal user interface for tmplplay.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds a *state.Session and renders
// its current Snapshot; it never compiles or schedules anything itself.
// Edits go to Session.OnSourceEdit, theme changes to Session.OnThemeChange,
// and compiles finished by the debounce timer arrive as snapshotMsg, on
// which the model re-reads Session.Snapshot.
//
// # Panes
//
//   - Struct: the Go struct definition
//   - Template: the text/template body
//   - Generated: the Render method, or compiler diagnostics
//
// The struct and template panes switch to a bubbles textarea while edited
// and otherwise show highlighted text. Highlighting goes through
// highlight.Renderer, whose merged nodes are drawn by renderNodes one line
// at a time so viewport scrolling never splits an escape sequence.
//
// # Header
//
// The header shows the theme, whether a compile is pending, and either the
// duration of the compile that produced the visible code or a stale marker
// while that code predates the current buffers.
//
// # Modals
//
// Theme picking, share links and opening links are Modal implementations;
// only one is active at a time and it receives all keys until it closes.
//
// # Key Bindings
//
//	tab/shift+tab  Move between panes
//	enter/i        Edit the focused buffer
//	esc            Stop editing or close a modal
//	T / t          Next theme / pick theme
//	s / o          Copy share link / open share link
//	r              Reset the focused buffer to the example
//	?              Toggle help
//	q, ctrl+c      Quit
package ui
