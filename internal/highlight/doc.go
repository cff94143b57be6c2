// Package highlight turns source text into a minimal sequence of styled runs.
//
// # Pipeline
//
//	text ──> Highlighter (chroma) ──> []Fragment ──> Merge(Resolve) ──> []Node
//
// A Highlighter emits fragments that cover the input exactly. Each fragment's
// RawStyle is resolved against the theme Defaults: attributes equal to the
// default are dropped, and a fragment with nothing left is plain text.
// Merge then coalesces neighbours with the same resolution in a single pass.
//
// # Invariants
//
//   - Text(Merge(f, r)) equals the concatenation of the fragment texts.
//   - No two adjacent nodes share a classification (both plain, or equal
//     descriptors).
//   - No node has empty text.
//
// # Colours
//
// Color.Hex writes #rrggbb for opaque colours and #rrggbbaa otherwise. The
// CSS export and the terminal view both rely on that exact form.
package highlight
