// Package app provides the orchestration layer for tmplplay.
//
// # Overview
//
// This package wires together configuration, logging, persisted state, the
// theme catalog, the compile session and the UI. It is the composition root
// where all dependencies are initialized and connected.
//
// # Architecture
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> Setup()             config.Load, logging.Configure, prefs.Open, theme.FromChroma
//	       ├─────> prefs.LoadState()   Quarantine persisted keys
//	       ├─────> state.New()         Session with the persisted buffers
//	       ├─────> applyOverrides()    --saved link, then --struct-file/--template-file
//	       ├─────> StartWatcher()      Feed external file writes to the session
//	       └─────> ui.Run()            Start TUI (blocks); first frame restores the quarantined keys
//
// # Startup quarantine
//
// LoadState removes the persisted keys before the session sees them and the
// UI puts them back once it has drawn a frame. A persisted buffer that
// crashes startup is therefore not loaded on the next launch.
//
// # Source files
//
// When buffers are bound to files the Watcher watches their directories.
// Writes go through Session.OnSourceEdit exactly like keystrokes, so the
// session's quiet period coalesces an editor's save burst into one compile.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - Log file cannot be opened
//   - Bound source file cannot be read or watched
//
// Recoverable errors (logged, startup continues):
//   - State store cannot be opened (the session runs without persistence)
//   - Malformed --saved link
//   - Persisted theme no longer in the catalog
//
// # Headless commands
//
// Setup and Env.Sources serve the compile, share and export commands, which
// read persisted state without quarantining it.
package app
