// Package config loads tmplplay's settings from a TOML file.
//
// The default location is ~/.config/tmplplay/config.toml. A missing file
// yields Default; a file that does not parse is an error. Recognised keys:
//
//	theme      = "monokai"                 # initial theme when none was saved
//	share_base = "https://example.com/"    # base URL for shared links
//
//	[store]
//	backend = "file"                       # file, sqlite or memory
//	path    = "~/.config/tmplplay/state.toml"
//
//	[log]
//	file  = "~/.local/state/tmplplay/tmplplay.log"
//	debug = false
//
// Paths may start with ~ and are returned absolute.
package config
