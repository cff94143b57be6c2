// Package logtail reads the end of tmplplay's debug log.
//
// The log is written by internal/logging with slog's text handler, one
// key=value line per record:
//
//	time=2026-10-14T09:12:01.000Z level=DEBUG msg="compiled" cat=session duration=1.2ms
//
// Read keeps only the last N matching lines in a ring, so it runs in
// O(N) memory whatever the file size. Filter narrows by the cat attribute
// and a minimum level. A missing file yields no entries rather than an
// error, since logging may never have been enabled.
package logtail
