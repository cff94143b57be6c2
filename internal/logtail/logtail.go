package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Entry is one line of the slog text log.
type Entry struct {
	Raw   string
	Level string // DEBUG, INFO, WARN, ERROR; empty for continuation lines
	Cat   string // value of the cat attribute, if any
}

// Parse extracts the level and category attributes from a log line.
func Parse(line string) Entry {
	e := Entry{Raw: line}
	e.Level = attr(line, "level")
	e.Cat = attr(line, "cat")
	return e
}

// attr returns the unquoted value of key=value in a slog text line.
func attr(line, key string) string {
	prefix := key + "="
	for rest := line; rest != ""; {
		i := strings.Index(rest, prefix)
		if i < 0 {
			return ""
		}
		if i > 0 && rest[i-1] != ' ' {
			rest = rest[i+len(prefix):]
			continue
		}
		value := rest[i+len(prefix):]
		if end := strings.IndexByte(value, ' '); end >= 0 {
			value = value[:end]
		}
		return strings.Trim(value, `"`)
	}
	return ""
}

// Filter selects entries. Empty fields match everything.
type Filter struct {
	Cat      string
	MinLevel string
}

var levelRank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	if f.Cat != "" && !strings.EqualFold(e.Cat, f.Cat) {
		return false
	}
	if f.MinLevel != "" {
		floor, ok := levelRank[strings.ToUpper(f.MinLevel)]
		if ok && levelRank[e.Level] < floor {
			return false
		}
	}
	return true
}

// Read returns at most maxLines matching entries from the end of the file at
// path. maxLines <= 0 returns every match. A missing file yields no entries.
func Read(path string, maxLines int, f Filter) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var ring []Entry
	idx := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		e := Parse(scanner.Text())
		if !f.Match(e) {
			continue
		}
		if maxLines <= 0 || len(ring) < maxLines {
			ring = append(ring, e)
			continue
		}
		ring[idx] = e
		idx = (idx + 1) % maxLines
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if idx == 0 {
		return ring, nil
	}
	out := make([]Entry, 0, len(ring))
	out = append(out, ring[idx:]...)
	return append(out, ring[:idx]...), nil
}

var levelStyles = map[string]lipgloss.Style{
	"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
	"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")),
	"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
	"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
}

// Colorize styles the level attribute of e for terminal output.
func Colorize(e Entry) string {
	style, ok := levelStyles[e.Level]
	if !ok {
		return e.Raw
	}
	token := "level=" + e.Level
	return strings.Replace(e.Raw, token, style.Render(token), 1)
}
