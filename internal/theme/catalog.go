// Package theme holds the read-only catalog of syntax themes. The catalog is
// built once at startup and passed by reference to whatever needs it.
package theme

import (
	"errors"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/five82/tmplplay/internal/highlight"
)

// DefaultID is the designated fallback theme.
const DefaultID = "monokai"

// Theme is one catalog entry.
type Theme struct {
	ID         string
	Name       string
	Foreground *highlight.Color
	Background *highlight.Color
	Caret      *highlight.Color

	style *chroma.Style
}

// Defaults returns the resolver defaults for the theme.
func (t Theme) Defaults() highlight.Defaults {
	return highlight.NewDefaults(t.Foreground, t.Background)
}

// Palette returns what the highlighter needs for this theme.
func (t Theme) Palette() highlight.Palette {
	return highlight.Palette{ID: t.ID, Style: t.style, Defaults: t.Defaults()}
}

// Catalog is an immutable, name-sorted list of themes.
type Catalog struct {
	themes    []Theme
	index     map[string]int
	defaultID string
}

// ErrEmptyCatalog is returned when no themes are supplied.
var ErrEmptyCatalog = errors.New("theme catalog is empty")

// NewCatalog sorts themes by case-insensitive name. defaultID designates the
// fallback; when it is not in the list the first theme is used.
func NewCatalog(themes []Theme, defaultID string) (*Catalog, error) {
	if len(themes) == 0 {
		return nil, ErrEmptyCatalog
	}
	sorted := make([]Theme, len(themes))
	copy(sorted, themes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	c := &Catalog{themes: sorted, index: make(map[string]int, len(sorted))}
	for i, t := range sorted {
		c.index[t.ID] = i
	}
	if _, ok := c.index[defaultID]; ok {
		c.defaultID = defaultID
	} else {
		c.defaultID = sorted[0].ID
	}
	return c, nil
}

// FromChroma builds the catalog from the chroma style registry.
func FromChroma(defaultID string) (*Catalog, error) {
	names := styles.Names()
	themes := make([]Theme, 0, len(names))
	for _, name := range names {
		style := styles.Get(name)
		if style == nil {
			continue
		}
		themes = append(themes, fromStyle(name, style))
	}
	return NewCatalog(themes, defaultID)
}

func fromStyle(id string, style *chroma.Style) Theme {
	t := Theme{ID: id, Name: style.Name, style: style}
	if t.Name == "" {
		t.Name = id
	}
	bg := style.Get(chroma.Background)
	if c, ok := highlight.ColorOf(bg.Colour); ok {
		t.Foreground = &c
	}
	if c, ok := highlight.ColorOf(bg.Background); ok {
		t.Background = &c
	}
	if c, ok := highlight.ColorOf(style.Get(chroma.LineHighlight).Background); ok {
		t.Caret = &c
	}
	return t
}

// Len returns the number of themes.
func (c *Catalog) Len() int {
	return len(c.themes)
}

// All returns a copy of the sorted themes.
func (c *Catalog) All() []Theme {
	out := make([]Theme, len(c.themes))
	copy(out, c.themes)
	return out
}

// Names returns theme ids in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.themes))
	for i, t := range c.themes {
		out[i] = t.ID
	}
	return out
}

// Lookup finds a theme by id.
func (c *Catalog) Lookup(id string) (Theme, bool) {
	i, ok := c.index[id]
	if !ok {
		return Theme{}, false
	}
	return c.themes[i], true
}

// Default returns the designated fallback theme.
func (c *Catalog) Default() Theme {
	return c.themes[c.index[c.defaultID]]
}

// Resolve returns the theme for id, or the default with found=false.
func (c *Catalog) Resolve(id string) (t Theme, found bool) {
	if t, ok := c.Lookup(id); ok {
		return t, true
	}
	return c.Default(), false
}

// Next returns the theme after id, wrapping around. Unknown ids yield the
// first theme.
func (c *Catalog) Next(id string) Theme {
	i, ok := c.index[id]
	if !ok {
		return c.themes[0]
	}
	return c.themes[(i+1)%len(c.themes)]
}

// Filter ranks themes whose id or name fuzzily matches query. An empty query
// returns the whole catalog in order.
func (c *Catalog) Filter(query string) []Theme {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.All()
	}
	labels := make([]string, len(c.themes))
	for i, t := range c.themes {
		labels[i] = t.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(query, labels)
	sort.Stable(ranks)

	out := make([]Theme, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, c.themes[r.OriginalIndex])
	}
	return out
}
