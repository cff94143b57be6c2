package highlight

import (
	"fmt"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Syntax names a chroma lexer.
type Syntax string

const (
	SyntaxGo           Syntax = "go"
	SyntaxTemplate     Syntax = "go-text-template"
	SyntaxHTMLTemplate Syntax = "go-html-template"
)

// Palette is everything the highlighter needs to know about a theme.
type Palette struct {
	ID       string
	Style    *chroma.Style
	Defaults Defaults
}

// Highlighter splits text into styled fragments covering it exactly.
type Highlighter interface {
	Highlight(text string, syntax Syntax, p Palette) ([]Fragment, error)
}

// Chroma is the chroma/v2 backed Highlighter.
type Chroma struct{}

// ColorOf converts a chroma colour. Unset colours return ok=false.
func ColorOf(c chroma.Colour) (Color, bool) {
	if !c.IsSet() {
		return Color{}, false
	}
	return RGB(c.Red(), c.Green(), c.Blue()), true
}

// Highlight tokenises text with the lexer for syntax.
func (Chroma) Highlight(text string, syntax Syntax, p Palette) ([]Fragment, error) {
	lexer := lexers.Get(string(syntax))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	// EnsureLF would rewrite \r\n and break coverage.
	it, err := lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, text)
	if err != nil {
		return nil, fmt.Errorf("tokenise %s: %w", syntax, err)
	}

	style := p.Style
	fragments := make([]Fragment, 0, 64)
	for tok := it(); tok != chroma.EOF; tok = it() {
		if tok.Value == "" {
			continue
		}
		fragments = append(fragments, Fragment{
			Style: rawStyle(style, tok.Type, p.Defaults),
			Text:  tok.Value,
		})
	}
	fragments = alignToSource(fragments, text)
	mustCover(fragments, text)
	return fragments, nil
}

func rawStyle(style *chroma.Style, tt chroma.TokenType, def Defaults) RawStyle {
	raw := RawStyle{Foreground: def.Foreground, Background: def.Background}
	if style == nil {
		return raw
	}
	entry := style.Get(tt)
	if c, ok := ColorOf(entry.Colour); ok {
		raw.Foreground = c
	}
	if c, ok := ColorOf(entry.Background); ok {
		raw.Background = c
	}
	raw.Bold = entry.Bold == chroma.Yes
	raw.Underline = entry.Underline == chroma.Yes
	raw.Italic = entry.Italic == chroma.Yes
	return raw
}

// alignToSource replaces token values with the source bytes they stand for.
// Lexers work on runes, so each invalid byte comes back as one U+FFFD, and
// lexers with EnsureNL append a newline the source does not have. Walking
// the source rune by rune keeps the original bytes and drops the extra.
func alignToSource(fragments []Fragment, text string) []Fragment {
	out := fragments[:0]
	n := 0
	for _, f := range fragments {
		start := n
		for runes := utf8.RuneCountInString(f.Text); runes > 0 && n < len(text); runes-- {
			_, size := utf8.DecodeRuneInString(text[n:])
			n += size
		}
		if n == start {
			continue
		}
		f.Text = text[start:n]
		out = append(out, f)
	}
	return out
}

// mustCover panics when fragments do not reproduce text. That is a broken
// highlighter, not a runtime condition.
func mustCover(fragments []Fragment, text string) {
	var n int
	for _, f := range fragments {
		if len(text)-n < len(f.Text) || text[n:n+len(f.Text)] != f.Text {
			panic(fmt.Sprintf("highlight: fragment at offset %d does not match source", n))
		}
		n += len(f.Text)
	}
	if n != len(text) {
		panic(fmt.Sprintf("highlight: fragments cover %d of %d bytes", n, len(text)))
	}
}
