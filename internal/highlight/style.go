package highlight

import "strings"

// RawStyle is the fully resolved attribute set of one highlighter fragment.
type RawStyle struct {
	Foreground Color
	Background Color
	Bold       bool
	Underline  bool
	Italic     bool
}

// Fragment is one contiguous slice of source text with uniform attributes.
type Fragment struct {
	Style RawStyle
	Text  string
}

// Descriptor is the minimal visual style of a run. Empty colour strings mean
// "same as the theme default". Descriptors are comparable with ==.
type Descriptor struct {
	Foreground string
	Background string
	Bold       bool
	Underline  bool
	Italic     bool
}

// CSS renders the descriptor as inline style declarations.
func (d Descriptor) CSS() string {
	var b strings.Builder
	if d.Foreground != "" {
		b.WriteString("color:")
		b.WriteString(d.Foreground)
		b.WriteByte(';')
	}
	if d.Background != "" {
		b.WriteString("background-color:")
		b.WriteString(d.Background)
		b.WriteByte(';')
	}
	if d.Bold {
		b.WriteString("font-weight:bold;")
	}
	if d.Underline {
		b.WriteString("text-decoration:underline;")
	}
	if d.Italic {
		b.WriteString("font-style:italic;")
	}
	return b.String()
}

// Defaults are a theme's default foreground and background.
type Defaults struct {
	Foreground Color
	Background Color
}

// NewDefaults builds defaults from optional theme colours, substituting
// black and white for missing ones.
func NewDefaults(fg, bg *Color) Defaults {
	d := Defaults{Foreground: Black, Background: White}
	if fg != nil {
		d.Foreground = *fg
	}
	if bg != nil {
		d.Background = *bg
	}
	return d
}

// ResolveFunc maps a raw fragment style to a descriptor. ok is false when the
// fragment is indistinguishable from plain text.
type ResolveFunc func(RawStyle) (d Descriptor, ok bool)

// Resolve keeps only the attributes of s that differ from the defaults.
func (def Defaults) Resolve(s RawStyle) (Descriptor, bool) {
	var d Descriptor
	if s.Foreground != def.Foreground {
		d.Foreground = s.Foreground.Hex()
	}
	if s.Background != def.Background {
		d.Background = s.Background.Hex()
	}
	d.Bold = s.Bold
	d.Underline = s.Underline
	d.Italic = s.Italic
	if d == (Descriptor{}) {
		return Descriptor{}, false
	}
	return d, true
}

// CSS renders the surrounding block style for the defaults.
func (def Defaults) CSS() string {
	return "color:" + def.Foreground.Hex() + ";background-color:" + def.Background.Hex() + ";"
}
