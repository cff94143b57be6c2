package highlight

import "fmt"

// Color is an RGBA colour as produced by the highlighter.
type Color struct {
	R, G, B, A uint8
}

// Fixed fallbacks used when a theme omits its default foreground or background.
var (
	Black = Color{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	White = Color{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 0xFF}
}

// Opaque reports whether the colour has full alpha.
func (c Color) Opaque() bool {
	return c.A == 0xFF
}

// Hex serialises the colour for the rendering surface. Opaque colours are
// written as #rrggbb, anything else as #rrggbbaa.
func (c Color) Hex() string {
	if c.Opaque() {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) String() string {
	return c.Hex()
}
