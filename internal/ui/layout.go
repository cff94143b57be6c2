package ui

import "time"

// Terminal size thresholds for responsive layouts.
const (
	// LayoutStackedWidth is the width below which panes stack vertically.
	LayoutStackedWidth = 100

	// LayoutMinHeight is the smallest height that still fits three panes.
	LayoutMinHeight = 12
)

// Chrome heights.
const (
	headerHeight = 1
	footerHeight = 1
	// paneChrome is the border plus title line around each pane body.
	paneChrome = 3
)

// Timing constants.
const (
	// StatusTTL is how long a footer status message stays visible.
	StatusTTL = 4 * time.Second
)

// Pane identifies one of the three panes.
type Pane int

const (
	PaneStruct Pane = iota
	PaneTemplate
	PaneCode
	paneCount
)

func (p Pane) String() string {
	switch p {
	case PaneStruct:
		return "Struct"
	case PaneTemplate:
		return "Template"
	case PaneCode:
		return "Generated"
	}
	return "unknown"
}

// paneRect is a pane's outer size.
type paneRect struct {
	width, height int
}

// layoutPanes splits the body area. Wide terminals put both editors on the
// left and the generated code on the right; narrow ones stack all three.
func layoutPanes(width, height int) [paneCount]paneRect {
	body := max(height-headerHeight-footerHeight, int(paneCount)*paneChrome)
	var r [paneCount]paneRect
	if width < LayoutStackedWidth {
		each := body / int(paneCount)
		for i := range r {
			r[i] = paneRect{width: width, height: each}
		}
		r[PaneCode].height = body - 2*each
		return r
	}
	left := width / 2
	top := body / 2
	r[PaneStruct] = paneRect{width: left, height: top}
	r[PaneTemplate] = paneRect{width: left, height: body - top}
	r[PaneCode] = paneRect{width: width - left, height: body}
	return r
}

// inner returns the body size inside a pane's border and title.
func (r paneRect) inner() (int, int) {
	return max(r.width-2, 1), max(r.height-paneChrome, 1)
}
