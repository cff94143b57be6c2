package highlight

import "strings"

// Kind classifies a render node.
type Kind int

const (
	PlainText Kind = iota
	StyledSpan
)

func (k Kind) String() string {
	if k == StyledSpan {
		return "span"
	}
	return "text"
}

// Node is one rendered run. Style is meaningful only for StyledSpan.
type Node struct {
	Kind  Kind
	Style Descriptor
	Text  string
}

// Plain returns a PlainText node.
func Plain(text string) Node {
	return Node{Kind: PlainText, Text: text}
}

// Span returns a StyledSpan node.
func Span(style Descriptor, text string) Node {
	return Node{Kind: StyledSpan, Style: style, Text: text}
}

// sameClass reports whether two nodes would render identically.
func (n Node) sameClass(kind Kind, style Descriptor) bool {
	if n.Kind != kind {
		return false
	}
	return kind == PlainText || n.Style == style
}

// Merge walks fragments once and coalesces consecutive fragments that
// resolve to the same style. Empty fragments are dropped, so the output
// never contains empty nodes and never two adjacent nodes of equal class.
func Merge(fragments []Fragment, resolve ResolveFunc) []Node {
	nodes := make([]Node, 0, len(fragments))

	var (
		run     strings.Builder
		runKind Kind
		runSty  Descriptor
		open    bool
	)
	flush := func() {
		if !open {
			return
		}
		nodes = append(nodes, Node{Kind: runKind, Style: runSty, Text: run.String()})
		run.Reset()
		open = false
	}

	for _, f := range fragments {
		if f.Text == "" {
			continue
		}
		kind := PlainText
		style, ok := resolve(f.Style)
		if ok {
			kind = StyledSpan
		} else {
			style = Descriptor{}
		}

		if open && !(Node{Kind: runKind, Style: runSty}).sameClass(kind, style) {
			flush()
		}
		if !open {
			runKind, runSty, open = kind, style, true
		}
		run.WriteString(f.Text)
	}
	flush()
	return nodes
}

// Text concatenates the text of all nodes.
func Text(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(n.Text)
	}
	return b.String()
}
