package highlight

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var blackOnWhite = NewDefaults(nil, nil)

func bold(text string) Fragment {
	return Fragment{Style: RawStyle{Foreground: Black, Background: White, Bold: true}, Text: text}
}

func plain(text string) Fragment {
	return Fragment{Style: RawStyle{Foreground: Black, Background: White}, Text: text}
}

func TestMerge_CoalescesEqualRuns(t *testing.T) {
	got := Merge([]Fragment{bold("ab"), bold("cd"), plain("ef")}, blackOnWhite.Resolve)
	require.Equal(t, []Node{
		Span(Descriptor{Bold: true}, "abcd"),
		Plain("ef"),
	}, got)
}

func TestMerge_DefaultForegroundIsPlain(t *testing.T) {
	got := Merge([]Fragment{plain("x"), plain("y")}, blackOnWhite.Resolve)
	require.Equal(t, []Node{Plain("xy")}, got)
}

func TestMerge_DropsEmptyFragments(t *testing.T) {
	got := Merge([]Fragment{bold("a"), plain(""), bold("b"), plain("")}, blackOnWhite.Resolve)
	require.Equal(t, []Node{Span(Descriptor{Bold: true}, "ab")}, got)
	require.Empty(t, Merge(nil, blackOnWhite.Resolve))
}

func TestMerge_DistinctColoursStaySeparate(t *testing.T) {
	red := Fragment{Style: RawStyle{Foreground: RGB(0xff, 0, 0), Background: White}, Text: "r"}
	blue := Fragment{Style: RawStyle{Foreground: RGB(0, 0, 0xff), Background: White}, Text: "b"}
	got := Merge([]Fragment{red, blue, red}, blackOnWhite.Resolve)
	require.Equal(t, []Node{
		Span(Descriptor{Foreground: "#ff0000"}, "r"),
		Span(Descriptor{Foreground: "#0000ff"}, "b"),
		Span(Descriptor{Foreground: "#ff0000"}, "r"),
	}, got)
}

func genFragment() *rapid.Generator[Fragment] {
	palette := []Color{Black, White, RGB(0xff, 0, 0), {R: 1, G: 2, B: 3, A: 0x80}}
	return rapid.Custom(func(t *rapid.T) Fragment {
		return Fragment{
			Style: RawStyle{
				Foreground: rapid.SampledFrom(palette).Draw(t, "fg"),
				Background: rapid.SampledFrom(palette).Draw(t, "bg"),
				Bold:       rapid.Bool().Draw(t, "bold"),
				Underline:  rapid.Bool().Draw(t, "underline"),
				Italic:     rapid.Bool().Draw(t, "italic"),
			},
			Text: rapid.StringN(0, 4, -1).Draw(t, "text"),
		}
	})
}

func TestMerge_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fragments := rapid.SliceOf(genFragment()).Draw(t, "fragments")
		nodes := Merge(fragments, blackOnWhite.Resolve)

		var want string
		for _, f := range fragments {
			want += f.Text
		}
		if got := Text(nodes); got != want {
			t.Fatalf("text = %q, want %q", got, want)
		}
		for i, n := range nodes {
			if n.Text == "" {
				t.Fatalf("node %d is empty", i)
			}
			if i > 0 && nodes[i-1].sameClass(n.Kind, n.Style) {
				t.Fatalf("nodes %d and %d share a classification: %+v %+v", i-1, i, nodes[i-1], n)
			}
			if n.Kind == PlainText && n.Style != (Descriptor{}) {
				t.Fatalf("plain node %d carries a style", i)
			}
		}
	})
}
