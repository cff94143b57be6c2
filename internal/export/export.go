// Package export renders the playground buffers as a standalone HTML page
// using the same highlight runs the terminal view draws.
package export

import (
	"fmt"
	"html/template"
	"io"

	"github.com/five82/tmplplay/internal/compiler"
	"github.com/five82/tmplplay/internal/highlight"
	"github.com/five82/tmplplay/internal/theme"
)

// Sources are the texts to export.
type Sources struct {
	Struct   string
	Template string
	Code     string
}

type page struct {
	Title string
	Theme string
	Block template.CSS
	Panes []pane
}

type pane struct {
	Title string
	Runs  []run
}

type run struct {
	Style template.CSS
	Text  string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: ui-monospace, SFMono-Regular, Menlo, monospace; }
section { margin: 1rem; }
h2 { font-size: 0.9rem; margin: 0 0 0.25rem; }
pre { margin: 0; padding: 0.75rem; overflow-x: auto; tab-size: 4; }
</style>
</head>
<body>
<header><section><strong>{{.Title}}</strong> · {{.Theme}}</section></header>
{{range .Panes}}<section>
<h2>{{.Title}}</h2>
<pre style="{{$.Block}}">{{range .Runs}}{{if .Style}}<span style="{{.Style}}">{{.Text}}</span>{{else}}{{.Text}}{{end}}{{end}}</pre>
</section>
{{end}}</body>
</html>
`))

// Write renders src highlighted with th to w.
func Write(w io.Writer, r *highlight.Renderer, th theme.Theme, src Sources) error {
	if r == nil {
		r = highlight.NewRenderer(nil)
	}
	p := th.Palette()
	tmplSyntax := highlight.SyntaxTemplate
	if compiler.IsMarkup(src.Struct) {
		tmplSyntax = highlight.SyntaxHTMLTemplate
	}

	data := page{
		Title: "tmplplay",
		Theme: th.Name,
		Block: template.CSS(p.Defaults.CSS()),
		Panes: []pane{
			{Title: "Struct", Runs: runs(r.Render(src.Struct, highlight.SyntaxGo, p))},
			{Title: "Template", Runs: runs(r.Render(src.Template, tmplSyntax, p))},
			{Title: "Generated", Runs: runs(r.Render(src.Code, highlight.SyntaxGo, p))},
		},
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render export: %w", err)
	}
	return nil
}

func runs(nodes []highlight.Node) []run {
	out := make([]run, 0, len(nodes))
	for _, n := range nodes {
		r := run{Text: n.Text}
		if n.Kind == highlight.StyledSpan {
			r.Style = template.CSS(n.Style.CSS())
		}
		out = append(out, r)
	}
	return out
}
