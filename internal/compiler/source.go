package compiler

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"sort"
	"strings"
	"text/template/parse"
)

// Directive marks the struct to generate for, optionally with options:
//
//	//tmplplay:template ext=html
const Directive = "//tmplplay:template"

const (
	structFile   = "struct.go"
	templateName = "template"
)

type field struct {
	name string
	typ  ast.Expr
}

type target struct {
	pkg     string
	name    string
	fields  map[string]field
	methods map[string]bool
	escape  bool
}

func (t *target) has(name string) bool {
	if _, ok := t.fields[name]; ok {
		return true
	}
	return t.methods[name]
}

func parseStruct(src string) (*target, error) {
	fset := token.NewFileSet()
	text := src
	// Bare declarations are accepted; the clause shares line 1 so positions
	// still match the editor.
	if _, err := parser.ParseFile(fset, structFile, src, parser.PackageClauseOnly); err != nil {
		text = "package main; " + src
	}

	file, err := parser.ParseFile(fset, structFile, text, parser.ParseComments)
	if err != nil {
		return nil, structErrors(err)
	}

	var directives []token.Pos
	options := map[token.Pos]string{}
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			if !strings.HasPrefix(c.Text, Directive) {
				continue
			}
			directives = append(directives, c.End())
			options[c.End()] = strings.TrimSpace(strings.TrimPrefix(c.Text, Directive))
		}
	}

	var structs []*ast.TypeSpec
	var decls []*ast.GenDecl
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			if _, ok := ts.Type.(*ast.StructType); ok {
				structs = append(structs, ts)
				decls = append(decls, gen)
			}
		}
	}

	// A directive applies to the first struct declared after it.
	var chosen *ast.TypeSpec
	var chosenOpts string
	sort.Slice(directives, func(i, j int) bool { return directives[i] < directives[j] })
	for _, d := range directives {
		for i, ts := range structs {
			if decls[i].Pos() > d {
				chosen, chosenOpts = ts, options[d]
				break
			}
		}
		if chosen != nil {
			break
		}
	}
	if chosen == nil && len(structs) > 0 {
		chosen = structs[0]
	}
	if chosen == nil {
		return nil, ErrorList{{Source: "struct", Loc: structFile, Msg: "no struct type found"}}
	}

	t := &target{
		pkg:     file.Name.Name,
		name:    chosen.Name.Name,
		fields:  map[string]field{},
		methods: map[string]bool{},
	}
	t.escape = markupOptions(chosenOpts)

	for _, f := range chosen.Type.(*ast.StructType).Fields.List {
		if len(f.Names) == 0 {
			if name := embeddedName(f.Type); name != "" {
				t.fields[name] = field{name: name, typ: f.Type}
			}
			continue
		}
		for _, n := range f.Names {
			t.fields[n.Name] = field{name: n.Name, typ: f.Type}
		}
	}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
			continue
		}
		if embeddedName(fn.Recv.List[0].Type) == t.name {
			t.methods[fn.Name.Name] = true
		}
	}
	return t, nil
}

// IsMarkup reports whether a directive in src selects a markup extension.
// It scans lines, so it also works on sources that do not parse.
func IsMarkup(src string) bool {
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, Directive) && markupOptions(strings.TrimPrefix(line, Directive)) {
			return true
		}
	}
	return false
}

func markupOptions(opts string) bool {
	for _, opt := range strings.Fields(opts) {
		key, value, _ := strings.Cut(opt, "=")
		if key != "ext" {
			continue
		}
		switch strings.ToLower(value) {
		case "html", "htm", "xml", "svg":
			return true
		}
	}
	return false
}

func embeddedName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	}
	return ""
}

func structErrors(err error) error {
	var list ErrorList
	if sl, ok := err.(scanner.ErrorList); ok {
		for _, e := range sl {
			pos := e.Pos
			list.add("struct", pos.String(), "%s", e.Msg)
		}
		return list
	}
	list.add("struct", structFile, "%s", err.Error())
	return list
}

func parseTemplate(src string) (*parse.Tree, error) {
	tr := parse.New(templateName)
	tr.Mode = parse.SkipFuncCheck
	set := map[string]*parse.Tree{}
	if _, err := tr.Parse(src, "", "", set); err != nil {
		var list ErrorList
		msg := strings.TrimPrefix(err.Error(), "template: ")
		loc, rest, ok := strings.Cut(msg, ": ")
		if !ok {
			loc, rest = "", msg
		}
		list.add("template", loc, "%s", rest)
		return nil, list
	}
	for name := range set {
		if name != templateName {
			var list ErrorList
			list.add("template", templateName, "nested template definitions are not supported (found %q)", name)
			return nil, list
		}
	}
	if tr.Root == nil {
		tr.Root = &parse.ListNode{NodeType: parse.NodeList}
	}
	return tr, nil
}
