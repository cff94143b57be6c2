package compiler

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/token"
	"sort"
	"strconv"
	"strings"
	"text/template/parse"
)

// value is a Go expression produced from a template operand.
type value struct {
	code    string
	typ     ast.Expr // static type when known
	boolean bool     // code is already a bool expression
	root    bool     // code is the receiver
}

type generator struct {
	t    *target
	tree *parse.Tree

	body    bytes.Buffer
	imports map[string]bool
	helpers map[string]bool
	scopes  []map[string]string
	names   map[string]int
	dots    []value

	errs ErrorList
}

func newGenerator(t *target, tree *parse.Tree) *generator {
	return &generator{
		t:       t,
		tree:    tree,
		imports: map[string]bool{"io": true},
		helpers: map[string]bool{},
		names:   map[string]int{},
	}
}

// reserved names cannot be used for template variables in generated code.
var reserved = map[string]bool{
	"t": true, "w": true, "err": true,
	"fmt": true, "io": true, "html": true, "url": true, "template": true, "reflect": true,
	"len": true, "nil": true, "true": true, "false": true, "any": true,
	"string": true, "bool": true, "int": true, "error": true,
	"tmplTruth": true, "tmplAnd": true, "tmplOr": true,
}

var numeric = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
	"byte": true, "rune": true,
}

func (g *generator) file() []byte {
	g.dots = []value{{code: "t", root: true}}
	g.scopes = []map[string]string{{}}
	g.walk(g.tree.Root)

	var out bytes.Buffer
	out.WriteString("// Code generated by tmplplay. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", g.t.pkg)

	paths := make([]string, 0, len(g.imports))
	for p := range g.imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out.WriteString("import (\n")
	for _, p := range paths {
		fmt.Fprintf(&out, "\t%q\n", p)
	}
	out.WriteString(")\n\n")

	fmt.Fprintf(&out, "// Render writes the template output for t to w.\n")
	fmt.Fprintf(&out, "func (t *%s) Render(w io.Writer) error {\n", g.t.name)
	out.Write(g.body.Bytes())
	out.WriteString("return nil\n}\n")

	if g.helpers["and"] {
		out.WriteString(andHelper)
	}
	if g.helpers["or"] {
		out.WriteString(orHelper)
	}
	if g.helpers["truth"] {
		out.WriteString(truthHelper)
	}
	return out.Bytes()
}

func (g *generator) line(format string, args ...any) {
	fmt.Fprintf(&g.body, format, args...)
	g.body.WriteByte('\n')
}

func (g *generator) fail(n parse.Node, format string, args ...any) value {
	loc, _ := g.tree.ErrorContext(n)
	g.errs.add("template", loc, format, args...)
	return value{code: "nil"}
}

func (g *generator) write(call string) {
	g.line("if _, err := %s; err != nil {", call)
	g.line("return err")
	g.line("}")
}

func (g *generator) dot() value {
	return g.dots[len(g.dots)-1]
}

func (g *generator) push(dot *value) {
	g.scopes = append(g.scopes, map[string]string{})
	if dot != nil {
		g.dots = append(g.dots, *dot)
	} else {
		g.dots = append(g.dots, g.dot())
	}
}

func (g *generator) pop() {
	g.scopes = g.scopes[:len(g.scopes)-1]
	g.dots = g.dots[:len(g.dots)-1]
}

// fresh returns an identifier unique within the generated function.
func (g *generator) fresh(base string) string {
	if base == "" {
		base = "v"
	}
	if reserved[base] || token.IsKeyword(base) {
		base += "_"
	}
	n := g.names[base]
	g.names[base] = n + 1
	if n == 0 {
		return base
	}
	return base + "_" + strconv.Itoa(n)
}

func (g *generator) declare(tmplName string) string {
	name := g.fresh(strings.TrimPrefix(tmplName, "$"))
	g.scopes[len(g.scopes)-1][tmplName] = name
	return name
}

func (g *generator) lookup(tmplName string) (string, bool) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if name, ok := g.scopes[i][tmplName]; ok {
			return name, true
		}
	}
	return "", false
}

func (g *generator) walk(node parse.Node) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, c := range n.Nodes {
			g.walk(c)
		}
	case *parse.TextNode:
		if len(n.Text) > 0 {
			g.write("io.WriteString(w, " + strconv.Quote(string(n.Text)) + ")")
		}
	case *parse.CommentNode:
	case *parse.ActionNode:
		g.action(n)
	case *parse.IfNode:
		g.ifNode(n, false)
		g.line("}")
	case *parse.RangeNode:
		g.rangeNode(n)
	case *parse.WithNode:
		g.withNode(n)
	case *parse.BreakNode:
		g.line("break")
	case *parse.ContinueNode:
		g.line("continue")
	case *parse.TemplateNode:
		g.fail(n, "template invocation %q is not supported", n.Name)
	default:
		g.fail(node, "unsupported template construct %s", node)
	}
}

func (g *generator) action(n *parse.ActionNode) {
	v := g.pipe(n.Pipe)
	if len(n.Pipe.Decl) > 0 {
		g.bind(n.Pipe, v)
		return
	}
	g.print(v)
}

func (g *generator) bind(p *parse.PipeNode, v value) {
	decl := p.Decl[0].Ident[0]
	if p.IsAssign {
		name, ok := g.lookup(decl)
		if !ok {
			g.fail(p, "undefined variable %q", decl)
			return
		}
		g.line("%s = %s", name, v.code)
		return
	}
	name := g.declare(decl)
	g.line("%s := %s", name, v.code)
	g.line("_ = %s", name)
}

func (g *generator) print(v value) {
	str := isIdent(v.typ, "string")
	switch {
	case g.t.escape && str:
		g.imports["html"] = true
		g.write("io.WriteString(w, html.EscapeString(" + v.code + "))")
	case g.t.escape:
		g.imports["html"] = true
		g.imports["fmt"] = true
		g.write("io.WriteString(w, html.EscapeString(fmt.Sprint(" + v.code + ")))")
	case str:
		g.write("io.WriteString(w, " + v.code + ")")
	default:
		g.imports["fmt"] = true
		g.write("fmt.Fprint(w, " + v.code + ")")
	}
}

func (g *generator) ifNode(n *parse.IfNode, chained bool) {
	kw := "if"
	if chained {
		kw = "} else if"
	}
	g.push(nil)
	if len(n.Pipe.Decl) > 0 {
		v := g.pipe(n.Pipe)
		name := g.declare(n.Pipe.Decl[0].Ident[0])
		g.line("%s %s := %s; %s {", kw, name, v.code, g.cond(value{code: name, typ: v.typ, boolean: v.boolean}))
	} else {
		g.line("%s %s {", kw, g.cond(g.pipe(n.Pipe)))
	}
	g.walk(n.List)
	g.pop()

	if n.ElseList == nil {
		return
	}
	if len(n.ElseList.Nodes) == 1 {
		if inner, ok := n.ElseList.Nodes[0].(*parse.IfNode); ok {
			g.ifNode(inner, true)
			return
		}
	}
	g.line("} else {")
	g.push(nil)
	g.walk(n.ElseList)
	g.pop()
}

func (g *generator) rangeNode(n *parse.RangeNode) {
	g.push(nil)
	v := g.pipe(n.Pipe)
	if n.ElseList != nil {
		g.line("if len(%s) == 0 {", v.code)
		g.push(nil)
		g.walk(n.ElseList)
		g.pop()
		g.line("} else {")
	}

	key, elem := "_", ""
	switch len(n.Pipe.Decl) {
	case 0:
		elem = g.fresh("elem")
	case 1:
		elem = g.declare(n.Pipe.Decl[0].Ident[0])
	default:
		key = g.declare(n.Pipe.Decl[0].Ident[0])
		elem = g.declare(n.Pipe.Decl[1].Ident[0])
	}
	g.line("for %s, %s := range %s {", key, elem, v.code)
	if key != "_" {
		g.line("_ = %s", key)
	}
	g.line("_ = %s", elem)

	g.push(&value{code: elem, typ: elemType(v.typ)})
	g.walk(n.List)
	g.pop()
	g.line("}")
	if n.ElseList != nil {
		g.line("}")
	}
	g.pop()
}

func (g *generator) withNode(n *parse.WithNode) {
	g.push(nil)
	v := g.pipe(n.Pipe)
	var name string
	if len(n.Pipe.Decl) > 0 {
		name = g.declare(n.Pipe.Decl[0].Ident[0])
	} else {
		name = g.fresh("val")
	}
	bound := value{code: name, typ: v.typ, boolean: v.boolean}
	g.line("if %s := %s; %s {", name, v.code, g.cond(bound))
	g.push(&value{code: name, typ: v.typ})
	g.walk(n.List)
	g.pop()
	if n.ElseList != nil {
		g.line("} else {")
		g.push(nil)
		g.walk(n.ElseList)
		g.pop()
	}
	g.line("}")
	g.pop()
}

// cond converts v to a bool expression following template truthiness.
func (g *generator) cond(v value) string {
	if v.boolean || isIdent(v.typ, "bool") {
		return v.code
	}
	switch typ := v.typ.(type) {
	case *ast.Ident:
		switch {
		case typ.Name == "string":
			return v.code + ` != ""`
		case numeric[typ.Name]:
			return v.code + " != 0"
		case typ.Name == "any" || typ.Name == "error":
			return v.code + " != nil"
		}
	case *ast.ArrayType, *ast.MapType:
		return "len(" + v.code + ") > 0"
	case *ast.StarExpr, *ast.InterfaceType, *ast.FuncType, *ast.ChanType:
		return v.code + " != nil"
	}
	g.needTruth()
	return "tmplTruth(" + v.code + ")"
}

func (g *generator) needTruth() {
	g.helpers["truth"] = true
	g.imports["reflect"] = true
}

func (g *generator) pipe(p *parse.PipeNode) value {
	var prev *value
	for _, cmd := range p.Cmds {
		v := g.command(cmd, prev)
		prev = &v
	}
	if prev == nil {
		return g.fail(p, "empty pipeline")
	}
	return *prev
}

func (g *generator) command(cmd *parse.CommandNode, final *value) value {
	var rest []value
	for _, a := range cmd.Args[1:] {
		rest = append(rest, g.arg(a))
	}
	if final != nil {
		rest = append(rest, *final)
	}

	switch n := cmd.Args[0].(type) {
	case *parse.IdentifierNode:
		return g.builtin(n, rest)
	case *parse.FieldNode:
		return g.chain(g.dot(), n.Ident, n, rest)
	case *parse.ChainNode:
		return g.chain(g.operand(n.Node), n.Field, n, rest)
	case *parse.VariableNode:
		if len(n.Ident) > 1 {
			base := g.variable(n, n.Ident[0])
			return g.chain(base, n.Ident[1:], n, rest)
		}
	}
	if len(rest) > 0 {
		return g.fail(cmd, "can't give argument to non-function %s", cmd.Args[0])
	}
	return g.arg(cmd.Args[0])
}

func (g *generator) arg(node parse.Node) value {
	switch n := node.(type) {
	case *parse.FieldNode:
		return g.chain(g.dot(), n.Ident, n, nil)
	case *parse.VariableNode:
		base := g.variable(n, n.Ident[0])
		if len(n.Ident) == 1 {
			return base
		}
		return g.chain(base, n.Ident[1:], n, nil)
	case *parse.ChainNode:
		return g.chain(g.operand(n.Node), n.Field, n, nil)
	case *parse.IdentifierNode:
		return g.builtin(n, nil)
	}
	return g.operand(node)
}

func (g *generator) operand(node parse.Node) value {
	switch n := node.(type) {
	case *parse.DotNode:
		return g.dot()
	case *parse.NilNode:
		return value{code: "nil"}
	case *parse.BoolNode:
		return value{code: strconv.FormatBool(n.True), boolean: true}
	case *parse.NumberNode:
		return value{code: n.Text}
	case *parse.StringNode:
		return value{code: n.Quoted, typ: ast.NewIdent("string")}
	case *parse.PipeNode:
		v := g.pipe(n)
		v.code = "(" + v.code + ")"
		return v
	case *parse.FieldNode, *parse.VariableNode, *parse.ChainNode, *parse.IdentifierNode:
		return g.arg(n)
	}
	return g.fail(node, "unsupported operand %s", node)
}

func (g *generator) variable(n parse.Node, name string) value {
	if name == "$" {
		return g.dots[0]
	}
	goName, ok := g.lookup(name)
	if !ok {
		return g.fail(n, "undefined variable %q", name)
	}
	return value{code: goName}
}

// chain applies field selections to base. Fields of the receiver are checked
// against the struct; deeper selections are left to the Go compiler.
func (g *generator) chain(base value, idents []string, n parse.Node, args []value) value {
	v := base
	for i, ident := range idents {
		last := i == len(idents)-1
		code := v.code + "." + ident
		var typ ast.Expr
		if v.root {
			f, isField := g.t.fields[ident]
			switch {
			case isField:
				typ = f.typ
			case g.t.methods[ident]:
				if !last || args == nil {
					code += "()"
				}
			default:
				return g.fail(n, "can't evaluate field %s in type %s", ident, g.t.name)
			}
		}
		if last && args != nil {
			code += "(" + joinCodes(args) + ")"
			typ = nil
		}
		v = value{code: code, typ: typ}
	}
	if len(idents) == 0 && args != nil {
		return g.fail(n, "can't give argument to non-function %s", n)
	}
	return v
}

func (g *generator) builtin(n *parse.IdentifierNode, args []value) value {
	need := func(min int) bool {
		if len(args) < min {
			g.fail(n, "wrong number of args for %s: want at least %d got %d", n.Ident, min, len(args))
			return false
		}
		return true
	}
	binary := func(op string) value {
		if len(args) != 2 {
			g.fail(n, "wrong number of args for %s: want 2 got %d", n.Ident, len(args))
			return value{code: "false", boolean: true}
		}
		return value{code: "(" + args[0].code + " " + op + " " + args[1].code + ")", boolean: true}
	}

	switch n.Ident {
	case "not":
		if len(args) != 1 {
			return g.fail(n, "wrong number of args for not: want 1 got %d", len(args))
		}
		return value{code: "!(" + g.cond(args[0]) + ")", boolean: true}
	case "and", "or":
		if !need(1) {
			return value{code: "nil"}
		}
		g.helpers[n.Ident] = true
		g.needTruth()
		fn := "tmplAnd"
		if n.Ident == "or" {
			fn = "tmplOr"
		}
		return value{code: fn + "(" + joinCodes(args) + ")"}
	case "len":
		if len(args) != 1 {
			return g.fail(n, "wrong number of args for len: want 1 got %d", len(args))
		}
		return value{code: "len(" + args[0].code + ")", typ: ast.NewIdent("int")}
	case "index":
		if !need(1) {
			return value{code: "nil"}
		}
		code := args[0].code
		typ := args[0].typ
		for _, a := range args[1:] {
			code += "[" + a.code + "]"
			typ = elemType(typ)
		}
		return value{code: code, typ: typ}
	case "slice":
		if !need(1) {
			return value{code: "nil"}
		}
		if len(args) > 4 {
			return g.fail(n, "too many slice indexes: %d", len(args)-1)
		}
		idx := make([]string, 0, 3)
		for _, a := range args[1:] {
			idx = append(idx, a.code)
		}
		if len(idx) < 2 {
			idx = append(idx, "")
		}
		return value{code: args[0].code + "[" + strings.Join(idx, ":") + "]", typ: args[0].typ}
	case "print", "printf", "println":
		g.imports["fmt"] = true
		fn := map[string]string{"print": "Sprint", "printf": "Sprintf", "println": "Sprintln"}[n.Ident]
		return value{code: "fmt." + fn + "(" + joinCodes(args) + ")", typ: ast.NewIdent("string")}
	case "eq":
		if !need(2) {
			return value{code: "false", boolean: true}
		}
		parts := make([]string, 0, len(args)-1)
		for _, a := range args[1:] {
			parts = append(parts, args[0].code+" == "+a.code)
		}
		return value{code: "(" + strings.Join(parts, " || ") + ")", boolean: true}
	case "ne":
		return binary("!=")
	case "lt":
		return binary("<")
	case "le":
		return binary("<=")
	case "gt":
		return binary(">")
	case "ge":
		return binary(">=")
	case "html":
		g.imports["html"] = true
		return value{code: "html.EscapeString(" + g.stringify(args) + ")", typ: ast.NewIdent("string")}
	case "urlquery":
		g.imports["net/url"] = true
		return value{code: "url.QueryEscape(" + g.stringify(args) + ")", typ: ast.NewIdent("string")}
	case "js":
		g.imports["text/template"] = true
		return value{code: "template.JSEscapeString(" + g.stringify(args) + ")", typ: ast.NewIdent("string")}
	case "call":
		if !need(1) {
			return value{code: "nil"}
		}
		return value{code: args[0].code + "(" + joinCodes(args[1:]) + ")"}
	}
	return g.fail(n, "function %q not defined", n.Ident)
}

func (g *generator) stringify(args []value) string {
	if len(args) == 1 && isIdent(args[0].typ, "string") {
		return args[0].code
	}
	g.imports["fmt"] = true
	return "fmt.Sprint(" + joinCodes(args) + ")"
}

func joinCodes(vs []value) string {
	codes := make([]string, len(vs))
	for i, v := range vs {
		codes[i] = v.code
	}
	return strings.Join(codes, ", ")
}

func isIdent(expr ast.Expr, name string) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == name
}

func elemType(expr ast.Expr) ast.Expr {
	switch t := expr.(type) {
	case *ast.ArrayType:
		return t.Elt
	case *ast.MapType:
		return t.Value
	case *ast.Ident:
		if t.Name == "string" {
			return ast.NewIdent("byte")
		}
	}
	return nil
}

const truthHelper = `
func tmplTruth(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() > 0
	case reflect.Struct:
		return true
	}
	return !rv.IsZero()
}
`

const andHelper = `
func tmplAnd(arg any, rest ...any) any {
	for _, next := range rest {
		if !tmplTruth(arg) {
			return arg
		}
		arg = next
	}
	return arg
}
`

const orHelper = `
func tmplOr(arg any, rest ...any) any {
	for _, next := range rest {
		if tmplTruth(arg) {
			return arg
		}
		arg = next
	}
	return arg
}
`
