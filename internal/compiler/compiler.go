// Package compiler turns a Go struct definition and a text/template body into
// Go source for a Render method on that struct. Compile is a pure function:
// malformed input yields diagnostic text instead of code.
package compiler

import (
	"errors"
	"fmt"
	"go/format"
	"strings"
)

// Func is the compiler contract used by the session.
type Func func(structSource, templateSource string) string

// Error is one diagnostic.
type Error struct {
	Source string // "struct" or "template"
	Loc    string // file:line[:col], may be empty
	Msg    string
}

func (e *Error) Error() string {
	if e.Loc == "" {
		return e.Msg
	}
	return e.Loc + ": " + e.Msg
}

// ErrorList collects diagnostics in discovery order.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

const maxErrors = 10

func (l *ErrorList) add(source, loc, format string, args ...any) {
	if len(*l) >= maxErrors {
		return
	}
	*l = append(*l, &Error{Source: source, Loc: loc, Msg: fmt.Sprintf(format, args...)})
}

// Compile generates the Render method, or diagnostics when it cannot.
func Compile(structSource, templateSource string) string {
	code, err := Generate(structSource, templateSource)
	if err != nil {
		return Diagnostic(err)
	}
	return code
}

// Generate returns formatted Go source or an ErrorList.
func Generate(structSource, templateSource string) (string, error) {
	target, err := parseStruct(structSource)
	if err != nil {
		return "", err
	}
	tree, err := parseTemplate(templateSource)
	if err != nil {
		return "", err
	}

	g := newGenerator(target, tree)
	raw := g.file()
	if len(g.errs) > 0 {
		return "", g.errs
	}

	formatted, err := format.Source(raw)
	if err != nil {
		return "", ErrorList{{Source: "generated", Msg: "generated code does not parse: " + err.Error()}}
	}
	return strings.TrimRight(string(formatted), " \t\r\n"), nil
}

// Diagnostic renders err the way the output pane shows compiler failures.
func Diagnostic(err error) string {
	var list ErrorList
	if !errors.As(err, &list) {
		return "error: " + err.Error()
	}
	var b strings.Builder
	for i, e := range list {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("error: ")
		b.WriteString(e.Msg)
		if e.Loc != "" {
			b.WriteString("\n --> ")
			b.WriteString(e.Loc)
		}
	}
	return b.String()
}
