package state

// DefaultStruct is shown when nothing was persisted.
const DefaultStruct = `//tmplplay:template ext=html
type HelloWorld struct {
	User       string
	FirstVisit bool
}`

// DefaultTemplate pairs with DefaultStruct.
const DefaultTemplate = `<div class="example">
    Hello, <strong>{{.User}}</strong>!
    {{- if .FirstVisit}}
        <br />
        Nice to meet you.
    {{- end}}
</div>`

// Default returns the built-in text for which.
func Default(which Source) string {
	if which == TemplateSource {
		return DefaultTemplate
	}
	return DefaultStruct
}
