package queryp

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Template represents a SQL template.
// Any method on Template spins off a mutable builder so this can be re-used freely.
//
// Templates get `quote` (escape + double quote an identifier), `escape` and `join` helpers,
// and `{{.Param "name"}}` to emit a bound `:name` param.
type Template struct {
	text *template.Template
}

var funcs = template.FuncMap{
	"quote":  Quote,
	"escape": Escape,
	"join":   strings.Join,
}

func NewTemplate(text string) (*Template, error) {
	t, err := template.New("template").Funcs(funcs).Parse(text)
	if err != nil {
		return nil, err
	}
	return &Template{
		text: t,
	}, nil
}

func Must(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}
	return t
}

// Build returns a TemplateBuilder that can be used to build custom data for the template.
func (t *Template) Build() *TemplateBuilder {
	return newTemplateBuilder(t)
}

// Data sets the data exposed to the template as `.Data`.
// Proxies to templateBuilder under the hood.
func (t *Template) Data(data any) *TemplateBuilder {
	return t.Build().Data(data)
}

// Placeholderer sets how to replace named parameters (defaults to Sqlite style '?').
// Proxies to templateBuilder under the hood.
func (t *Template) Placeholderer(p Placeholderer) *TemplateBuilder {
	return t.Build().Placeholderer(p)
}

// Param sets a named parameter value.
// Proxies to templateBuilder under the hood.
func (t *Template) Param(key string, val any) *TemplateBuilder {
	return t.Build().Param(key, val)
}

// Execute executes the template with no data or params.
func (t *Template) Execute() (string, []any, error) {
	return t.Build().Execute()
}

////////////////////////////////////////////////////////////////////////////////

type TemplateBuilder struct {
	*Template
	data          any
	params        map[string]any
	placeholderer Placeholderer
}

func newTemplateBuilder(t *Template) *TemplateBuilder {
	return &TemplateBuilder{
		Template: t,
		params:   make(map[string]any),
	}
}

func (t *TemplateBuilder) Data(data any) *TemplateBuilder {
	t.data = data
	return t
}

func (t *TemplateBuilder) Placeholderer(p Placeholderer) *TemplateBuilder {
	t.placeholderer = p
	return t
}

func (t *TemplateBuilder) Param(key string, val any) *TemplateBuilder {
	return t.Params(map[string]any{key: val})
}

func (t *TemplateBuilder) Params(params map[string]any) *TemplateBuilder {
	for k, v := range params {
		t.params[k] = v
	}
	return t
}

func (t *TemplateBuilder) Execute() (string, []any, error) {
	data := &templateData{
		Data:   t.data,
		params: t.params,
	}
	buffer := &bytes.Buffer{}
	if err := t.Template.text.Execute(buffer, data); err != nil {
		return "", nil, fmt.Errorf("failed to execute template: %w", err)
	}
	// Named params are applied after the template, so templates can emit them conditionally.
	q, args := Named(buffer.String()).
		WithPlaceholderer(t.placeholderer).
		Params(t.params).
		Execute()
	return q, args, nil
}

////////////////////////////////////////////////////////////////////////////////

// templateData is the data object a template will be executed against.
type templateData struct {
	Data   any
	params map[string]any
}

func (t *templateData) Param(key string) string {
	if _, ok := t.params[key]; ok {
		return ":" + key
	}
	return ""
}
