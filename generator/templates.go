package generator

import (
	"bytes"
	"fmt"
	"text/template"
)

// RenderError reports a template-engine failure or a missing variable.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error in template %q: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// newTemplates parses the template set once per generator. Missing context
// variables are rendering failures, not silent blanks.
func newTemplates() (*template.Template, error) {
	root := template.New("colagen").Option("missingkey=error")
	for name, body := range templateBodies {
		if _, err := root.New(name).Parse(body); err != nil {
			return nil, &RenderError{Template: name, Err: err}
		}
	}
	return root, nil
}

func render(t *template.Template, name string, ctx any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, ctx); err != nil {
		return "", &RenderError{Template: name, Err: err}
	}
	return buf.String(), nil
}

var templateBodies = map[string]string{
	"file_header": fileHeaderTemplate,
	"entity_struct": entityStructTemplate,
	"plural_struct": pluralStructTemplate,
	"integration_test": integrationTestTemplate,
	"go_mod": goModTemplate,
	"readme": readmeTemplate,
}

const fileHeaderTemplate = `// Code generated by colaGen. DO NOT EDIT.
// Source: {{.source}}

package {{.package}}

import (
	"github.com/mlwelles/colaGen/model"
)
`

const entityStructTemplate = `// {{.struct_name}} is the typed view of the {{.source_name}} configuration entity.
type {{.struct_name}} struct {
{{- range .fields}}
	{{.name}} {{.go_type}}
{{- end}}
}
{{range .fields}}
// {{.getter}} returns the {{.source_name}} value.
func (x {{$.struct_name}}) {{.getter}}() {{.go_type}} {
	return x.{{.name}}
}
{{end}}
// {{.struct_name}}FromEntity builds a {{.struct_name}} from the entity with the
// given id, reading scalar fields and resolving child entities by name.
func {{.struct_name}}FromEntity(m *model.Model, id model.NodeID) {{.struct_name}} {
	var out {{.struct_name}}
{{- range .fields}}
{{- if eq .kind "entity"}}
	if cid, ok := m.FindChildEntityByName(id, {{.source_quoted}}); ok {
{{- if .optional}}
		v := {{.type_name}}FromEntity(m, cid)
		out.{{.name}} = &v
{{- else}}
		out.{{.name}} = {{.type_name}}FromEntity(m, cid)
{{- end}}
	}
{{- else if eq .kind "plural"}}
	if pid, ok := m.FindChildEntityByName(id, {{.source_quoted}}); ok {
		out.{{.name}} = {{.type_name}}FromChildren(m, pid)
	}
{{- else if eq .kind "float"}}
	if v, ok := m.FieldValue(id, {{.source_quoted}}); ok {
		switch v.Kind {
		case model.ValueFloat:
{{- if .optional}}
			out.{{.name}} = &v.Float
{{- else}}
			out.{{.name}} = v.Float
{{- end}}
		case model.ValueInteger:
{{- if .optional}}
			f := float64(v.Int)
			out.{{.name}} = &f
{{- else}}
			out.{{.name}} = float64(v.Int)
{{- end}}
		}
	}
{{- else}}
	if v, ok := m.FieldValue(id, {{.source_quoted}}); ok && v.Kind == model.{{.kind_const}} {
{{- if .optional}}
		out.{{.name}} = &v.{{.value_field}}
{{- else}}
		out.{{.name}} = v.{{.value_field}}
{{- end}}
	}
{{- end}}
{{- end}}
	return out
}
{{if .is_root}}
// {{.struct_name}}FromModel builds the full configuration from a parsed model.
func {{.struct_name}}FromModel(m *model.Model) {{.struct_name}} {
	return {{.struct_name}}FromEntity(m, m.RootID())
}
{{end}}`

const pluralStructTemplate = `// {{.struct_name}} is an ordered collection of {{.singular_struct_name}} values
// keyed by instance name, preserving source order.
type {{.struct_name}} struct {
	names []string
	items map[string]{{.singular_struct_name}}
}

// {{.struct_name}}FromChildren builds the collection from the named children of
// the plural node with the given id.
func {{.struct_name}}FromChildren(m *model.Model, parentID model.NodeID) {{.struct_name}} {
	out := {{.struct_name}}{items: make(map[string]{{.singular_struct_name}})}
	for name, cid := range m.ChildrenOfPlural(parentID) {
		out.names = append(out.names, name)
		out.items[name] = {{.singular_struct_name}}FromEntity(m, cid)
	}
	return out
}

// Count returns the number of instances in the collection.
func (c {{.struct_name}}) Count() int {
	return len(c.names)
}

// Get returns the instance with the given name.
func (c {{.struct_name}}) Get(name string) ({{.singular_struct_name}}, bool) {
	v, ok := c.items[name]
	return v, ok
}

// At returns the instance with the given name, or a zero value when absent.
func (c {{.struct_name}}) At(name string) {{.singular_struct_name}} {
	return c.items[name]
}

// Names returns the instance names in source order.
func (c {{.struct_name}}) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Each calls fn for every instance in source order.
func (c {{.struct_name}}) Each(fn func(name string, item {{.singular_struct_name}})) {
	for _, n := range c.names {
		fn(n, c.items[n])
	}
}
`

const integrationTestTemplate = `// Code generated by colaGen. DO NOT EDIT.
// Source: {{.source}}

package {{.package}}

import (
	"testing"

	"github.com/mlwelles/colaGen/model"
	"github.com/mlwelles/colaGen/parser"
)

func TestConfigLoads(t *testing.T) {
	doc, err := parser.ParseFile({{.test_file_quoted}})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	m, err := model.Build(doc)
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	root := {{.root_struct}}FromModel(m)
{{- range .assertions}}
	if root.{{.chain}}.Count() == 0 {
		t.Errorf("expected at least one {{.singular}} in {{.plural}}")
	}
{{- end}}
{{- if not .assertions}}
	_ = root
{{- end}}
}
`

const goModTemplate = `module {{.module_path}}

go 1.26.0

require github.com/mlwelles/colaGen v0.0.0

replace github.com/mlwelles/colaGen => {{.colagen_path}}
`

const readmeTemplate = `# {{.crate_name}}

Typed configuration library generated by colaGen from ` + "`{{.config_filename}}`" + `.

## Usage

` + "```go" + `
doc, err := parser.ParseFile("{{.config_filename}}")
if err != nil {
	// handle parse failure
}
m, err := model.Build(doc)
if err != nil {
	// handle model failure
}
cfg := {{.root_struct}}FromModel(m)
` + "```" + `

Regenerate with:

` + "```" + `
colaGen -crate-name {{.crate_name}} {{.config_filename}}
` + "```" + `
`
