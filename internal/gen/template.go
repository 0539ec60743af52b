package gen

import "text/template"

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by typestate. DO NOT EDIT.
{{- with .Source}}
// source: {{.}}
{{- end}}

package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	{{.}}
{{- end}}
)
{{end}}
{{- range .Structs}}
{{template "struct" .}}
{{- end}}
{{define "struct"}}
{{.Doc}}type {{.Name}} struct {
{{- range .Fields}}
	{{.Ident}} {{.GoType}}
{{- end}}
}
{{range .Fields}}
{{.Doc}}func ({{$.Recv}} {{$.Name}}) {{.GoName}}() {{.GoType}} {
	return {{$.Recv}}.{{.Ident}}
}
{{end}}
// {{.Marker}} is the type argument of a filled {{.Builder}} axis. A setter
// whose axis holds it cannot be called from outside this package.
type {{.Marker}} struct{}
{{if .Guard}}
// {{.Ticket}} is shared by a {{.Builder}} and its copies until a setter or
// {{.Build}} consumes it. Only {{.New}} issues the first one.
type {{.Ticket}} struct {
	spentBy string
}

func (t *{{.Ticket}}) spend(by string) {
	if t == nil {
		panic("{{.Builder}} not created by {{.New}}, cannot call " + by)
	}
	if t.spentBy != "" {
		panic("{{.Builder}} already consumed by " + t.spentBy + ", cannot call " + by)
	}
	t.spentBy = by
}
{{end}}
// {{.Builder}} assembles a {{.Name}}. Each type parameter records whether
// one settable field has been given a value.
{{- if .Guard}} A builder is consumed by each
// setter call and by {{.Build}}.
{{- else}} Reuse of a builder is not
// checked.
{{- end}}
type {{.Builder}}{{.TypeParams}} struct {
{{- range .Setters}}
	_ [0]{{.Param}}
{{- end}}
{{- if .Guard}}
	{{.TicketField}} *{{.Ticket}}
{{- end}}
{{- range .Setters}}
	{{.Ident}} {{.GoType}}
	{{.Flag}} bool
{{- end}}
}

// {{.New}} returns a {{.Builder}} with no field set.
func {{.New}}() {{.InitialType}} {
	return {{.InitialType}}{ {{- if .Guard}}{{.TicketField}}: new({{.Ticket}}){{end -}} }
}
{{range $set := .Setters}}
{{.SetterDoc}}func (b {{$.OpenType}}) {{.Method}}(v {{.Param}}) {{.ResultType}} {
	if _, filled := any(v).({{$.Marker}}); filled {
		panic("{{$.Builder}}: {{.Name}} already set")
	}
{{- if $.Guard}}
	b.{{$.TicketField}}.spend("{{.Method}}")
{{- end}}
	next := {{.ResultType}}{
{{- if $.Guard}}
		{{$.TicketField}}: new({{$.Ticket}}),
{{- end}}
{{- range $.Setters}}
{{- if ne .Ident $set.Ident}}
		{{.Ident}}: b.{{.Ident}},
		{{.Flag}}: b.{{.Flag}},
{{- end}}
{{- end}}
		{{.Flag}}: true,
	}
	next.{{.Ident}}, _ = any(v).({{.GoType}})
	return next
}
{{end}}
// {{.Build}} returns the {{.Name}} assembled by {{.BuildParam}}, filling unset defaulted
// fields and computing private ones. It only accepts builders whose
// required fields are all set.
func {{.Build}}{{.BuildTypeParams}}({{.BuildParam}} {{.TerminalType}}) {{.Name}} {
{{- if .Guard}}
	{{.BuildParam}}.{{.TicketField}}.spend("{{.Build}}")
{{- end}}
{{- range .Setters}}
{{- if .Required}}
	if !{{$.BuildParam}}.{{.Flag}} {
		panic("{{$.Build}}: required field {{.Name}} not set")
	}
{{- end}}
{{- end}}
{{- range .Fields}}
{{- if .Required}}
	{{.Ident}} := {{$.BuildParam}}.{{.Ident}}
{{- else if .Defaulted}}
	{{.Ident}} := {{$.BuildParam}}.{{.Ident}}
	if !{{$.BuildParam}}.{{.Flag}} {
		{{.Ident}} = {{.Default}}
	}
{{- else}}
	var {{.Ident}} {{.GoType}} = {{.Default}}
{{- end}}
{{- end}}
	return {{.Name}}{
{{- range .Fields}}
		{{.Ident}}: {{.Ident}},
{{- end}}
	}
}
{{- end}}
`))
