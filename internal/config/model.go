package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of every declaration file loaded in a
// single run.
type Model struct {
	Files []*File
}

// Structs returns every struct declaration across all files, in load order.
func (m *Model) Structs() []*Struct {
	if m == nil {
		return nil
	}
	var out []*Struct
	for _, f := range m.Files {
		out = append(out, f.Structs...)
	}
	return out
}

// File is one declaration file.
type File struct {
	// Path is the file the declarations were read from.
	Path string
	// Package is the Go package generated code belongs to. Empty means the
	// name of the directory containing Path.
	Package string
	Structs []*Struct
}

// Struct is the declaration of one immutable value type.
type Struct struct {
	Name        string
	Description string
	// Guard is nil when the declaration did not say; generators then apply
	// their own default.
	Guard  *bool
	Fields []*Field
	File   *File
	Range  hcl.Range
}

// Kind is the declared category of a field, taken verbatim from the
// declaration's block type or `kind` key.
type Kind string

const (
	KindRequired  Kind = "required"
	KindDefaulted Kind = "defaulted"
	KindPrivate   Kind = "private"
)

// Field is the declaration of a single field.
type Field struct {
	Name string
	Kind Kind
	// Type is the declared value type. cty.DynamicPseudoType means `any`.
	Type cty.Type
	// Default is the HCL default expression, nil when none was given.
	Default hcl.Expression
	// GoDefault is a Go expression used verbatim by the code generator.
	GoDefault   string
	GoType      string
	GoImport    string
	GoName      string
	Description string
	// Exact disables value conversion on the field's setter.
	Exact bool
	Range hcl.Range
}
