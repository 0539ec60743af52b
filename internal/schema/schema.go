// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Field is a validated, categorized field.
type Field struct {
	// Name is the declared name; default expressions refer to the field by it.
	Name string
	// Index is the field's position in declaration order.
	Index    int
	Category Category
	Type     cty.Type

	// GoName is the exported identifier for the setter and accessor.
	GoName string
	// Ident is the unexported identifier for the struct field and the local
	// bound during build.
	Ident     string
	GoType    string
	GoImport  string
	GoDefault string

	Description string
	// Default is the HCL default expression, nil when the field has none.
	Default hcl.Expression
	// Const holds the converted value of a default that reads no fields.
	Const *cty.Value
	// Refs are the names of the fields Default reads, sorted.
	Refs  []string
	Exact bool
	Range hcl.Range
}

// HasDefault reports whether the field carries any default expression.
func (f *Field) HasDefault() bool {
	return f.Default != nil || f.GoDefault != ""
}

// Schema is the compiled form of one struct declaration.
type Schema struct {
	Name        string
	Package     string
	Description string
	// Source is the declaration file the schema came from.
	Source string
	// Guard enables the single-use check on generated builders.
	Guard  bool
	Fields []*Field
	Range  hcl.Range

	byName map[string]*Field
}

// Field looks a field up by its declared name.
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Settable returns the Required and RequiredWithDefault fields in
// declaration order. These are the builder's axes.
func (s *Schema) Settable() []*Field {
	return s.filter(func(f *Field) bool { return f.Category.Settable() })
}

// Required returns the fields that must be supplied before building.
func (s *Schema) Required() []*Field {
	return s.filter(func(f *Field) bool { return f.Category == Required })
}

// Private returns the computed fields in declaration order.
func (s *Schema) Private() []*Field {
	return s.filter(func(f *Field) bool { return f.Category == Private })
}

func (s *Schema) filter(keep func(*Field) bool) []*Field {
	var out []*Field
	for _, f := range s.Fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}
