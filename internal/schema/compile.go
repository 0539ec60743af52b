// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/typestate/internal/config"
	"github.com/vk/typestate/internal/ctxlog"
	"github.com/vk/typestate/internal/evalctx"
	"github.com/vk/typestate/internal/exprref"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// CompileModel compiles every struct in the model. Struct names must be
// unique within a Go package. All errors are returned together.
func CompileModel(ctx context.Context, m *config.Model) ([]*Schema, error) {
	var schemas []*Schema
	var errs []error
	seen := make(map[string]*Schema)

	for _, decl := range m.Structs() {
		s, err := Compile(ctx, decl)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		key := s.Package + "." + s.Name
		if prev, ok := seen[key]; ok {
			errs = append(errs, &SchemaError{
				Struct:  s.Name,
				Kind:    ErrDuplicateStruct,
				Detail:  fmt.Sprintf("also declared in %s", prev.Source),
				Subject: rangePtr(s.Range),
			})
			continue
		}
		seen[key] = s
		schemas = append(schemas, s)
	}
	return schemas, errors.Join(errs...)
}

// Compile validates one struct declaration and produces its schema.
func Compile(ctx context.Context, decl *config.Struct) (*Schema, error) {
	ctx, logger := ctxlog.With(ctx, "struct", decl.Name)
	logger.Debug("Compiling struct schema.", "fields", len(decl.Fields))

	c := &compiler{decl: decl}
	s := &Schema{
		Name:        decl.Name,
		Description: decl.Description,
		Guard:       true,
		Range:       decl.Range,
		byName:      make(map[string]*Field, len(decl.Fields)),
	}
	if decl.File != nil {
		s.Package = decl.File.Package
		s.Source = decl.File.Path
	}
	if decl.Guard != nil {
		s.Guard = *decl.Guard
	}

	if !token.IsIdentifier(decl.Name) || !token.IsExported(decl.Name) {
		c.fail("", ErrInvalidName, decl.Range, "struct names must be exported Go identifiers")
	}
	if s.Package != "" && (!token.IsIdentifier(s.Package) || s.Package == "_") {
		c.fail("", ErrInvalidName, decl.Range, fmt.Sprintf("package %q is not a valid Go package name", s.Package))
	}

	// First pass: names and categories, so references can be checked against
	// the complete field set regardless of declaration order.
	goNames := make(map[string]string)
	idents := make(map[string]string)
	for i, fd := range decl.Fields {
		f, ok := c.field(i, fd)
		if !ok {
			continue
		}
		if _, dup := s.byName[f.Name]; dup {
			c.fail(f.Name, ErrDuplicateField, fd.Range, "a field with this name is already declared")
			continue
		}
		if other, dup := goNames[f.GoName]; dup {
			c.fail(f.Name, ErrDuplicateField, fd.Range, fmt.Sprintf("Go name %s is already used by field %q", f.GoName, other))
			continue
		}
		if other, dup := idents[f.Ident]; dup {
			c.fail(f.Name, ErrDuplicateField, fd.Range, fmt.Sprintf("Go identifier %s is already used by field %q", f.Ident, other))
			continue
		}
		goNames[f.GoName] = f.Name
		idents[f.Ident] = f.Name
		s.byName[f.Name] = f
		s.Fields = append(s.Fields, f)
	}

	// Second pass: defaults.
	for _, f := range s.Fields {
		c.checkDefault(ctx, s, f)
	}

	if err := errors.Join(c.errs...); err != nil {
		logger.Debug("Struct schema rejected.", "errors", len(c.errs))
		return nil, err
	}
	logger.Debug("Struct schema compiled.",
		"settable", len(s.Settable()),
		"required", len(s.Required()),
		"private", len(s.Private()),
	)
	return s, nil
}

type compiler struct {
	decl *config.Struct
	errs []error
}

func (c *compiler) fail(field string, kind error, rng hcl.Range, detail string) {
	c.errs = append(c.errs, &SchemaError{
		Struct:  c.decl.Name,
		Field:   field,
		Kind:    kind,
		Detail:  detail,
		Subject: rangePtr(rng),
	})
}

// field checks everything about a declaration that does not depend on other
// fields.
func (c *compiler) field(index int, fd *config.Field) (*Field, bool) {
	if fd.Name == "" || !hclsyntax.ValidIdentifier(fd.Name) {
		c.fail(fd.Name, ErrInvalidName, fd.Range, "field names must be valid identifiers")
		return nil, false
	}

	category, ok := categoryOf(fd.Kind)
	if !ok {
		c.fail(fd.Name, ErrUnknownKind, fd.Range, fmt.Sprintf("%q is not one of required, defaulted, private", fd.Kind))
		return nil, false
	}

	f := &Field{
		Name:        fd.Name,
		Index:       index,
		Category:    category,
		Type:        fd.Type,
		GoName:      fd.GoName,
		Ident:       LocalName(fd.Name),
		GoType:      fd.GoType,
		GoImport:    fd.GoImport,
		GoDefault:   strings.TrimSpace(fd.GoDefault),
		Description: fd.Description,
		Default:     fd.Default,
		Exact:       fd.Exact,
		Range:       fd.Range,
	}
	if f.Type == cty.NilType {
		f.Type = cty.DynamicPseudoType
	}
	if f.GoName == "" {
		f.GoName = ExportedName(fd.Name)
	}
	if !token.IsIdentifier(f.GoName) || !token.IsExported(f.GoName) {
		c.fail(fd.Name, ErrInvalidName, fd.Range, fmt.Sprintf("Go name %q is not an exported identifier", f.GoName))
		return nil, false
	}
	if f.Ident == "" {
		c.fail(fd.Name, ErrInvalidName, fd.Range, "field name has no letters or digits")
		return nil, false
	}

	switch {
	case category == Required && f.HasDefault():
		c.fail(fd.Name, ErrUnexpectedDefault, fd.Range, "declare the field as defaulted to give it a default")
		return nil, false
	case category != Required && !f.HasDefault():
		c.fail(fd.Name, ErrMissingDefault, fd.Range, fmt.Sprintf("%s fields need a default or go_default", category))
		return nil, false
	}
	return f, true
}

// checkDefault validates what a default reads and, for constant defaults,
// that the value fits the declared type.
func (c *compiler) checkDefault(ctx context.Context, s *Schema, f *Field) {
	refs := make(map[string]hcl.Range)

	if f.GoDefault != "" {
		expr, err := parser.ParseExpr(f.GoDefault)
		if err != nil {
			c.fail(f.Name, ErrBadDefault, f.Range, fmt.Sprintf("go_default is not a Go expression: %s", err))
			return
		}
		for _, name := range goIdentRefs(s, expr) {
			refs[name] = f.Range
		}
	}

	var hclRefs *exprref.Container
	evaluable := true
	if f.Default != nil {
		hclRefs = exprref.NewContainer(f.Default)
		for _, fn := range hclRefs.CalledFunctions() {
			if !evalctx.HasFunction(fn) {
				c.fail(f.Name, ErrBadDefault, f.Default.Range(), fmt.Sprintf("unknown function %q", fn))
				evaluable = false
			}
		}
		for _, name := range hclRefs.Roots() {
			at := f.Default.Range()
			if r := hclRefs.RangeOf(name); r != nil {
				at = *r
			}
			refs[name] = at
		}
	}

	f.Refs = make([]string, 0, len(refs))
	for name := range refs {
		f.Refs = append(f.Refs, name)
	}
	sort.Strings(f.Refs)

	for _, name := range f.Refs {
		at := refs[name]
		target, ok := s.Field(name)
		switch {
		case !ok:
			c.fail(f.Name, ErrBadReference, at, fmt.Sprintf("no field named %q", name))
		case f.Category != Private:
			c.fail(f.Name, ErrBadReference, at, fmt.Sprintf("only private defaults may read other fields, found %q", name))
		case target == f:
			c.fail(f.Name, ErrBadReference, at, "a default cannot read its own field")
		case target.Category == Private && target.Index > f.Index:
			c.fail(f.Name, ErrBadReference, at, fmt.Sprintf("private field %q is declared after %q and is not resolved yet", name, f.Name))
		}
	}

	if f.Default == nil || !evaluable || len(hclRefs.Roots()) > 0 {
		return
	}
	val, diags := f.Default.Value(evalctx.New(ctx, nil))
	if diags.HasErrors() {
		c.fail(f.Name, ErrBadDefault, f.Default.Range(), diags.Error())
		return
	}
	if !f.Type.Equals(cty.DynamicPseudoType) {
		converted, err := convert.Convert(val, f.Type)
		if err != nil {
			c.fail(f.Name, ErrBadDefault, f.Default.Range(), fmt.Sprintf("value is not compatible with type %s: %s", f.Type.FriendlyName(), err))
			return
		}
		val = converted
	}
	f.Const = &val
}

// goIdentRefs returns the names of the fields whose Go identifier appears
// in a go_default expression. Selector names (the Sel in x.Sel) are not
// references.
func goIdentRefs(s *Schema, expr ast.Expr) []string {
	byIdent := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		byIdent[f.Ident] = f.Name
	}
	seen := make(map[string]bool)
	var out []string
	var visit func(ast.Node) bool
	visit = func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			ast.Inspect(n.X, visit)
			return false
		case *ast.Ident:
			if name, ok := byIdent[n.Name]; ok && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
		return true
	}
	ast.Inspect(expr, visit)
	return out
}

func rangePtr(r hcl.Range) *hcl.Range {
	if r.Filename == "" && r.Start.Line == 0 {
		return nil
	}
	return &r
}
