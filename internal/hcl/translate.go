// This file translates the HCL body of a declaration file into the
// format-agnostic config model. Bodies are read with explicit schemas rather
// than gohcl struct tags because field blocks of different kinds interleave
// and their source order decides what a private default may reference.

package hcl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/typestate/internal/config"
	"github.com/vk/typestate/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

var rootSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "package"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "struct", LabelNames: []string{"name"}},
	},
}

var structBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
		{Name: "guard"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: string(config.KindRequired), LabelNames: []string{"name"}},
		{Type: string(config.KindDefaulted), LabelNames: []string{"name"}},
		{Type: string(config.KindPrivate), LabelNames: []string{"name"}},
	},
}

var fieldBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "type"},
		{Name: "default"},
		{Name: "go_type"},
		{Name: "go_import"},
		{Name: "go_default"},
		{Name: "go_name"},
		{Name: "description"},
		{Name: "exact"},
	},
}

// translateFile decodes the top level of a declaration file.
func translateFile(ctx context.Context, body hcl.Body, path string) (*config.File, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Translating declaration file.", "file_path", path)

	content, diags := body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	file := &config.File{Path: path}
	if attr, ok := content.Attributes["package"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &file.Package)...)
	}
	if file.Package == "" {
		file.Package = filepath.Base(filepath.Dir(path))
	}

	for _, block := range content.Blocks {
		st, structDiags := translateStruct(ctx, block)
		diags = append(diags, structDiags...)
		if st == nil {
			continue
		}
		st.File = file
		file.Structs = append(file.Structs, st)
	}

	return file, diags
}

// translateStruct decodes a single `struct` block.
func translateStruct(ctx context.Context, block *hcl.Block) (*config.Struct, hcl.Diagnostics) {
	name := block.Labels[0]
	logger := ctxlog.FromContext(ctx).With("struct", name)

	content, diags := block.Body.Content(structBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	st := &config.Struct{Name: name, Range: block.DefRange}
	if attr, ok := content.Attributes["description"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &st.Description)...)
	}
	if attr, ok := content.Attributes["guard"]; ok {
		var guard bool
		guardDiags := gohcl.DecodeExpression(attr.Expr, nil, &guard)
		diags = append(diags, guardDiags...)
		if !guardDiags.HasErrors() {
			st.Guard = &guard
		}
	}

	for _, fb := range content.Blocks {
		field, fieldDiags := translateField(ctx, fb)
		diags = append(diags, fieldDiags...)
		if field != nil {
			st.Fields = append(st.Fields, field)
		}
	}

	logger.Debug("Translated struct declaration.", "fields", len(st.Fields))
	return st, diags
}

// translateField decodes one `required`, `defaulted` or `private` block.
// Whether the block's kind and its default agree is left to the schema
// compiler, which reports it with the struct's context.
func translateField(ctx context.Context, block *hcl.Block) (*config.Field, hcl.Diagnostics) {
	content, diags := block.Body.Content(fieldBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}

	field := &config.Field{
		Name:  block.Labels[0],
		Kind:  config.Kind(block.Type),
		Type:  cty.DynamicPseudoType,
		Range: block.DefRange,
	}

	strAttrs := map[string]*string{
		"go_type":     &field.GoType,
		"go_import":   &field.GoImport,
		"go_default":  &field.GoDefault,
		"go_name":     &field.GoName,
		"description": &field.Description,
	}
	for name, target := range strAttrs {
		if attr, ok := content.Attributes[name]; ok {
			diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, target)...)
		}
	}
	if attr, ok := content.Attributes["exact"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &field.Exact)...)
	}
	if attr, ok := content.Attributes["default"]; ok && isExprDefined(ctx, attr.Expr, "default") {
		field.Default = attr.Expr
	}

	typeAttr, hasType := content.Attributes["type"]
	switch {
	case hasType:
		ty, err := typeExprToCtyType(ctx, typeAttr.Expr)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid type expression",
				Detail:   fmt.Sprintf("Field %q: %s.", field.Name, err),
				Subject:  typeAttr.Expr.Range().Ptr(),
			})
			return nil, diags
		}
		field.Type = ty
	case field.GoType == "":
		missing := block.Body.MissingItemRange()
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Missing 'type' attribute",
			Detail:   fmt.Sprintf("Field %q needs a 'type' attribute, or a 'go_type' when it is only used by generated code.", field.Name),
			Subject:  &missing,
		})
		return nil, diags
	}

	return field, diags
}
