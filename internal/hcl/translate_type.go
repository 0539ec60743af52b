// Field types are written as HCL type expressions: a keyword such as
// `string`, or a constructor call such as `list(number)` or
// `object({ name = string })`.

package hcl

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/typestate/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// ErrBadType is wrapped by every type expression error.
var ErrBadType = errors.New("invalid type expression")

var primitiveTypes = map[string]cty.Type{
	"string": cty.String,
	"number": cty.Number,
	"bool":   cty.Bool,
	"any":    cty.DynamicPseudoType,
}

var collectionTypes = map[string]func(cty.Type) cty.Type{
	"list": cty.List,
	"map":  cty.Map,
	"set":  cty.Set,
}

// ParseExpression parses src as a standalone HCL expression. It is how
// formats without native HCL syntax (YAML declarations, CLI flags) carry
// types and defaults.
func ParseExpression(src, filename string) (hcl.Expression, error) {
	return ParseExpressionAt(src, filename, hcl.Pos{Line: 1, Column: 1})
}

// ParseExpressionAt is ParseExpression for a snippet embedded in a larger
// file, so diagnostics point at the right line.
func ParseExpressionAt(src, filename string, start hcl.Pos) (hcl.Expression, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), filename, start)
	if diags.HasErrors() {
		return nil, diags
	}
	return expr, nil
}

// ParseType parses src as an HCL type expression.
func ParseType(ctx context.Context, src, filename string) (cty.Type, error) {
	expr, err := ParseExpression(src, filename)
	if err != nil {
		return cty.DynamicPseudoType, err
	}
	return typeExprToCtyType(ctx, expr)
}

func badType(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadType, fmt.Sprintf(format, args...))
}

// typeExprToCtyType converts a type expression into a cty.Type. A missing
// expression means any.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	if expr == nil {
		return cty.DynamicPseudoType, nil
	}

	if kw := hcl.ExprAsKeyword(expr); kw != "" {
		ty, ok := primitiveTypes[kw]
		if !ok {
			return cty.DynamicPseudoType, badType("unknown type %q", kw)
		}
		return ty, nil
	}

	call, ok := expr.(*hclsyntax.FunctionCallExpr)
	if !ok {
		return cty.DynamicPseudoType, badType("expected a type keyword or constructor, got %T", expr)
	}
	ctxlog.FromContext(ctx).Debug("Parsing type constructor.", "name", call.Name)
	if len(call.Args) != 1 {
		return cty.DynamicPseudoType, badType("%s() takes exactly one argument, got %d", call.Name, len(call.Args))
	}
	if call.Name == "object" {
		return objectTypeExpr(ctx, call.Args[0])
	}

	wrap, ok := collectionTypes[call.Name]
	if !ok {
		return cty.DynamicPseudoType, badType("unknown type constructor %q", call.Name)
	}
	elem, err := typeExprToCtyType(ctx, call.Args[0])
	if err != nil {
		return cty.DynamicPseudoType, err
	}
	if elem == cty.DynamicPseudoType {
		return cty.DynamicPseudoType, badType("%s(any) is not supported, use any for the whole field", call.Name)
	}
	return wrap(elem), nil
}

// objectTypeExpr parses the `{ key = type, ... }` argument of object().
func objectTypeExpr(ctx context.Context, arg hclsyntax.Expression) (cty.Type, error) {
	obj, ok := arg.(*hclsyntax.ObjectConsExpr)
	if !ok {
		return cty.DynamicPseudoType, badType("object() takes an object literal, got %T", arg)
	}

	attrs := make(map[string]cty.Type, len(obj.Items))
	for _, item := range obj.Items {
		// A key evaluates without variables only when it is a bare name or a
		// literal string.
		key, diags := item.KeyExpr.Value(nil)
		if diags.HasErrors() || !key.IsKnown() || key.IsNull() || key.Type() != cty.String {
			return cty.DynamicPseudoType, badType("object attribute names must be identifiers or quoted strings")
		}
		name := key.AsString()
		ty, err := typeExprToCtyType(ctx, item.ValueExpr)
		if err != nil {
			return cty.DynamicPseudoType, fmt.Errorf("object attribute %q: %w", name, err)
		}
		attrs[name] = ty
	}
	return cty.Object(attrs), nil
}
