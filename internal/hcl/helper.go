package hcl

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/typestate/internal/ctxlog"
)

// isExprDefined checks if an HCL expression was actually present in the source
// code. Decoders may hand back zero-width placeholder expressions for omitted
// attributes, so a simple nil check is insufficient: a real attribute value
// occupies bytes in the file.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	isDefined := exprRange.End.Byte > exprRange.Start.Byte

	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", exprRange.String(),
		"is_defined", isDefined,
	)
	return isDefined
}
