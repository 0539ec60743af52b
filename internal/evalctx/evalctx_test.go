package evalctx_test

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/require"
	"github.com/vk/typestate/internal/evalctx"
	"github.com/zclconf/go-cty/cty"
)

func eval(t *testing.T, src string, vars map[string]cty.Value) cty.Value {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), diags.Error())
	val, diags := expr.Value(evalctx.New(context.Background(), vars))
	require.False(t, diags.HasErrors(), diags.Error())
	return val
}

func TestNew_ResolvesVariablesAndFunctions(t *testing.T) {
	vars := map[string]cty.Value{
		"hi":  cty.StringVal("wowie"),
		"bye": cty.StringVal("later"),
	}
	require.True(t, eval(t, `upper(hi)`, vars).RawEquals(cty.StringVal("WOWIE")))
	require.True(t, eval(t, `"${hi}/${bye}"`, vars).RawEquals(cty.StringVal("wowie/later")))
	require.True(t, eval(t, `length(split(",", "a,b,c"))`, nil).Equals(cty.NumberIntVal(3)).True())
}

func TestFunctions(t *testing.T) {
	require.True(t, evalctx.HasFunction("format"))
	require.False(t, evalctx.HasFunction("file"))

	names := evalctx.FunctionNames()
	require.Len(t, names, len(evalctx.Functions()))
	require.IsIncreasing(t, names)
}
