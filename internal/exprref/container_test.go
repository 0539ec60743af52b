package exprref_test

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/require"
	"github.com/vk/typestate/internal/exprref"
)

// parseExpr is a test helper to quickly get an hcl.Expression from a string.
func parseExpr(t *testing.T, exprStr string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(exprStr), "test.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), "Expression parsing failed: %s", diags.Error())
	return expr
}

func traversalKeys(refs []hcl.Traversal) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, exprref.TraversalKey(r))
	}
	return out
}

func TestContainer_AddAndExtract(t *testing.T) {
	c := exprref.NewContainer(
		parseExpr(t, `upper("hello")`),
		parseExpr(t, `owner.name`),
		parseExpr(t, `lower(owner.email)`),
		parseExpr(t, `owner.name`),
		parseExpr(t, `"${hi}-${bye}"`),
	)

	require.Equal(t, []string{"lower", "upper"}, c.CalledFunctions())
	require.Equal(t, []string{"bye", "hi", "owner.email", "owner.name"}, traversalKeys(c.References()))
	require.Equal(t, []string{"bye", "hi", "owner"}, c.Roots())
}

func TestContainer_AddAfterExtract(t *testing.T) {
	c := exprref.NewContainer(parseExpr(t, `first`))
	require.Equal(t, []string{"first"}, c.Roots())

	c.Add(parseExpr(t, `second`), parseExpr(t, `my_func()`))
	require.Equal(t, []string{"my_func"}, c.CalledFunctions())
	require.Equal(t, []string{"first", "second"}, c.Roots())
}

func TestContainer_NestedFunctionCalls(t *testing.T) {
	c := exprref.NewContainer(parseExpr(t, `[for s in split(",", tags) : trimspace(s) if length(s) > 0]`))
	require.Equal(t, []string{"length", "split", "trimspace"}, c.CalledFunctions())
	require.Equal(t, []string{"tags"}, c.Roots(), "for-expression iterators are not field references")
}

func TestContainer_RangeOf(t *testing.T) {
	c := exprref.NewContainer(parseExpr(t, `a + b`))
	rng := c.RangeOf("b")
	require.NotNil(t, rng)
	require.Equal(t, 5, rng.Start.Column)
	require.Nil(t, c.RangeOf("c"))
}

func TestContainer_EdgeCases(t *testing.T) {
	t.Run("Empty Container", func(t *testing.T) {
		c := exprref.NewContainer()
		require.Empty(t, c.References())
		require.Empty(t, c.Roots())
		require.Empty(t, c.CalledFunctions())
	})

	t.Run("Adding Nil Expressions", func(t *testing.T) {
		c := exprref.NewContainer(nil, parseExpr(t, `a`), nil)
		require.Equal(t, []string{"a"}, c.Roots())
	})

	t.Run("Literal", func(t *testing.T) {
		c := exprref.NewContainer(parseExpr(t, `"plain"`))
		require.Empty(t, c.Roots())
	})
}
