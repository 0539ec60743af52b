package exprref

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// TraversalKey renders a traversal as source text (hi, tags[0], owner.name)
// so equal references map to the same key.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// analyzeExprs returns the unique traversals read by exprs and the unique
// functions they call, both in a stable order.
func analyzeExprs(exprs ...hcl.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	functions := make(map[string]struct{})

	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		for _, t := range expr.Variables() {
			traversals[TraversalKey(t)] = t
		}
		// Variables() does not report calls; only the syntax tree has them.
		if node, ok := expr.(hclsyntax.Node); ok {
			hclsyntax.VisitAll(node, func(n hclsyntax.Node) hcl.Diagnostics {
				if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
					functions[call.Name] = struct{}{}
				}
				return nil
			})
		}
	}

	refs := make([]hcl.Traversal, 0, len(traversals))
	for _, k := range sortedKeys(traversals) {
		refs = append(refs, traversals[k])
	}
	return refs, sortedKeys(functions)
}

func rootNames(refs []hcl.Traversal) []string {
	roots := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		roots[ref.RootName()] = struct{}{}
	}
	return sortedKeys(roots)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
