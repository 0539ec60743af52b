// Package exprref analyzes default expressions: which fields they read and
// which functions they call. The schema compiler uses it to enforce that a
// private default only sees fields resolved before it.
package exprref

import (
	"github.com/hashicorp/hcl/v2"
)

// Container gathers HCL expressions and caches the analysis of them.
type Container struct {
	analyzed    bool
	expressions []hcl.Expression

	references      []hcl.Traversal
	roots           []string
	calledFunctions []string
}

// NewContainer creates a new, empty expression container.
func NewContainer(exprs ...hcl.Expression) *Container {
	c := &Container{}
	c.Add(exprs...)
	return c
}

// Add adds one or more expressions to the container. Nil expressions are
// ignored.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.analyzed = false
	for _, expr := range exprs {
		if expr != nil {
			c.expressions = append(c.expressions, expr)
		}
	}
}

func (c *Container) analyze() {
	if c.analyzed {
		return
	}
	c.references, c.calledFunctions = analyzeExprs(c.expressions...)
	c.roots = rootNames(c.references)
	c.analyzed = true
}

// References returns all unique variable traversals, sorted by their
// canonical text.
func (c *Container) References() []hcl.Traversal {
	c.analyze()
	return c.references
}

// Roots returns the sorted, unique root names of all references: for a
// default expression these are the field names it reads.
func (c *Container) Roots() []string {
	c.analyze()
	return c.roots
}

// CalledFunctions returns all unique function names called, sorted.
func (c *Container) CalledFunctions() []string {
	c.analyze()
	return c.calledFunctions
}

// RangeOf returns the source range of the first reference whose root is
// name, for pointing diagnostics at the offending reference.
func (c *Container) RangeOf(name string) *hcl.Range {
	for _, ref := range c.References() {
		if ref.RootName() == name {
			return ref.SourceRange().Ptr()
		}
	}
	return nil
}
