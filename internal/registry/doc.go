// Package registry holds the compiled schemas of one run, keyed by their
// qualified struct name, and optional Go types bound to them.
//
// The CLI resolves `--type` arguments through it. Library users can bind a Go
// struct to a schema and have the registry check, before any value is built,
// that the struct's `cty` tags and field types agree with the declaration,
// preventing a class of decode errors at run time.
package registry
