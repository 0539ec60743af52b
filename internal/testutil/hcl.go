package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	hclload "github.com/vk/typestate/internal/hcl"
	"github.com/vk/typestate/internal/schema"
)

// CompileHCL loads src as one declaration file and compiles each struct in
// it, failing the test on any error.
func CompileHCL(t *testing.T, src string) []*schema.Schema {
	t.Helper()
	ctx := context.Background()
	file, err := hclload.NewLoader().LoadSource(ctx, "test.hcl", []byte(src))
	require.NoError(t, err)

	var out []*schema.Schema
	for _, decl := range file.Structs {
		s, err := schema.Compile(ctx, decl)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}
