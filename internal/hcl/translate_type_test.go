package hcl_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/typestate/internal/hcl"
	"github.com/zclconf/go-cty/cty"
)

func TestParseType(t *testing.T) {
	testCases := []struct {
		src  string
		want cty.Type
	}{
		{"string", cty.String},
		{"number", cty.Number},
		{"bool", cty.Bool},
		{"any", cty.DynamicPseudoType},
		{"list(string)", cty.List(cty.String)},
		{"map(number)", cty.Map(cty.Number)},
		{"set(bool)", cty.Set(cty.Bool)},
		{"list(map(string))", cty.List(cty.Map(cty.String))},
		{`object({ name = string, "port" = number })`, cty.Object(map[string]cty.Type{"name": cty.String, "port": cty.Number})},
		{"object({})", cty.EmptyObject},
	}

	for _, tc := range testCases {
		t.Run(tc.src, func(t *testing.T) {
			got, err := hcl.ParseType(context.Background(), tc.src, "type.hcl")
			require.NoError(t, err)
			require.True(t, tc.want.Equals(got), "want %s, got %s", tc.want.FriendlyName(), got.FriendlyName())
		})
	}
}

func TestParseType_Errors(t *testing.T) {
	for _, src := range []string{"list(any)", "tuple(string)", "list(string, number)", "a.b", `"string"`, "object(string)", "("} {
		t.Run(src, func(t *testing.T) {
			_, err := hcl.ParseType(context.Background(), src, "type.hcl")
			require.Error(t, err)
		})
	}
}
