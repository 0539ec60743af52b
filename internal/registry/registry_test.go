package registry_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/typestate/internal/config"
	hclload "github.com/vk/typestate/internal/hcl"
	"github.com/vk/typestate/internal/registry"
	"github.com/vk/typestate/internal/schema"
)

func loadModel(t *testing.T, sources map[string]string) *config.Model {
	t.Helper()
	model := &config.Model{}
	for name, src := range sources {
		file, err := hclload.NewLoader().LoadSource(context.Background(), name, []byte(src))
		require.NoError(t, err)
		model.Files = append(model.Files, file)
	}
	return model
}

const conn = `
package = "net"

struct "Conn" {
  required "host" {
    type = string
  }
  defaulted "port" {
    type    = number
    default = 80
  }
  defaulted "tags" {
    type    = list(string)
    default = []
  }
}
`

func TestRegistry_LoadAndLookup(t *testing.T) {
	reg := registry.New()
	err := reg.LoadModel(context.Background(), loadModel(t, map[string]string{
		"a.hcl": conn,
		"b.hcl": `
package = "web"
struct "Conn" {
  required "url" {
    type = string
  }
}
struct "Page" {
  required "path" {
    type = string
  }
}`,
	}))
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())
	require.Equal(t, []string{"net.Conn", "web.Conn", "web.Page"}, reg.Names())

	s, err := reg.Lookup("Page")
	require.NoError(t, err)
	require.Equal(t, "web", s.Package)

	s, err = reg.Lookup("net.Conn")
	require.NoError(t, err)
	require.Equal(t, "net", s.Package)

	_, err = reg.Lookup("Conn")
	require.ErrorContains(t, err, "ambiguous")

	_, err = reg.Lookup("Nope")
	require.ErrorContains(t, err, "known structs: net.Conn, web.Conn, web.Page")
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.LoadModel(context.Background(), loadModel(t, map[string]string{"a.hcl": conn})))

	err := reg.LoadModel(context.Background(), loadModel(t, map[string]string{"b.hcl": conn}))
	require.ErrorIs(t, err, schema.ErrDuplicateStruct)
	require.Equal(t, 1, reg.Len())
}

type goodConn struct {
	Host string   `cty:"host"`
	Port int      `cty:"port"`
	Tags []string `cty:"tags"`
}

type badConn struct {
	Host  string `cty:"host"`
	Port  string `cty:"port"`
	Extra bool   `cty:"extra"`
}

func TestRegistry_BindAndValidate(t *testing.T) {
	ctx := context.Background()

	reg := registry.New()
	require.NoError(t, reg.LoadModel(ctx, loadModel(t, map[string]string{"a.hcl": conn})))
	require.NoError(t, reg.Bind("Conn", reflect.TypeOf(&goodConn{})))
	require.NoError(t, reg.ValidateRegistry(ctx))

	target, err := reg.NewTarget("net.Conn")
	require.NoError(t, err)
	require.IsType(t, &goodConn{}, target)

	require.Panics(t, func() { _ = reg.Bind("Conn", reflect.TypeOf(goodConn{})) })

	reg = registry.New()
	require.NoError(t, reg.LoadModel(ctx, loadModel(t, map[string]string{"a.hcl": conn})))
	require.NoError(t, reg.Bind("Conn", reflect.TypeOf(badConn{})))

	err = reg.ValidateRegistry(ctx)
	require.ErrorContains(t, err, "'extra' which is not declared")
	require.ErrorContains(t, err, "field 'tags' is not found")
	require.ErrorContains(t, err, "field 'port': type mismatch")
}

func TestRegistry_BindErrors(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.LoadModel(context.Background(), loadModel(t, map[string]string{"a.hcl": conn})))

	require.Error(t, reg.Bind("Missing", reflect.TypeOf(goodConn{})))
	require.ErrorContains(t, reg.Bind("Conn", reflect.TypeOf(0)), "not a struct type")

	_, err := reg.NewTarget("Conn")
	require.ErrorContains(t, err, "no Go type bound")
}
