package dynbuilder_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/typestate/internal/dynbuilder"
	"github.com/vk/typestate/internal/schema"
	"github.com/vk/typestate/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

const greeting = `
struct "Foo" {
  required "hi" {
    type = string
  }
  defaulted "bye" {
    type    = string
    default = ""
  }
  private "private" {
    type    = string
    default = ""
  }
}
`

type foo struct {
	Hi      string `cty:"hi"`
	Bye     string `cty:"bye"`
	Private string `cty:"private"`
}

func compile(t *testing.T, src string) *schema.Schema {
	t.Helper()
	schemas := testutil.CompileHCL(t, src)
	require.Len(t, schemas, 1)
	return schemas[0]
}

func newBuilder(t *testing.T, src string) *dynbuilder.Builder {
	t.Helper()
	b, err := dynbuilder.New(compile(t, src))
	require.NoError(t, err)
	return b
}

func set(t *testing.T, b *dynbuilder.Builder, name string, v cty.Value) *dynbuilder.Builder {
	t.Helper()
	next, err := b.Set(name, v)
	require.NoError(t, err)
	return next
}

func buildFoo(t *testing.T, b *dynbuilder.Builder) foo {
	t.Helper()
	val, err := b.Build(context.Background())
	require.NoError(t, err)
	var out foo
	require.NoError(t, dynbuilder.Decode(val, &out))
	return out
}

func TestBuilder_GreetingScenario(t *testing.T) {
	b := set(t, newBuilder(t, greeting), "hi", cty.StringVal("wowie"))
	if diff := cmp.Diff(foo{Hi: "wowie"}, buildFoo(t, b)); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}

	b = newBuilder(t, greeting)
	b = set(t, b, "hi", cty.StringVal("a"))
	b = set(t, b, "bye", cty.StringVal("b"))
	if diff := cmp.Diff(foo{Hi: "a", Bye: "b"}, buildFoo(t, b)); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}

	b = set(t, newBuilder(t, greeting), "bye", cty.StringVal("x"))
	_, err := b.Build(context.Background())
	require.ErrorIs(t, err, dynbuilder.ErrMissingRequired)

	var me *dynbuilder.MisuseError
	require.ErrorAs(t, err, &me)
	require.Equal(t, "hi", me.Field)
	require.Equal(t, "build", me.Op)
}

func TestBuilder_OrderIndependence(t *testing.T) {
	a := newBuilder(t, greeting)
	a = set(t, a, "hi", cty.StringVal("a"))
	a = set(t, a, "bye", cty.StringVal("b"))

	b := newBuilder(t, greeting)
	b = set(t, b, "bye", cty.StringVal("b"))
	b = set(t, b, "hi", cty.StringVal("a"))

	require.Equal(t, buildFoo(t, a), buildFoo(t, b))
}

func TestBuilder_Misuse(t *testing.T) {
	b := set(t, newBuilder(t, greeting), "hi", cty.StringVal("a"))

	testCases := []struct {
		name  string
		field string
		want  error
	}{
		{"set twice", "hi", dynbuilder.ErrAlreadySet},
		{"set private", "private", dynbuilder.ErrNotSettable},
		{"set unknown", "nope", dynbuilder.ErrUnknownField},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.Set(tc.field, cty.StringVal("x"))
			require.ErrorIs(t, err, tc.want)

			var me *dynbuilder.MisuseError
			require.ErrorAs(t, err, &me)
			require.Equal(t, tc.field, me.Field)
			require.Equal(t, "Foo", me.Struct)
		})
	}

	// Misuse leaves the builder usable.
	require.Equal(t, foo{Hi: "a"}, buildFoo(t, b))
}

func TestBuilder_SingleUse(t *testing.T) {
	b := newBuilder(t, greeting)
	next := set(t, b, "hi", cty.StringVal("a"))

	_, err := b.Set("hi", cty.StringVal("b"))
	require.ErrorIs(t, err, dynbuilder.ErrConsumed)
	require.ErrorContains(t, err, "set hi")

	copied := *next
	_, err = next.Build(context.Background())
	require.NoError(t, err)

	_, err = next.Build(context.Background())
	require.ErrorIs(t, err, dynbuilder.ErrConsumed)
	_, err = copied.Set("bye", cty.StringVal("x"))
	require.ErrorIs(t, err, dynbuilder.ErrConsumed)
	require.False(t, next.Ready())
}

func TestBuilder_ZeroValue(t *testing.T) {
	var b dynbuilder.Builder

	_, err := b.Set("hi", cty.StringVal("a"))
	require.ErrorIs(t, err, dynbuilder.ErrUninitialized)
	var misuse *dynbuilder.MisuseError
	require.ErrorAs(t, err, &misuse)
	require.Equal(t, "hi", misuse.Field)
	require.Equal(t, "set <unknown>.hi: builder not created by New", err.Error())

	_, err = b.SetGo("hi", "a")
	require.ErrorIs(t, err, dynbuilder.ErrUninitialized)
	_, err = b.Build(context.Background())
	require.ErrorIs(t, err, dynbuilder.ErrUninitialized)

	require.Nil(t, b.Schema())
	require.Empty(t, b.Filled())
	require.Empty(t, b.Missing())
	require.False(t, b.Ready())
	require.Equal(t, "uninitialized builder", b.String())
}

func TestBuilder_PrivateSeesFinalValues(t *testing.T) {
	src := `
struct "Letter" {
  required "to" {
    type = string
  }
  defaulted "subject" {
    type    = string
    default = "hello"
  }
  private "salutation" {
    type    = string
    default = "Dear ${to},"
  }
  private "summary" {
    type    = string
    default = format("%s (%s)", salutation, subject)
  }
}
`
	b := set(t, newBuilder(t, src), "to", cty.StringVal("Ada"))
	val, err := b.Build(context.Background())
	require.NoError(t, err)
	require.True(t, val.GetAttr("summary").RawEquals(cty.StringVal("Dear Ada, (hello)")))

	b = newBuilder(t, src)
	b = set(t, b, "subject", cty.StringVal("news"))
	b = set(t, b, "to", cty.StringVal("Bob"))
	val, err = b.Build(context.Background())
	require.NoError(t, err)
	require.True(t, val.GetAttr("summary").RawEquals(cty.StringVal("Dear Bob, (news)")))
}

func TestBuilder_Conversion(t *testing.T) {
	src := `
struct "Conn" {
  required "port" {
    type = number
  }
  required "host" {
    type  = string
    exact = true
  }
  defaulted "tags" {
    type    = list(string)
    default = []
  }
}
`
	b := newBuilder(t, src)

	_, err := b.Set("port", cty.StringVal("not a number"))
	require.ErrorIs(t, err, dynbuilder.ErrConvert)

	b = set(t, b, "port", cty.StringVal("8080"))

	_, err = b.Set("host", cty.NumberIntVal(1))
	require.ErrorIs(t, err, dynbuilder.ErrConvert)

	b, err = b.SetGo("host", "localhost")
	require.NoError(t, err)
	b, err = b.SetGo("tags", []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []string{"port", "host", "tags"}, b.Filled())
	require.Empty(t, b.Missing())
	require.True(t, b.Ready())

	val, err := b.Build(context.Background())
	require.NoError(t, err)

	var conn struct {
		Port int      `cty:"port"`
		Host string   `cty:"host"`
		Tags []string `cty:"tags"`
	}
	require.NoError(t, dynbuilder.Decode(val, &conn))
	require.Equal(t, 8080, conn.Port)
	require.Equal(t, "localhost", conn.Host)
	require.Equal(t, []string{"a", "b"}, conn.Tags)
}

func TestBuilder_String(t *testing.T) {
	b := set(t, newBuilder(t, greeting), "bye", cty.StringVal("x"))
	require.Equal(t, "Foo{hi: empty, bye: filled}", b.String())
	require.Equal(t, []string{"hi"}, b.Missing())
}

func TestNew_RejectsGoOnlyDefaults(t *testing.T) {
	s := compile(t, `
struct "Clock" {
  private "now" {
    type       = string
    go_default = "time.Now().String()"
  }
}
`)
	_, err := dynbuilder.New(s)
	require.ErrorIs(t, err, schema.ErrMissingDefault)
}
