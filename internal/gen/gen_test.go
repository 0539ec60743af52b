package gen_test

import (
	"context"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/typestate/internal/gen"
	hclload "github.com/vk/typestate/internal/hcl"
	"github.com/vk/typestate/internal/schema"
	"golang.org/x/tools/txtar"
)

type fixture struct {
	schemas []*schema.Schema
	ok      []txtar.File
	bad     []txtar.File
	// ext files belong to a separate package importing the generated one.
	ext    []txtar.File
	extBad []txtar.File
}

func readFixture(t *testing.T, name string) *fixture {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name))
	require.NoError(t, err)

	fx := &fixture{}
	for _, f := range ar.Files {
		switch {
		case f.Name == "schema.hcl":
			fx.schemas = compileSource(t, string(f.Data))
		case strings.HasPrefix(f.Name, "ext/bad/"):
			fx.extBad = append(fx.extBad, f)
		case strings.HasPrefix(f.Name, "ext/"):
			fx.ext = append(fx.ext, f)
		case strings.HasPrefix(f.Name, "bad/"):
			fx.bad = append(fx.bad, f)
		default:
			fx.ok = append(fx.ok, f)
		}
	}
	require.NotEmpty(t, fx.schemas, "fixture %s has no schema.hcl", name)
	return fx
}

func compileSource(t *testing.T, src string) []*schema.Schema {
	t.Helper()
	ctx := context.Background()
	file, err := hclload.NewLoader().LoadSource(ctx, "schema.hcl", []byte(src))
	require.NoError(t, err)

	var out []*schema.Schema
	for _, decl := range file.Structs {
		s, err := schema.Compile(ctx, decl)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func generate(t *testing.T, schemas []*schema.Schema, opts gen.Options) *gen.Output {
	t.Helper()
	outs, err := gen.Generate(context.Background(), schemas, opts)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	return outs[0]
}

func collectErrors(errs map[string][]string) func(error) {
	return func(err error) {
		if te, ok := err.(types.Error); ok {
			name := te.Fset.Position(te.Pos).Filename
			errs[name] = append(errs[name], te.Msg)
			return
		}
		errs[""] = append(errs[""], err.Error())
	}
}

func parseFiles(t *testing.T, fset *token.FileSet, files []txtar.File) []*ast.File {
	t.Helper()
	var parsed []*ast.File
	for _, f := range files {
		file, err := parser.ParseFile(fset, f.Name, f.Data, 0)
		require.NoError(t, err)
		parsed = append(parsed, file)
	}
	return parsed
}

// typeCheck type-checks the generated file together with extra files as a
// single package and returns the errors, keyed by file name.
func typeCheck(t *testing.T, generated []byte, extra ...txtar.File) map[string][]string {
	t.Helper()
	fset := token.NewFileSet()
	genFile, err := parser.ParseFile(fset, "generated.go", generated, parser.ParseComments)
	require.NoError(t, err, "generated code must parse:\n%s", generated)

	files := append([]*ast.File{genFile}, parseFiles(t, fset, extra)...)
	errs := make(map[string][]string)
	conf := types.Config{
		Importer: importer.ForCompiler(fset, "source", nil),
		Error:    collectErrors(errs),
	}
	_, _ = conf.Check(genFile.Name.Name, fset, files, nil)
	return errs
}

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) {
	return f(path)
}

// typeCheckExternal type-checks the generated file as the package
// example.com/<name>, then type-checks files as another package importing
// it. Unexported names of the generated package are out of reach there.
func typeCheckExternal(t *testing.T, generated []byte, files ...txtar.File) map[string][]string {
	t.Helper()
	fset := token.NewFileSet()
	genFile, err := parser.ParseFile(fset, "generated.go", generated, parser.ParseComments)
	require.NoError(t, err)

	std := importer.ForCompiler(fset, "source", nil)
	genPath := "example.com/" + genFile.Name.Name
	genPkg, err := (&types.Config{Importer: std}).Check(genPath, fset, []*ast.File{genFile}, nil)
	require.NoError(t, err)

	errs := make(map[string][]string)
	conf := types.Config{
		Importer: importerFunc(func(path string) (*types.Package, error) {
			if path == genPath {
				return genPkg, nil
			}
			return std.Import(path)
		}),
		Error: collectErrors(errs),
	}
	_, _ = conf.Check("example.com/ext", fset, parseFiles(t, fset, files), nil)
	return errs
}

func TestGenerate_StaticGuarantees(t *testing.T) {
	for _, name := range []string{"greeting.txtar", "computed.txtar"} {
		t.Run(name, func(t *testing.T) {
			fx := readFixture(t, name)
			out := generate(t, fx.schemas, gen.Options{})

			errs := typeCheck(t, out.Content, fx.ok...)
			require.Empty(t, errs, "valid usage must type-check:\n%s", out.Content)

			for _, bad := range fx.bad {
				t.Run(bad.Name, func(t *testing.T) {
					errs := typeCheck(t, out.Content, bad)
					require.NotEmpty(t, errs[bad.Name], "misuse must not type-check")
					require.Empty(t, errs["generated.go"])
				})
			}

			if len(fx.ext) > 0 {
				errs := typeCheckExternal(t, out.Content, fx.ext...)
				require.Empty(t, errs, "importing package must type-check")
			}
			for _, bad := range fx.extBad {
				t.Run(bad.Name, func(t *testing.T) {
					errs := typeCheckExternal(t, out.Content, bad)
					require.NotEmpty(t, errs[bad.Name], "misuse from another package must not type-check")
				})
			}
		})
	}
}

func TestGenerate_BuilderStatesAreDistinctTypes(t *testing.T) {
	fx := readFixture(t, "greeting.txtar")
	for _, opts := range []gen.Options{{}, {NoGuard: true}} {
		out := generate(t, fx.schemas, opts)
		src := string(out.Content)
		require.Contains(t, src, "_      [0]HiState\n")
		require.Contains(t, src, "_      [0]ByeState\n")
		require.NotContains(t, src, "](b)", "setters must not convert between instantiations")

		errs := typeCheckExternal(t, out.Content, txtar.File{
			Name: "reopen.go",
			Data: []byte(`package ext

import "example.com/greeting"

var _ = greeting.FooBuilder[string, string](greeting.NewFooBuilder().Hi("a"))
`),
		})
		require.NotEmpty(t, errs["reopen.go"])
	}
}

func TestGenerate_RuntimeChecks(t *testing.T) {
	fx := readFixture(t, "greeting.txtar")

	src := string(generate(t, fx.schemas, gen.Options{}).Content)
	for _, want := range []string{
		`panic("FooBuilder not created by NewFooBuilder, cannot call " + by)`,
		"if _, filled := any(v).(fooSet); filled {\n\t\tpanic(\"FooBuilder: hi already set\")",
		"if !b.hiSet {\n\t\tpanic(\"BuildFoo: required field hi not set\")",
	} {
		require.Contains(t, src, want)
	}
	require.NotContains(t, src, "if !b.byeSet {\n\t\tpanic(")

	src = string(generate(t, fx.schemas, gen.Options{NoGuard: true}).Content)
	require.Contains(t, src, `panic("BuildFoo: required field hi not set")`)
	require.Contains(t, src, `panic("FooBuilder: hi already set")`)
}

func TestGenerate_NoGuard(t *testing.T) {
	fx := readFixture(t, "greeting.txtar")
	out := generate(t, fx.schemas, gen.Options{NoGuard: true})

	src := string(out.Content)
	require.NotContains(t, src, "fooTicket")
	require.NotContains(t, src, "spend(")
	require.Empty(t, typeCheck(t, out.Content, fx.ok...))
}

func TestGenerate_GreetingShape(t *testing.T) {
	fx := readFixture(t, "greeting.txtar")
	out := generate(t, fx.schemas, gen.Options{})

	require.Equal(t, "schema_builder.go", out.Path)
	require.Equal(t, "greeting", out.Package)

	src := string(out.Content)
	require.True(t, strings.HasPrefix(src, "// Code generated by typestate. DO NOT EDIT.\n"))
	for _, want := range []string{
		"package greeting\n",
		"// Foo is a greeting.\ntype Foo struct {",
		"func NewFooBuilder() FooBuilder[string, string] {",
		"func (b FooBuilder[HiState, ByeState]) Hi(v HiState) FooBuilder[fooSet, ByeState] {",
		"func (b FooBuilder[HiState, ByeState]) Bye(v ByeState) FooBuilder[HiState, fooSet] {",
		"func BuildFoo[ByeState any](b FooBuilder[fooSet, ByeState]) Foo {",
		"func (f Foo) Private() string {",
	} {
		require.Contains(t, src, want)
	}
	require.NotContains(t, src, ") Private(v")
}

func TestGenerate_Options(t *testing.T) {
	fx := readFixture(t, "greeting.txtar")
	out := generate(t, fx.schemas, gen.Options{
		Package: "other",
		OutDir:  "out",
		Suffix:  ".gen.go",
	})
	require.Equal(t, filepath.Join("out", "schema.gen.go"), out.Path)
	require.Contains(t, string(out.Content), "package other\n")
}

func TestGenerate_Errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want error
	}{
		{
			name: "object without go_type",
			src: `package = "p"
struct "Foo" {
  required "point" {
    type = object({x = number})
  }
}`,
			want: gen.ErrNoGoType,
		},
		{
			name: "computed default without go_default",
			src: `package = "p"
struct "Foo" {
  required "text" {
    type = string
  }
  private "loud" {
    type    = string
    default = upper(text)
  }
}`,
			want: gen.ErrNoGoDefault,
		},
		{
			name: "reference across Go types",
			src: `package = "p"
struct "Foo" {
  required "count" {
    type = number
  }
  private "label" {
    type    = string
    default = count
  }
}`,
			want: gen.ErrNoGoDefault,
		},
		{
			name: "local hides a package",
			src: `package = "p"
struct "Foo" {
  required "time" {
    type = string
  }
  defaulted "timeout" {
    type    = number
    go_type = "time.Duration"
    default = 5
  }
}`,
			want: gen.ErrNameClash,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			schemas := compileSource(t, tc.src)
			_, err := gen.Generate(context.Background(), schemas, gen.Options{})
			require.ErrorIs(t, err, tc.want)

			var fe *gen.FieldError
			require.ErrorAs(t, err, &fe)
			require.Equal(t, "Foo", fe.Struct)
		})
	}
}

func TestPlan_GroupsBySource(t *testing.T) {
	a := &schema.Schema{Name: "A", Package: "p", Source: filepath.Join("dir", "one.hcl")}
	b := &schema.Schema{Name: "B", Package: "p", Source: filepath.Join("dir", "two.yaml")}
	c := &schema.Schema{Name: "C", Package: "p", Source: filepath.Join("dir", "one.hcl")}

	outs := gen.Plan([]*schema.Schema{a, b, c}, gen.Options{})
	require.Len(t, outs, 2)

	var paths []string
	for _, o := range outs {
		paths = append(paths, o.Path)
	}
	sort.Strings(paths)
	require.Equal(t, []string{
		filepath.Join("dir", "one_builder.go"),
		filepath.Join("dir", "two_builder.go"),
	}, paths)
	require.Len(t, outs[0].Schemas, 2)
}
