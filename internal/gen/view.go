package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"path"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/typestate/internal/schema"
	"github.com/vk/typestate/internal/statespace"
)

// fileView is the template data of one output file.
type fileView struct {
	Source  string
	Package string
	Imports []string
	Structs []*structView
}

type structView struct {
	Name    string
	Doc     string
	Recv    string
	Builder string
	New     string
	Build   string
	Marker  string
	Ticket  string
	Guard   bool

	TicketField string
	// TypeParams is the bracketed parameter list of the builder type, empty
	// when the struct has no settable field.
	TypeParams      string
	OpenType        string
	InitialType     string
	TerminalType    string
	BuildTypeParams string
	BuildParam      string

	Fields  []*fieldView
	Setters []*setterView
}

type fieldView struct {
	Name      string
	Ident     string
	GoName    string
	GoType    string
	Doc       string
	Required  bool
	Defaulted bool
	// Flag is the builder field recording that a settable field was set.
	Flag    string
	Default string
}

type setterView struct {
	*fieldView
	Method     string
	Param      string
	ResultType string
	SetterDoc  string
}

// namer hands out identifiers unique within one scope.
type namer map[string]bool

func (n namer) take(name string) string {
	for n[name] {
		name += "_"
	}
	n[name] = true
	return name
}

func instantiate(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + "[" + strings.Join(args, ", ") + "]"
}

func comment(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			b.WriteString("//\n")
			continue
		}
		b.WriteString("// ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// docFor uses the description as the doc comment of name when it already
// starts with name, and otherwise appends it to fallback.
func docFor(name, description, fallback string) string {
	description = strings.TrimSpace(description)
	switch {
	case description == "":
		return comment(fallback)
	case strings.HasPrefix(description, name+" "):
		return comment(description)
	default:
		return comment(fallback + "\n\n" + description)
	}
}

func newStructView(s *schema.Schema, guard bool) (*structView, error) {
	base := strings.TrimSuffix(schema.LocalName(s.Name), "_")
	v := &structView{
		Name:    s.Name,
		Doc:     docFor(s.Name, s.Description, s.Name+" is an immutable value built by "+s.Name+"Builder."),
		Recv:    strings.ToLower(s.Name[:1]),
		Builder: s.Name + "Builder",
		New:     "New" + s.Name + "Builder",
		Build:   "Build" + s.Name,
		Marker:  base + "Set",
		Ticket:  base + "Ticket",
		Guard:   guard,
	}

	fail := func(f *schema.Field, err error) error {
		name := ""
		if f != nil {
			name = f.Name
		}
		return &FieldError{Struct: s.Name, Field: name, Err: err}
	}

	locals := namer{}
	builderFields := namer{}
	for _, f := range s.Fields {
		locals[f.Ident] = true
		builderFields[f.Ident] = true
	}
	if err := checkShadowing(s); err != nil {
		return nil, fail(nil, err)
	}
	v.BuildParam = locals.take("b")
	v.TicketField = builderFields.take("ticket")

	byName := make(map[string]*fieldView, len(s.Fields))
	for _, f := range s.Fields {
		goType, err := GoType(f)
		if err != nil {
			return nil, fail(f, err)
		}
		fv := &fieldView{
			Name:      f.Name,
			Ident:     f.Ident,
			GoName:    f.GoName,
			GoType:    goType,
			Doc:       docFor(f.GoName, f.Description, fmt.Sprintf("%s returns the %s field.", f.GoName, f.Name)),
			Required:  f.Category == schema.Required,
			Defaulted: f.Category == schema.RequiredWithDefault,
		}
		if fv.Required || fv.Defaulted {
			fv.Flag = builderFields.take(f.Ident + "Set")
		}
		if f.HasDefault() {
			fv.Default, err = renderDefault(s, f, goType, byName)
			if err != nil {
				return nil, fail(f, err)
			}
		}
		byName[f.Name] = fv
		v.Fields = append(v.Fields, fv)
	}

	m := statespace.New(s)
	if len(m.Axes()) > 0 {
		names := make([]string, 0, len(m.Axes()))
		for _, p := range m.Params() {
			names = append(names, p.Name)
		}
		v.TypeParams = "[" + strings.Join(names, ", ") + " any]"
	}
	v.OpenType = instantiate(v.Builder, m.OpenArgs())
	v.InitialType = instantiate(v.Builder, m.InitialArgs(func(a statespace.Axis) string {
		return byName[a.Field.Name].GoType
	}))

	args, free := m.TerminalArgs(v.Marker)
	v.TerminalType = instantiate(v.Builder, args)
	if len(free) > 0 {
		names := make([]string, len(free))
		for i, p := range free {
			names[i] = p.Name
		}
		v.BuildTypeParams = "[" + strings.Join(names, ", ") + " any]"
	}

	for _, p := range m.Params() {
		fv := byName[p.Axis.Field.Name]
		v.Setters = append(v.Setters, &setterView{
			fieldView:  fv,
			Method:     fv.GoName,
			Param:      p.Name,
			ResultType: instantiate(v.Builder, m.SetterResult(p.Axis, v.Marker)),
			SetterDoc:  setterDoc(p.Axis.Field),
		})
	}
	return v, nil
}

func setterDoc(f *schema.Field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s sets the %s field.", f.GoName, f.Name)
	if f.Category == schema.RequiredWithDefault {
		b.WriteString(" When it is not called the field takes its default.")
	}
	if d := strings.TrimSpace(f.Description); d != "" {
		b.WriteString("\n\n")
		b.WriteString(d)
	}
	return comment(b.String())
}

// renderDefault produces the Go expression for a field's default. A
// go_default is used verbatim, a constant is rendered as a literal, and a
// default that is a plain reference to another field reads that field's
// resolved local.
func renderDefault(s *schema.Schema, f *schema.Field, goType string, resolved map[string]*fieldView) (string, error) {
	if f.GoDefault != "" {
		return f.GoDefault, nil
	}
	if f.Const != nil {
		lit, err := literal(*f.Const, goType)
		if err != nil {
			return "", fmt.Errorf("%w; set go_default", err)
		}
		return lit, nil
	}
	if f.Default == nil {
		return "", fmt.Errorf("%w: field has no default", ErrNoGoDefault)
	}
	trav, diags := hcl.AbsTraversalForExpr(f.Default)
	if diags.HasErrors() || len(trav) != 1 {
		return "", fmt.Errorf("%w: computed defaults need a go_default", ErrNoGoDefault)
	}
	target, ok := s.Field(trav.RootName())
	if !ok {
		return "", fmt.Errorf("%w: no field named %q", ErrNoGoDefault, trav.RootName())
	}
	// Settable fields are resolved before every private field.
	tv, ok := resolved[target.Name]
	if !ok && target.Category.Settable() {
		t, err := GoType(target)
		if err != nil {
			return "", err
		}
		tv = &fieldView{Ident: target.Ident, GoType: t}
	}
	if tv == nil {
		return "", fmt.Errorf("%w: %q is not resolved before %q", ErrNoGoDefault, target.Name, f.Name)
	}
	if tv.GoType != goType {
		return "", fmt.Errorf("%w: %q has Go type %s, not %s; set go_default", ErrNoGoDefault, target.Name, tv.GoType, goType)
	}
	return target.Ident, nil
}

// checkShadowing rejects fields whose local in the build function would hide
// a package that a Go type or default of the struct refers to.
func checkShadowing(s *schema.Schema) error {
	pkgs := make(map[string]bool)
	for _, f := range s.Fields {
		for _, src := range []string{f.GoType, f.GoDefault} {
			for _, q := range qualifiers(src) {
				pkgs[q] = true
			}
		}
		if f.GoImport != "" {
			pkgs[importName(f.GoImport)] = true
		}
	}
	for _, f := range s.Fields {
		if pkgs[f.Ident] {
			return fmt.Errorf("%w: field %q hides package %s in %s", ErrNameClash, f.Name, f.Ident, "Build"+s.Name)
		}
	}
	return nil
}

// qualifiers returns the X of every X.Sel in a Go expression or type.
func qualifiers(src string) []string {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil
	}
	var out []string
	ast.Inspect(expr, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if id, ok := sel.X.(*ast.Ident); ok {
				out = append(out, id.Name)
			}
		}
		return true
	})
	return out
}

// importName returns the name an import spec binds: the explicit name of
// `name "path"` or the last path element.
func importName(spec string) string {
	fields := strings.Fields(spec)
	if len(fields) == 2 {
		return fields[0]
	}
	return path.Base(strings.Trim(spec, `"`))
}

// importSpec renders a go_import value as an import line.
func importSpec(spec string) string {
	fields := strings.Fields(spec)
	if len(fields) == 2 {
		return fields[0] + " " + quoteImport(fields[1])
	}
	return quoteImport(spec)
}

func quoteImport(p string) string {
	return `"` + strings.Trim(p, `"`) + `"`
}
