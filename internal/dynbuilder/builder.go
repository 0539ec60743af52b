// Package dynbuilder is a builder driven by a schema at run time. It gives
// the same construction semantics as generated builders, but checks them
// when each operation is attempted instead of at compile time: setting a
// field twice, setting a private field, building with a required field
// missing and reusing a consumed builder all fail immediately with a
// *MisuseError naming the field. A zero Builder is not usable; start from
// New.
package dynbuilder

import (
	"context"
	"fmt"

	"github.com/vk/typestate/internal/ctxlog"
	"github.com/vk/typestate/internal/evalctx"
	"github.com/vk/typestate/internal/schema"
	"github.com/vk/typestate/internal/statespace"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Builder is one builder instance. Set returns a new instance and consumes
// the receiver; Build consumes the receiver. Only New returns a usable
// Builder: operations on the zero value fail with ErrUninitialized.
type Builder struct {
	model  *statespace.Model
	state  statespace.State
	values map[string]cty.Value

	// consumedBy names the operation that consumed the builder. It is shared
	// by copies of the Builder value.
	consumedBy *string
}

// New returns the all-empty builder for s. Every default must have an HCL
// expression, since go_default is only meaningful to generated code.
func New(s *schema.Schema) (*Builder, error) {
	for _, f := range s.Fields {
		if f.HasDefault() && f.Default == nil {
			return nil, &schema.SchemaError{
				Struct:  s.Name,
				Field:   f.Name,
				Kind:    schema.ErrMissingDefault,
				Detail:  "the field only has a go_default; add a default for run-time building",
				Subject: f.Range.Ptr(),
			}
		}
	}
	m := statespace.New(s)
	return &Builder{
		model:      m,
		state:      m.Initial(),
		values:     make(map[string]cty.Value),
		consumedBy: new(string),
	}, nil
}

// Schema returns the schema the builder was created for, or nil for a
// Builder not created by New.
func (b *Builder) Schema() *schema.Schema {
	if !b.initialized() {
		return nil
	}
	return b.model.Schema()
}

func (b *Builder) initialized() bool {
	return b != nil && b.model != nil && b.consumedBy != nil
}

func (b *Builder) misuse(op, field string, err error) *MisuseError {
	e := &MisuseError{Field: field, Op: op, Err: err}
	if s := b.Schema(); s != nil {
		e.Struct = s.Name
	}
	return e
}

// unusable returns the misuse of running op on b, or nil when b can take
// another operation.
func (b *Builder) unusable(op, field string) *MisuseError {
	switch {
	case !b.initialized():
		return b.misuse(op, field, ErrUninitialized)
	case *b.consumedBy != "":
		return b.misuse(op, field, fmt.Errorf("%w by %s", ErrConsumed, *b.consumedBy))
	}
	return nil
}

// Set fills a settable field and returns the builder for the next step.
// The value is converted to the field's type unless the field is exact, in
// which case its type must already match.
func (b *Builder) Set(name string, v cty.Value) (*Builder, error) {
	if err := b.unusable("set", name); err != nil {
		return nil, err
	}
	f, ok := b.Schema().Field(name)
	switch {
	case !ok:
		return nil, b.misuse("set", name, ErrUnknownField)
	case !f.Category.Settable():
		return nil, b.misuse("set", name, ErrNotSettable)
	}

	next, err := b.model.Transition(b.state, name)
	if err != nil {
		return nil, b.misuse("set", name, ErrAlreadySet)
	}

	val, err := fit(f, v)
	if err != nil {
		return nil, err
	}

	values := make(map[string]cty.Value, len(b.values)+1)
	for k, v := range b.values {
		values[k] = v
	}
	values[name] = val

	*b.consumedBy = "set " + name
	return &Builder{
		model:      b.model,
		state:      next,
		values:     values,
		consumedBy: new(string),
	}, nil
}

// SetGo converts a Go value with gocty and sets it.
func (b *Builder) SetGo(name string, v any) (*Builder, error) {
	if err := b.unusable("set", name); err != nil {
		return nil, err
	}
	f, ok := b.Schema().Field(name)
	if !ok || !f.Category.Settable() {
		// Let Set report the misuse.
		return b.Set(name, cty.NilVal)
	}
	ty := f.Type
	if ty.Equals(cty.DynamicPseudoType) {
		implied, err := gocty.ImpliedType(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w: %s", name, ErrConvert, err)
		}
		ty = implied
	}
	val, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w: %s", name, ErrConvert, err)
	}
	return b.Set(name, val)
}

// Filled returns the names of the fields set so far, in declaration order.
func (b *Builder) Filled() []string {
	if !b.initialized() {
		return nil
	}
	var out []string
	for _, a := range b.model.Axes() {
		if b.model.Filled(b.state, a.Field.Name) {
			out = append(out, a.Field.Name)
		}
	}
	return out
}

// Missing returns the required fields that still have to be set.
func (b *Builder) Missing() []string {
	if !b.initialized() {
		return nil
	}
	return b.model.Missing(b.state)
}

// Ready reports whether Build would accept the builder.
func (b *Builder) Ready() bool {
	return b.unusable("build", "") == nil && b.model.Terminal(b.state)
}

// String renders the builder state, for logs and error messages.
func (b *Builder) String() string {
	if !b.initialized() {
		return "uninitialized builder"
	}
	return b.Schema().Name + b.model.String(b.state)
}

// Build resolves every field and returns the value as a cty object keyed by
// field name. Settable fields take their set value or their default; private
// fields are then computed in declaration order, each default seeing the
// fields resolved before it.
func (b *Builder) Build(ctx context.Context) (cty.Value, error) {
	if err := b.unusable("build", ""); err != nil {
		return cty.NilVal, err
	}
	if missing := b.Missing(); len(missing) > 0 {
		err := b.misuse("build", missing[0], ErrMissingRequired)
		err.Missing = missing
		return cty.NilVal, err
	}
	*b.consumedBy = "build"

	s := b.Schema()
	_, logger := ctxlog.With(ctx, "struct", s.Name)
	logger.Debug("Building value.", "state", b.String())

	resolved := make(map[string]cty.Value, len(s.Fields))
	for _, f := range s.Settable() {
		if v, ok := b.values[f.Name]; ok {
			resolved[f.Name] = v
			continue
		}
		v, err := evalDefault(ctx, f, nil)
		if err != nil {
			return cty.NilVal, err
		}
		resolved[f.Name] = v
	}
	for _, f := range s.Private() {
		v, err := evalDefault(ctx, f, resolved)
		if err != nil {
			return cty.NilVal, err
		}
		resolved[f.Name] = v
	}

	logger.Debug("Value built.", "fields", len(resolved))
	return cty.ObjectVal(resolved), nil
}

func evalDefault(ctx context.Context, f *schema.Field, vars map[string]cty.Value) (cty.Value, error) {
	if f.Const != nil {
		return *f.Const, nil
	}
	v, diags := f.Default.Value(evalctx.New(ctx, vars))
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("evaluating default of %q: %w", f.Name, diags)
	}
	return fit(f, v)
}

// fit converts v to the field's type.
func fit(f *schema.Field, v cty.Value) (cty.Value, error) {
	if v.Type() == cty.NilType || !v.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("field %q: %w: value is not known", f.Name, ErrConvert)
	}
	if f.Type.Equals(cty.DynamicPseudoType) {
		return v, nil
	}
	if f.Exact {
		if !v.Type().Equals(f.Type) {
			return cty.NilVal, fmt.Errorf("field %q: %w: want exactly %s, got %s",
				f.Name, ErrConvert, f.Type.FriendlyName(), v.Type().FriendlyName())
		}
		return v, nil
	}
	out, err := convert.Convert(v, f.Type)
	if err != nil {
		return cty.NilVal, fmt.Errorf("field %q: %w: %s", f.Name, ErrConvert, err)
	}
	return out, nil
}

// Decode copies a built value into a Go struct whose fields carry `cty`
// tags naming the schema fields.
func Decode(v cty.Value, target any) error {
	return gocty.FromCtyValue(v, target)
}
