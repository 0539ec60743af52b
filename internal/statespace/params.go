package statespace

// Param is one type argument position of the generated builder.
type Param struct {
	Axis Axis
	// Name is the type parameter name used while the axis is open.
	Name string
}

// Params returns one type parameter per axis, named after the field's Go
// name so they never collide with setter method names.
func (m *Model) Params() []Param {
	out := make([]Param, len(m.axes))
	for i, a := range m.axes {
		out[i] = Param{Axis: a, Name: a.Field.GoName + "State"}
	}
	return out
}

// Args is a list of type arguments for the builder, one per axis.
type Args []string

// OpenArgs returns the parameter names unchanged: the receiver of every
// setter.
func (m *Model) OpenArgs() Args {
	params := m.Params()
	out := make(Args, len(params))
	for i, p := range params {
		out[i] = p.Name
	}
	return out
}

// SetterResult returns the type arguments of the builder returned by the
// setter of axis: that axis becomes filled, every other axis is passed
// through.
func (m *Model) SetterResult(axis Axis, filled string) Args {
	out := m.OpenArgs()
	out[axis.Index] = filled
	return out
}

// InitialArgs returns the type arguments of the all-Empty builder: each
// field's own Go type.
func (m *Model) InitialArgs(goType func(Axis) string) Args {
	out := make(Args, len(m.axes))
	for i, a := range m.axes {
		out[i] = goType(a)
	}
	return out
}

// TerminalArgs returns the type arguments accepted by the terminal function
// and the type parameters it must declare. Required axes are pinned to
// filled; defaulted axes stay generic.
func (m *Model) TerminalArgs(filled string) (args Args, free []Param) {
	params := m.Params()
	args = make(Args, len(params))
	for i, p := range params {
		if p.Axis.Required() {
			args[i] = filled
			continue
		}
		args[i] = p.Name
		free = append(free, p)
	}
	return args, free
}
