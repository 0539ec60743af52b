// Package statespace models the builder's type-state: one independent
// Empty/Filled axis per settable field. The generator derives the type
// parameters of a builder and the substitutions performed by its setters
// and terminal function from this model; the runtime builder uses it to
// track presence.
package statespace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/typestate/internal/schema"
)

// ErrAlreadyFilled is returned by Transition for an axis that was already
// set.
var ErrAlreadyFilled = errors.New("field already set")

// ErrNoAxis is returned by Transition for a field that has no axis:
// private or undeclared fields.
var ErrNoAxis = errors.New("field is not settable")

// Axis is the two-valued state component of one settable field.
type Axis struct {
	Field *schema.Field
	// Index is the axis position, which is also the position of its type
	// parameter on the generated builder.
	Index int
}

// Required reports whether the axis must be Filled before build.
func (a Axis) Required() bool {
	return a.Field.Category == schema.Required
}

// Model is the state space of one schema.
type Model struct {
	schema *schema.Schema
	axes   []Axis
	byName map[string]int
}

// New derives the state space of s. Private fields contribute no axis.
func New(s *schema.Schema) *Model {
	m := &Model{schema: s, byName: make(map[string]int)}
	for _, f := range s.Settable() {
		m.byName[f.Name] = len(m.axes)
		m.axes = append(m.axes, Axis{Field: f, Index: len(m.axes)})
	}
	return m
}

// Schema returns the schema the model was derived from.
func (m *Model) Schema() *schema.Schema {
	return m.schema
}

// Axes returns the axes in declaration order.
func (m *Model) Axes() []Axis {
	return m.axes
}

// Axis looks up the axis of a settable field.
func (m *Model) Axis(name string) (Axis, bool) {
	i, ok := m.byName[name]
	if !ok {
		return Axis{}, false
	}
	return m.axes[i], true
}

// State is one point in the space: a Filled flag per axis.
type State struct {
	filled []bool
}

// Initial returns the all-Empty state.
func (m *Model) Initial() State {
	return State{filled: make([]bool, len(m.axes))}
}

// Filled reports whether the named field's axis is Filled in st.
func (m *Model) Filled(st State, name string) bool {
	i, ok := m.byName[name]
	return ok && st.filled[i]
}

// Transition fills the axis of the named field. Every other axis keeps its
// value. Filling an axis twice is a misuse and returns an error naming the
// field.
func (m *Model) Transition(st State, name string) (State, error) {
	i, ok := m.byName[name]
	if !ok {
		return st, fmt.Errorf("%w: %q", ErrNoAxis, name)
	}
	if st.filled[i] {
		return st, fmt.Errorf("%w: %q", ErrAlreadyFilled, name)
	}
	next := State{filled: make([]bool, len(st.filled))}
	copy(next.filled, st.filled)
	next.filled[i] = true
	return next, nil
}

// Terminal reports whether build is reachable from st, that is whether every
// Required axis is Filled.
func (m *Model) Terminal(st State) bool {
	return len(m.Missing(st)) == 0
}

// Missing returns the names of Required fields still Empty in st.
func (m *Model) Missing(st State) []string {
	var out []string
	for _, a := range m.axes {
		if a.Required() && !st.filled[a.Index] {
			out = append(out, a.Field.Name)
		}
	}
	return out
}

// StateCount is the number of distinct states, 2^N for N axes.
func (m *Model) StateCount() uint64 {
	return 1 << uint(len(m.axes))
}

// TerminalCount is the number of states from which build is reachable:
// 2^(N-R) for R Required axes.
func (m *Model) TerminalCount() uint64 {
	free := 0
	for _, a := range m.axes {
		if !a.Required() {
			free++
		}
	}
	return 1 << uint(free)
}

// String renders st as `{hi: filled, bye: empty}`.
func (m *Model) String(st State) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, a := range m.axes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Field.Name)
		if st.filled[i] {
			b.WriteString(": filled")
		} else {
			b.WriteString(": empty")
		}
	}
	b.WriteByte('}')
	return b.String()
}
