package registry

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/vk/typestate/internal/schema"
)

// Registry maps struct names to compiled schemas.
type Registry struct {
	schemas map[string]*schema.Schema
	// byName indexes unqualified names; a name declared in several packages
	// maps to all of them.
	byName map[string][]*schema.Schema
	bound  map[string]reflect.Type
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		schemas: make(map[string]*schema.Schema),
		byName:  make(map[string][]*schema.Schema),
		bound:   make(map[string]reflect.Type),
	}
}

// Key returns the qualified name of a schema, `package.Name`.
func Key(s *schema.Schema) string {
	if s.Package == "" {
		return s.Name
	}
	return s.Package + "." + s.Name
}

// Register adds a schema. A second schema with the same qualified name is
// rejected.
func (r *Registry) Register(s *schema.Schema) error {
	key := Key(s)
	if prev, exists := r.schemas[key]; exists {
		return &schema.SchemaError{
			Struct:  s.Name,
			Kind:    schema.ErrDuplicateStruct,
			Detail:  fmt.Sprintf("%s is already registered from %s", key, prev.Source),
			Subject: s.Range.Ptr(),
		}
	}
	r.schemas[key] = s
	r.byName[s.Name] = append(r.byName[s.Name], s)
	return nil
}

// Lookup finds a schema by qualified name, or by bare struct name when only
// one package declares it.
func (r *Registry) Lookup(name string) (*schema.Schema, error) {
	if s, ok := r.schemas[name]; ok {
		return s, nil
	}
	candidates := r.byName[name]
	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("no struct named %q; known structs: %s", name, strings.Join(r.Names(), ", "))
	case 1:
		return candidates[0], nil
	default:
		keys := make([]string, len(candidates))
		for i, s := range candidates {
			keys[i] = Key(s)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("struct name %q is ambiguous, use one of: %s", name, strings.Join(keys, ", "))
	}
}

// Names returns the sorted qualified names of all schemas.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for key := range r.schemas {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// Schemas returns all schemas sorted by qualified name.
func (r *Registry) Schemas() []*schema.Schema {
	out := make([]*schema.Schema, 0, len(r.schemas))
	for _, key := range r.Names() {
		out = append(out, r.schemas[key])
	}
	return out
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	return len(r.schemas)
}
