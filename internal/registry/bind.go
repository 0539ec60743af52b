package registry

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Bind associates a Go struct type with a registered schema so runtime built
// values can be decoded into it. goType may be a struct or a pointer to one.
// Binding twice panics: it is a programming error.
func (r *Registry) Bind(name string, goType reflect.Type) error {
	s, err := r.Lookup(name)
	if err != nil {
		return err
	}
	key := Key(s)
	if _, exists := r.bound[key]; exists {
		panic(fmt.Sprintf("Go type for struct '%s' already bound", key))
	}
	for goType.Kind() == reflect.Pointer {
		goType = goType.Elem()
	}
	if goType.Kind() != reflect.Struct {
		return fmt.Errorf("cannot bind %s to %s: not a struct type", goType, key)
	}
	slog.Debug("Binding Go type.", "struct", key, "type", goType.String())
	r.bound[key] = goType
	return nil
}

// NewTarget returns a pointer to a new zero value of the Go type bound to
// name, ready to be passed to dynbuilder.Decode.
func (r *Registry) NewTarget(name string) (any, error) {
	s, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	goType, ok := r.bound[Key(s)]
	if !ok {
		return nil, fmt.Errorf("no Go type bound to struct %s", Key(s))
	}
	return reflect.New(goType).Interface(), nil
}
