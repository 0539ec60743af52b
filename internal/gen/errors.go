package gen

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGoType is returned for fields whose declared type has no Go
	// rendering and no go_type override.
	ErrNoGoType = errors.New("no Go type for field")
	// ErrNoGoDefault is returned for defaults that cannot be rendered as Go
	// and have no go_default.
	ErrNoGoDefault = errors.New("default has no Go rendering")
	// ErrNameClash is returned when generated identifiers collide.
	ErrNameClash = errors.New("generated name clash")
	// ErrNoPackage is returned when no package name is known for an output
	// file.
	ErrNoPackage = errors.New("no package name")
)

// FieldError attributes a generation failure to one field.
type FieldError struct {
	Struct string
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("struct %q: %v", e.Struct, e.Err)
	}
	return fmt.Sprintf("struct %q, field %q: %v", e.Struct, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
