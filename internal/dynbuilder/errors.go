package dynbuilder

import (
	"errors"
	"fmt"
	"strings"
)

// Kinds of misuse, for use with errors.Is.
var (
	ErrAlreadySet      = errors.New("field already set")
	ErrNotSettable     = errors.New("field is not settable")
	ErrUnknownField    = errors.New("unknown field")
	ErrMissingRequired = errors.New("required field not set")
	ErrConsumed        = errors.New("builder already consumed")
	ErrUninitialized   = errors.New("builder not created by New")
)

// ErrConvert is returned when a value does not fit its field's type. It is
// not a misuse: the builder can still be used.
var ErrConvert = errors.New("value does not fit field type")

// MisuseError reports an illegal operation on a Builder at the moment it is
// attempted. The builder is left as it was.
type MisuseError struct {
	Struct string
	// Field is the offending field. For ErrMissingRequired it is the first
	// missing field and Missing lists all of them.
	Field   string
	Missing []string
	// Op is the attempted operation: "set" or "build".
	Op  string
	Err error
}

func (e *MisuseError) Error() string {
	name := e.Struct
	if name == "" {
		name = "<unknown>"
	}
	switch {
	case len(e.Missing) > 1:
		return fmt.Sprintf("%s %s: %v: %s", e.Op, name, e.Err, strings.Join(e.Missing, ", "))
	case e.Field != "":
		return fmt.Sprintf("%s %s.%s: %v", e.Op, name, e.Field, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, name, e.Err)
	}
}

func (e *MisuseError) Unwrap() error {
	return e.Err
}
