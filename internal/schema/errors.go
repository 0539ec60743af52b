// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// Sentinel kinds of schema error, for use with errors.Is.
var (
	ErrDuplicateField    = errors.New("duplicate field name")
	ErrMissingDefault    = errors.New("missing default")
	ErrUnexpectedDefault = errors.New("required field cannot have a default")
	ErrBadReference      = errors.New("invalid field reference")
	ErrBadDefault        = errors.New("invalid default")
	ErrInvalidName       = errors.New("invalid name")
	ErrUnknownKind       = errors.New("unknown field kind")
	ErrDuplicateStruct   = errors.New("duplicate struct name")
)

// SchemaError reports a problem found while compiling a declaration. It is
// raised before any builder exists.
type SchemaError struct {
	Struct string
	// Field is empty for struct-level problems.
	Field string
	// Kind is one of the sentinel errors above.
	Kind   error
	Detail string
	// Subject points at the offending declaration when it is known.
	Subject *hcl.Range
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	if e.Subject != nil && e.Subject.Filename != "" {
		fmt.Fprintf(&b, "%s: ", e.Subject.String())
	}
	fmt.Fprintf(&b, "struct %q", e.Struct)
	if e.Field != "" {
		fmt.Fprintf(&b, ", field %q", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Kind)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Unwrap exposes the sentinel kind.
func (e *SchemaError) Unwrap() error {
	return e.Kind
}

// Diagnostic renders the error as an HCL diagnostic, so it can be printed
// with source snippets alongside parse errors.
func (e *SchemaError) Diagnostic() *hcl.Diagnostic {
	summary := e.Kind.Error()
	if len(summary) > 0 {
		summary = strings.ToUpper(summary[:1]) + summary[1:]
	}
	detail := e.Detail
	if e.Field != "" {
		detail = fmt.Sprintf("Field %q of struct %q: %s", e.Field, e.Struct, detail)
	} else {
		detail = fmt.Sprintf("Struct %q: %s", e.Struct, detail)
	}
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  e.Subject,
	}
}

// Diagnostics extracts every *SchemaError from err, which may be a joined
// error, as HCL diagnostics.
func Diagnostics(err error) hcl.Diagnostics {
	var diags hcl.Diagnostics
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *SchemaError:
			diags = append(diags, e.Diagnostic())
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		default:
			var se *SchemaError
			if errors.As(err, &se) {
				diags = append(diags, se.Diagnostic())
			}
		}
	}
	walk(err)
	return diags
}
