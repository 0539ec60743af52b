package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/typestate/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ValidateRegistry performs a strict parity check between each bound Go type
// and its schema: every schema field needs a `cty`-tagged struct field of a
// compatible type, and the struct may not carry tags for unknown fields.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, key := range r.Names() {
		s := r.schemas[key]
		goType, ok := r.bound[key]
		if !ok {
			continue
		}

		goFields := make(map[string]reflect.StructField)
		for i := 0; i < goType.NumField(); i++ {
			field := goType.Field(i)
			if !field.IsExported() {
				continue
			}
			tagName := strings.Split(field.Tag.Get("cty"), ",")[0]
			if tagName != "" && tagName != "-" {
				goFields[tagName] = field
			}
		}

		for name := range goFields {
			if _, ok := s.Field(name); !ok {
				errs = append(errs, fmt.Sprintf("struct '%s': Go type has field for '%s' which is not declared", key, name))
			}
		}

		for _, f := range s.Fields {
			goField, ok := goFields[f.Name]
			if !ok {
				errs = append(errs, fmt.Sprintf("struct '%s': field '%s' is not found in Go type %s", key, f.Name, goType))
				continue
			}

			if f.Type.Equals(cty.DynamicPseudoType) {
				logger.Warn("Field has 'type = any', which disables type checking against the bound Go type.", "struct", key, "field", f.Name)
				continue
			}

			goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
			if err != nil {
				errs = append(errs, fmt.Sprintf("struct '%s', field '%s': could not imply cty type from Go field type %s: %v", key, f.Name, goField.Type, err))
				continue
			}

			if !f.Type.Equals(goFieldType) {
				errs = append(errs, fmt.Sprintf("struct '%s', field '%s': type mismatch. Declaration requires '%s' but Go field '%s' provides '%s'",
					key, f.Name, f.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
