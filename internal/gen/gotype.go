package gen

import (
	"fmt"

	"github.com/vk/typestate/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// GoType returns the Go type of a field: its go_type when declared,
// otherwise a rendering of the cty type.
func GoType(f *schema.Field) (string, error) {
	if f.GoType != "" {
		return f.GoType, nil
	}
	return goTypeOf(f.Type)
}

func goTypeOf(ty cty.Type) (string, error) {
	switch {
	case ty == cty.DynamicPseudoType:
		return "any", nil
	case ty == cty.String:
		return "string", nil
	case ty == cty.Number:
		return "float64", nil
	case ty == cty.Bool:
		return "bool", nil
	case ty.IsListType(), ty.IsSetType():
		elem, err := goTypeOf(ty.ElementType())
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case ty.IsMapType():
		elem, err := goTypeOf(ty.ElementType())
		if err != nil {
			return "", err
		}
		return "map[string]" + elem, nil
	default:
		return "", fmt.Errorf("%w: %s needs a go_type", ErrNoGoType, ty.FriendlyName())
	}
}
