package gen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// literal renders a known cty value as a Go expression assignable to
// goType. Collections nested inside collections use elided composite
// literal types.
func literal(v cty.Value, goType string) (string, error) {
	if v.IsNull() {
		return "*new(" + goType + ")", nil
	}
	if goType == "any" && v.Type() == cty.Number {
		s, err := elemLiteral(v)
		if err != nil {
			return "", err
		}
		return "float64(" + s + ")", nil
	}
	ty := v.Type()
	if ty.IsListType() || ty.IsSetType() || ty.IsTupleType() || ty.IsMapType() {
		if goType == "any" {
			return "", fmt.Errorf("%w: collection value for an any field", ErrNoGoDefault)
		}
		body, err := collectionBody(v)
		if err != nil {
			return "", err
		}
		return goType + body, nil
	}
	return elemLiteral(v)
}

func elemLiteral(v cty.Value) (string, error) {
	if !v.IsKnown() {
		return "", fmt.Errorf("%w: value is not known until build", ErrNoGoDefault)
	}
	if v.IsNull() {
		return "", fmt.Errorf("%w: null inside a collection", ErrNoGoDefault)
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return strconv.Quote(v.AsString()), nil
	case ty == cty.Number:
		return v.AsBigFloat().Text('g', -1), nil
	case ty == cty.Bool:
		return strconv.FormatBool(v.True()), nil
	case ty.IsListType(), ty.IsSetType(), ty.IsTupleType(), ty.IsMapType():
		return collectionBody(v)
	default:
		return "", fmt.Errorf("%w: %s value", ErrNoGoDefault, ty.FriendlyName())
	}
}

func collectionBody(v cty.Value) (string, error) {
	keyed := v.Type().IsMapType()
	var parts []string
	for it := v.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		s, err := elemLiteral(ev)
		if err != nil {
			return "", err
		}
		if keyed {
			s = strconv.Quote(k.AsString()) + ": " + s
		}
		parts = append(parts, s)
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}
