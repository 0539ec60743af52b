// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package schema

import (
	"fmt"

	"github.com/vk/typestate/internal/config"
)

// Category classifies how a field obtains its value.
type Category int

const (
	Required Category = iota
	RequiredWithDefault
	Private
)

// String returns the declaration keyword of the category.
func (c Category) String() string {
	switch c {
	case Required:
		return string(config.KindRequired)
	case RequiredWithDefault:
		return string(config.KindDefaulted)
	case Private:
		return string(config.KindPrivate)
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Settable reports whether fields of the category get a setter, and with it
// an axis in the builder's state.
func (c Category) Settable() bool {
	return c == Required || c == RequiredWithDefault
}

// categoryOf maps a declared kind to its category.
func categoryOf(kind config.Kind) (Category, bool) {
	switch kind {
	case config.KindRequired:
		return Required, true
	case config.KindDefaulted:
		return RequiredWithDefault, true
	case config.KindPrivate:
		return Private, true
	default:
		return 0, false
	}
}
