// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package schema compiles struct declarations into validated schemas of
// categorized fields.
//
// # Categories
//
// Every field falls into exactly one of three categories, and the split is
// deliberately three-way rather than required/optional:
//
//   - Required: must be supplied through its setter; building is impossible
//     until it has been.
//   - RequiredWithDefault: may be supplied; falls back to its default
//     expression at build time otherwise. It never blocks building.
//   - Private: never settable; always computed from its default expression
//     at build time, with the resolved values of every settable field and of
//     every earlier private field in scope by name.
//
// Collapsing RequiredWithDefault and Private into one "optional" bucket would
// change which construction sequences are legal, so the compiler keeps them
// apart.
//
// # Validation
//
// Compile rejects a declaration when a field name repeats, when a required
// field carries a default, when a defaulted or private field lacks one, or
// when a default reads a field it cannot see. All problems of a declaration
// are reported together as *SchemaError values joined with errors.Join.
package schema
