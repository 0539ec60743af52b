// Package gen renders compiled schemas into Go source: for every struct an
// immutable value type with accessors, and a generic builder whose type
// arguments record which settable fields have been filled.
//
// For a struct Foo with fields hi (required), bye (defaulted) and private
// (private) the output has this shape:
//
//	type FooBuilder[HiState, ByeState any] struct { ... }
//
//	func NewFooBuilder() FooBuilder[string, string]
//	func (b FooBuilder[HiState, ByeState]) Hi(v HiState) FooBuilder[fooSet, ByeState]
//	func (b FooBuilder[HiState, ByeState]) Bye(v ByeState) FooBuilder[HiState, fooSet]
//	func BuildFoo[ByeState any](b FooBuilder[fooSet, ByeState]) Foo
//
// An open axis is instantiated with the field's Go type, so the setter
// accepts a value. A filled axis is instantiated with the unexported marker
// fooSet, which code outside the package cannot construct. BuildFoo pins
// every required axis to the marker. Each axis also holds a zero-length
// array of its type parameter, so two instantiations never share an
// underlying type and cannot be converted into each other.
//
// Values that reach a later state without its setters, such as the zero
// value of a filled instantiation, are stopped when used. A setter panics
// when handed the marker, and BuildFoo panics naming a required field no
// setter filled. With the single-use guard on, a builder that did not come
// from NewFooBuilder panics on its first call.
package gen
