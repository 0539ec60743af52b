// Package config defines the format-agnostic declaration model for struct
// schemas, along with the Loader interface implemented by the HCL and YAML
// front ends.
//
// A `config.Model` is what the loaders produce and what the schema compiler
// consumes. Nothing here is validated yet: duplicate fields, missing
// defaults and bad references are the compiler's concern. Concrete loaders
// live in separate packages.
package config
