package config

import (
	"context"
)

// Loader is the interface for a format-specific declaration loader.
type Loader interface {
	// Load reads declarations from the given files or directories and
	// translates them into the format-agnostic model.
	Load(ctx context.Context, paths ...string) (*Model, error)

	// Handles reports whether the loader understands the file at path.
	Handles(path string) bool
}
