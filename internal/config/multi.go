package config

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// MultiLoader dispatches to several format loaders by file extension and
// merges their models.
type MultiLoader struct {
	loaders []Loader
}

// NewMultiLoader combines loaders. Earlier loaders win when several handle
// the same file.
func NewMultiLoader(loaders ...Loader) *MultiLoader {
	return &MultiLoader{loaders: loaders}
}

// Handles reports whether any loader handles path.
func (m *MultiLoader) Handles(path string) bool {
	return m.loaderFor(path) != nil
}

func (m *MultiLoader) loaderFor(path string) Loader {
	for _, l := range m.loaders {
		if l.Handles(path) {
			return l
		}
	}
	return nil
}

// Load runs every loader over paths. An explicitly named file that no loader
// handles is an error; directories are searched by each loader for its own
// extensions.
func (m *MultiLoader) Load(ctx context.Context, paths ...string) (*Model, error) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() && !m.Handles(p) {
			return nil, fmt.Errorf("no loader handles %s", p)
		}
	}

	merged := &Model{}
	var errs []error
	for _, l := range m.loaders {
		model, err := l.Load(ctx, paths...)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, f := range model.Files {
			// A file is only translated by the first loader that handles it.
			if m.loaderFor(f.Path) == l {
				merged.Files = append(merged.Files, f)
			}
		}
	}
	return merged, errors.Join(errs...)
}
