package registry

import (
	"context"
	"errors"

	"github.com/vk/typestate/internal/config"
	"github.com/vk/typestate/internal/ctxlog"
	"github.com/vk/typestate/internal/schema"
)

// LoadModel compiles every struct of a loaded model and registers the
// results. Compile and registration errors are returned together; schemas
// that compiled are registered regardless.
func (r *Registry) LoadModel(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading schemas from model.", "files", len(model.Files))

	schemas, err := schema.CompileModel(ctx, model)
	errs := []error{err}
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	logger.Debug("Registry loaded successfully.", "schemas", r.Len())
	return nil
}
