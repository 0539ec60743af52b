package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vk/typestate/internal/gen"
	"github.com/vk/typestate/internal/schema"
)

// generate renders builders for every declaration file and writes those
// whose content changed. It returns the paths written.
func (a *App) generate(ctx context.Context) ([]string, error) {
	reg, err := a.load(ctx)
	if err != nil {
		return nil, err
	}

	schemas := declarationOrder(reg.Schemas())
	outs, genErr := gen.Generate(ctx, schemas, gen.Options{
		Package: a.config.Package,
		NoGuard: a.config.NoGuard,
		OutDir:  a.config.OutDir,
		Suffix:  a.config.Suffix,
	})

	var written []string
	var errs []error
	if genErr != nil {
		errs = append(errs, genErr)
	}
	for _, out := range outs {
		changed, err := writeIfChanged(out.Path, out.Content)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !changed {
			a.logger.Debug("Generated file is up to date.", "path", out.Path)
			continue
		}
		a.logger.Info("Generated builder file.", "path", out.Path, "structs", len(out.Schemas))
		fmt.Fprintln(a.outW, out.Path)
		written = append(written, out.Path)
	}
	return written, errors.Join(errs...)
}

// declarationOrder sorts schemas by file and then by position in the file.
func declarationOrder(schemas []*schema.Schema) []*schema.Schema {
	out := append([]*schema.Schema(nil), schemas...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Range.Start.Byte < out[j].Range.Start.Byte
	})
	return out
}

func writeIfChanged(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}
