package hcl

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/typestate/internal/config"
	"github.com/vk/typestate/internal/ctxlog"
	"github.com/vk/typestate/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL declaration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Handles reports whether path has the .hcl extension.
func (l *Loader) Handles(path string) bool {
	return filepath.Ext(path) == ".hcl"
}

// Load parses every .hcl file reachable from paths and translates the
// declarations into the format-agnostic model. Diagnostics from all files are
// collected before failing so one run reports every problem.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, l.Handles)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}
	var diags hcl.Diagnostics

	for _, path := range files {
		hclFile, parseDiags := parser.ParseHCLFile(path)
		diags = append(diags, parseDiags...)
		if parseDiags.HasErrors() {
			continue
		}
		file, fileDiags := translateFile(ctx, hclFile.Body, path)
		diags = append(diags, fileDiags...)
		if fileDiags.HasErrors() {
			continue
		}
		model.Files = append(model.Files, file)
	}

	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to load HCL declarations: %w", diags)
	}

	logger.Debug("HCL loading complete.", "files", len(model.Files), "structs", len(model.Structs()))
	return model, nil
}

// LoadSource parses a single in-memory declaration file. filename is used
// for diagnostics and to derive the default package name.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*config.File, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	file, diags := translateFile(ctx, hclFile.Body, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL source %s: %w", filename, diags)
	}
	return file, nil
}
