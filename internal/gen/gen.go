package gen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/typestate/internal/ctxlog"
	"github.com/vk/typestate/internal/schema"
	"golang.org/x/tools/imports"
)

// DefaultSuffix is appended to the base name of a declaration file to name
// its generated Go file.
const DefaultSuffix = "_builder.go"

// Options control code generation.
type Options struct {
	// Package overrides the package clause of every output file.
	Package string
	// NoGuard omits the single-use check from every builder, regardless of
	// the per-struct guard setting.
	NoGuard bool
	// OutDir places output files in a directory instead of next to their
	// declaration file.
	OutDir string
	// Suffix replaces DefaultSuffix.
	Suffix string
}

// Output is one generated Go file.
type Output struct {
	// Path is where the file should be written.
	Path    string
	Package string
	// Source is the declaration file the schemas came from.
	Source  string
	Schemas []*schema.Schema
	Content []byte
}

// Plan groups schemas by declaration file, keeping first-seen order, and
// computes where each group's Go file goes. Content is left empty.
func Plan(schemas []*schema.Schema, opts Options) []*Output {
	var outs []*Output
	bySource := make(map[string]*Output)
	for _, s := range schemas {
		out, ok := bySource[s.Source]
		if !ok {
			out = &Output{
				Path:    OutputPath(s.Source, opts.OutDir, opts.Suffix),
				Package: s.Package,
				Source:  s.Source,
			}
			if opts.Package != "" {
				out.Package = opts.Package
			}
			bySource[s.Source] = out
			outs = append(outs, out)
		}
		out.Schemas = append(out.Schemas, s)
	}
	return outs
}

// OutputPath derives the Go file name of a declaration file: greeting.hcl
// becomes greeting_builder.go, in outDir when it is set.
func OutputPath(source, outDir, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	dir, base := filepath.Split(source)
	if outDir != "" {
		dir = outDir
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" {
		base = "typestate"
	}
	return filepath.Join(dir, base+suffix)
}

// Generate renders every planned output. Errors of all files are returned
// together; outputs that rendered are still returned.
func Generate(ctx context.Context, schemas []*schema.Schema, opts Options) ([]*Output, error) {
	var errs []error
	var done []*Output
	for _, out := range Plan(schemas, opts) {
		content, err := Render(ctx, out.Path, out.Package, out.Source, out.Schemas, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("generating %s: %w", out.Path, err))
			continue
		}
		out.Content = content
		done = append(done, out)
	}
	return done, errors.Join(errs...)
}

// Render produces the formatted Go source for schemas that share one output
// file. filename is only used to resolve imports.
func Render(ctx context.Context, filename, pkg, source string, schemas []*schema.Schema, opts Options) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)
	if pkg == "" {
		return nil, ErrNoPackage
	}

	view := &fileView{Package: pkg}
	if source != "" {
		view.Source = filepath.Base(source)
	}

	topLevel := make(map[string]string)
	importSet := make(map[string]bool)
	var errs []error
	for _, s := range schemas {
		sv, err := newStructView(s, s.Guard && !opts.NoGuard)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, name := range []string{sv.Name, sv.Builder, sv.New, sv.Build, sv.Marker, sv.Ticket} {
			if other, ok := topLevel[name]; ok && other != s.Name {
				errs = append(errs, &FieldError{
					Struct: s.Name,
					Err:    fmt.Errorf("%w: %s is also declared for struct %q", ErrNameClash, name, other),
				})
			}
			topLevel[name] = s.Name
		}
		for _, f := range s.Fields {
			if f.GoImport != "" {
				importSet[importSpec(f.GoImport)] = true
			}
		}
		logger.Debug("Rendering builder.", "struct", s.Name, "setters", len(sv.Setters), "guard", sv.Guard)
		view.Structs = append(view.Structs, sv)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	for spec := range importSet {
		view.Imports = append(view.Imports, spec)
	}
	sort.Strings(view.Imports)

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		// Keep the unformatted source in the error so a bad go_type or
		// go_default can be located.
		return nil, fmt.Errorf("formatting generated code: %w\n%s", err, buf.String())
	}
	return formatted, nil
}
