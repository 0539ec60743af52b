package yaml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/typestate/internal/config"
	"github.com/vk/typestate/internal/ctxlog"
	"github.com/vk/typestate/internal/fsutil"
	hclload "github.com/vk/typestate/internal/hcl"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

type fileDoc struct {
	Package string      `yaml:"package"`
	Structs []structDoc `yaml:"structs"`
}

type structDoc struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Guard       *bool       `yaml:"guard"`
	Fields      []yaml.Node `yaml:"fields"`
}

type fieldDoc struct {
	Name        string  `yaml:"name"`
	Kind        string  `yaml:"kind"`
	Type        string  `yaml:"type"`
	Default     *string `yaml:"default"`
	GoType      string  `yaml:"go_type"`
	GoImport    string  `yaml:"go_import"`
	GoDefault   string  `yaml:"go_default"`
	GoName      string  `yaml:"go_name"`
	Description string  `yaml:"description"`
	Exact       bool    `yaml:"exact"`
}

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML declaration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Handles reports whether path has a .yaml or .yml extension.
func (l *Loader) Handles(path string) bool {
	return fsutil.HasExt(".yaml", ".yml")(path)
}

// Load reads every YAML declaration file reachable from paths.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, l.Handles)
	if err != nil {
		return nil, err
	}

	model := &config.Model{}
	var errs []error
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		file, err := l.LoadSource(ctx, path, src)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		model.Files = append(model.Files, file)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	logger.Debug("YAML loading complete.", "files", len(model.Files), "structs", len(model.Structs()))
	return model, nil
}

// LoadSource decodes a single in-memory YAML declaration file.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*config.File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)

	var doc fileDoc
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
	}

	file := &config.File{Path: filename, Package: doc.Package}
	if file.Package == "" {
		file.Package = filepath.Base(filepath.Dir(filename))
	}

	var errs []error
	for _, sd := range doc.Structs {
		st := &config.Struct{
			Name:        sd.Name,
			Description: sd.Description,
			Guard:       sd.Guard,
			File:        file,
			Range:       hcl.Range{Filename: filename},
		}
		for i := range sd.Fields {
			field, err := translateField(ctx, filename, &sd.Fields[i])
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: struct %q: %w", filename, sd.Name, err))
				continue
			}
			st.Fields = append(st.Fields, field)
		}
		file.Structs = append(file.Structs, st)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return file, nil
}

// translateField decodes one entry of a struct's `fields` list.
func translateField(ctx context.Context, filename string, node *yaml.Node) (*config.Field, error) {
	var fd fieldDoc
	if err := node.Decode(&fd); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}

	pos := hcl.Pos{Line: node.Line, Column: node.Column}
	field := &config.Field{
		Name:        fd.Name,
		Kind:        config.Kind(fd.Kind),
		Type:        cty.DynamicPseudoType,
		GoType:      fd.GoType,
		GoImport:    fd.GoImport,
		GoDefault:   fd.GoDefault,
		GoName:      fd.GoName,
		Description: fd.Description,
		Exact:       fd.Exact,
		Range:       hcl.Range{Filename: filename, Start: pos, End: pos},
	}

	switch field.Kind {
	case config.KindRequired, config.KindDefaulted, config.KindPrivate:
	default:
		return nil, fmt.Errorf("line %d: field %q has unknown kind %q (want required, defaulted or private)", node.Line, fd.Name, fd.Kind)
	}

	switch {
	case fd.Type != "":
		ty, err := hclload.ParseType(ctx, fd.Type, filename)
		if err != nil {
			return nil, fmt.Errorf("line %d: field %q: %w", node.Line, fd.Name, err)
		}
		field.Type = ty
	case fd.GoType == "":
		return nil, fmt.Errorf("line %d: field %q needs a 'type', or a 'go_type' when it is only used by generated code", node.Line, fd.Name)
	}

	if fd.Default != nil {
		expr, err := hclload.ParseExpressionAt(*fd.Default, filename, pos)
		if err != nil {
			return nil, fmt.Errorf("line %d: field %q: invalid default: %w", node.Line, fd.Name, err)
		}
		field.Default = expr
	}
	return field, nil
}
