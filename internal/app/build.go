package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/typestate/internal/dynbuilder"
	"github.com/vk/typestate/internal/evalctx"
	hclload "github.com/vk/typestate/internal/hcl"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// build runs the runtime-checked builder for one struct with the `--set`
// assignments and prints the value as JSON.
func (a *App) build(ctx context.Context) error {
	reg, err := a.load(ctx)
	if err != nil {
		return err
	}
	s, err := reg.Lookup(a.config.TypeName)
	if err != nil {
		return err
	}

	b, err := dynbuilder.New(s)
	if err != nil {
		return err
	}
	for i, set := range a.config.Sets {
		name, src, _ := strings.Cut(set, "=")
		name = strings.TrimSpace(name)

		expr, err := hclload.ParseExpression(src, "--set "+name)
		if err != nil {
			return fmt.Errorf("--set %s: %w", name, err)
		}
		val, diags := expr.Value(evalctx.New(ctx, nil))
		if diags.HasErrors() {
			return fmt.Errorf("--set %s: %w", name, diags)
		}
		if b, err = b.Set(name, val); err != nil {
			return err
		}
		a.logger.Debug("Field set.", "index", i, "field", name)
	}

	val, err := b.Build(ctx)
	if err != nil {
		return err
	}
	out, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.Name, err)
	}
	fmt.Fprintln(a.outW, string(out))
	return nil
}
