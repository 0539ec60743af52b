package app

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/vk/typestate/internal/registry"
	"github.com/vk/typestate/internal/statespace"
)

// check compiles the declarations and prints, per struct, its axes and the
// size of its state space.
func (a *App) check(ctx context.Context) error {
	reg, err := a.load(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STRUCT\tREQUIRED\tDEFAULTED\tPRIVATE\tSTATES\tTERMINAL")
	for _, s := range reg.Schemas() {
		m := statespace.New(s)
		required := len(s.Required())
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\n",
			registry.Key(s),
			required,
			len(m.Axes())-required,
			len(s.Private()),
			m.StateCount(),
			m.TerminalCount(),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	a.logger.Info("Declarations are valid.", "structs", reg.Len())
	return nil
}
