package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// topoCommand creates the topo command, which prints packages with
// dependents before their dependencies.
func (c *CLI) topoCommand() *cobra.Command {
	var workspace bool

	cmd := &cobra.Command{
		Use:   "topo <metadata.json>",
		Short: "Print packages in topological order",
		Long: `Print package IDs in topological order: every package appears before the
packages it depends on. Cycles through dev-dependencies are broken
arbitrarily; every package is still printed exactly once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTopo(cmd.Context(), args[0], workspace)
		},
	}

	cmd.Flags().BoolVarP(&workspace, "workspace", "w", false, "only print workspace members")
	return cmd
}

func (c *CLI) runTopo(ctx context.Context, input string, workspace bool) error {
	g, err := c.loadGraph(ctx, input)
	if err != nil {
		return err
	}

	ws := g.Workspace()
	for _, id := range g.TopoOrder() {
		if workspace && !ws.Contains(id) {
			continue
		}
		fmt.Fprintln(c.Out, id)
	}
	return nil
}
