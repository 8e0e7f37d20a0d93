package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guppy-rs/guppy/pkg/graph"
)

// checkCommand creates the check command, which builds the graph and
// summarizes it.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <metadata.json>",
		Short: "Build the package graph and report problems",
		Long: `Build the package graph and report problems.

Fails if the metadata is inconsistent: an edge no manifest declaration
explains, an optional dev-dependency, a "dep:" feature naming a required
dependency, duplicate build targets, and so on. On success, prints package
and link counts, the workspace, and any dependency cycles.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runCheck(ctx context.Context, input string) error {
	g, err := c.loadGraph(ctx, input)
	if err != nil {
		return err
	}

	cycles := g.Cycles()
	c.printSuccess("Built package graph from %s", displayPath(input))
	c.printStats(g.Len(), g.LinkCount(), len(cycles))

	ws := g.Workspace()
	c.printKeyValue("workspace", ws.Root)
	c.printKeyValue("members", strings.Join(ws.Names(), ", "))

	for _, cycle := range cycles {
		c.printWarning("cycle: %s", formatCycle(g, cycle))
	}
	return nil
}

func formatCycle(g *graph.PackageGraph, ids []graph.PackageID) string {
	names := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		names = append(names, packageLabel(g, id))
	}
	names = append(names, names[0])
	return strings.Join(names, " "+iconArrow+" ")
}

// packageLabel renders id as "name version".
func packageLabel(g *graph.PackageGraph, id graph.PackageID) string {
	p, ok := g.Metadata(id)
	if !ok {
		return id.String()
	}
	return p.Name + " " + p.Version.String()
}
