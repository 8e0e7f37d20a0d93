package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// membersCommand creates the members command for listing workspace members.
func (c *CLI) membersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "members <metadata.json>",
		Short: "List workspace members by path",
		Long: `List workspace members sorted by their path relative to the workspace root.
Default members are marked with "*".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMembers(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runMembers(ctx context.Context, input string) error {
	g, err := c.loadGraph(ctx, input)
	if err != nil {
		return err
	}

	ws := g.Workspace()
	defaults := make(map[string]bool)
	for _, id := range ws.DefaultMembers() {
		defaults[id.String()] = true
	}

	for _, path := range ws.Paths() {
		id, _ := ws.MemberByPath(path)
		marker := " "
		if defaults[id.String()] {
			marker = StyleHighlight.Render(iconDefault)
		}
		c.printInfo("%s %s %s", marker, stylePath.Render(path), StyleDim.Render(packageLabel(g, id)))
	}
	return nil
}
