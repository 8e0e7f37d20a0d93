package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guppy-rs/guppy/pkg/render/nodelink"
)

type dotOptions struct {
	output   string
	svg      bool
	detailed bool
	platform string
}

// dotCommand creates the dot command for exporting the graph to Graphviz.
func (c *CLI) dotCommand() *cobra.Command {
	var opts dotOptions

	cmd := &cobra.Command{
		Use:   "dot <metadata.json>",
		Short: "Export the package graph as Graphviz DOT or SVG",
		Long: `Export the package graph as a Graphviz node-link diagram.

Workspace members are highlighted, dev-only links are dashed and the links
that close dependency cycles are drawn in red. Writes DOT to stdout unless -o
is given; --svg renders the diagram in-process.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("detailed") {
				opts.detailed = c.Config.Dot.Detailed
			}
			return c.runDot(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.svg, "svg", false, "render SVG instead of DOT")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include sources, features and per-kind conditions")
	cmd.Flags().StringVarP(&opts.platform, "platform", "p", "", "only draw links enabled on this target triple")
	return cmd
}

func (c *CLI) runDot(ctx context.Context, input string, opts dotOptions) error {
	plat, err := c.platformFor(opts.platform)
	if err != nil {
		return fmt.Errorf("invalid --platform: %w", err)
	}

	g, err := c.loadGraph(ctx, input)
	if err != nil {
		return err
	}

	out := []byte(nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed, Platform: plat}))
	if opts.svg {
		spinner := newSpinner(ctx, os.Stderr, "Rendering SVG...")
		spinner.Start()
		out, err = nodelink.RenderSVG(ctx, string(out))
		spinner.Stop()
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	}

	if opts.output == "" {
		_, err := c.Out.Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	c.printSuccess("Wrote diagram")
	c.printFile(opts.output)
	return nil
}
