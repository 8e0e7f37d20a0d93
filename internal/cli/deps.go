package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guppy-rs/guppy/pkg/dag"
	gerrors "github.com/guppy-rs/guppy/pkg/errors"
	"github.com/guppy-rs/guppy/pkg/graph"
)

type depsOptions struct {
	platform string
	kind     string
	reverse  bool
}

// depsCommand creates the deps command for listing a package's direct
// dependencies and their conditions.
func (c *CLI) depsCommand() *cobra.Command {
	var opts depsOptions

	cmd := &cobra.Command{
		Use:   "deps <metadata.json> <package>",
		Short: "List the direct dependencies of a package",
		Long: `List the direct dependencies of a package with the condition under which each
is built, per dependency kind: "always", "optional", "never", or a platform
expression.

The package is a workspace member name, any package name that is unique in the
graph, or a full package ID.

With --platform (or "platform" in the config file), only dependencies that may
be built on that target are listed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDeps(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.platform, "platform", "p", "", "target triple to evaluate conditions on")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "", "dependency kind: normal, build, dev")
	cmd.Flags().BoolVarP(&opts.reverse, "reverse", "r", false, "list dependents instead")
	return cmd
}

func (c *CLI) runDeps(ctx context.Context, input, name string, opts depsOptions) error {
	var kinds []graph.DependencyKind
	if opts.kind != "" {
		k, ok := graph.ParseDependencyKind(opts.kind)
		if !ok {
			return gerrors.New(gerrors.ErrCodeInvalidInput, "unknown dependency kind %q", opts.kind)
		}
		kinds = append(kinds, k)
	}
	plat, err := c.platformFor(opts.platform)
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeInvalidPlatform, err, "invalid --platform")
	}

	g, err := c.loadGraph(ctx, input)
	if err != nil {
		return err
	}
	id, err := findPackage(g, name)
	if err != nil {
		return err
	}

	dir := dag.Outgoing
	if opts.reverse {
		dir = dag.Incoming
	}
	links, _ := g.DepLinks(id, dir)
	for _, l := range links {
		if !l.Selected(plat, kinds...) {
			continue
		}
		other := l.To
		if opts.reverse {
			other = l.From
		}
		c.printInfo("%s %s", StyleValue.Render(packageLabel(g, other)), StyleDim.Render(linkSummary(l, kinds)))
	}
	return nil
}

// findPackage resolves a package ID, workspace member name or unique
// package name.
func findPackage(g *graph.PackageGraph, name string) (graph.PackageID, error) {
	if _, ok := g.Metadata(graph.PackageID(name)); ok {
		return graph.PackageID(name), nil
	}
	if err := gerrors.ValidateCratesPackageName(name); err != nil {
		return "", err
	}
	if id, ok := g.Workspace().MemberByName(name); ok {
		return id, nil
	}

	var found []graph.PackageID
	for _, p := range g.Packages() {
		if p.Name == name {
			found = append(found, p.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", gerrors.New(gerrors.ErrCodePackageNotFound, "no package named %q", name)
	case 1:
		return found[0], nil
	default:
		return "", gerrors.New(gerrors.ErrCodeInvalidInput, "package name %q is ambiguous; use one of the IDs: %v", name, found)
	}
}

// linkSummary renders the per-kind status of l, e.g. "normal=cfg(unix) dev=always".
func linkSummary(l *graph.PackageLink, kinds []graph.DependencyKind) string {
	if len(kinds) == 0 {
		kinds = graph.DependencyKinds
	}
	var parts []string
	for _, k := range kinds {
		if r := l.Req(k); r.IsPresent() {
			parts = append(parts, fmt.Sprintf("%s=%s", k, r.Status()))
		}
	}
	return strings.Join(parts, " ")
}
