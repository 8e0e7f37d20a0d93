package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/guppy-rs/guppy/pkg/dag"
	"github.com/guppy-rs/guppy/pkg/graph"
	"github.com/guppy-rs/guppy/pkg/platform"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the package source and declared features to node labels
	// and the per-kind status to edge labels. When false, nodes show only
	// name and version.
	Detailed bool

	// Platform, if set, drops links that are disabled on it.
	Platform *platform.Platform
}

// ToDOT converts a package graph to Graphviz DOT format. The resulting DOT
// string can be rendered with [RenderSVG].
//
// Workspace members are filled light blue. Dev-only links are dashed. Links
// that close a cycle are drawn red with constraint=false so that Graphviz can
// still rank the remaining graph top to bottom.
func ToDOT(g *graph.PackageGraph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, p := range g.Packages() {
		label := fmtLabel(p, opts.Detailed)
		attrs := fmtAttrs(p, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", p.ID, strings.Join(attrs, ", "))
	}

	back := make(map[dag.EdgeIndex]bool)
	for _, ei := range dag.BackEdges(g.DAG()) {
		back[ei] = true
	}

	buf.WriteString("\n")
	for _, l := range g.Links() {
		if opts.Platform != nil && l.EnabledOn(opts.Platform) == platform.Disabled {
			continue
		}
		attrs := fmtEdgeAttrs(l, back[l.Index()], opts.Detailed)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", l.From, l.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", l.From, l.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(p *graph.PackageMetadata, detailed bool) string {
	label := p.Name + " " + p.Version.String()
	if !detailed {
		return label
	}

	parts := []string{"source: " + p.Source.String()}
	if p.Edition != "" {
		parts = append(parts, "edition: "+p.Edition)
	}
	if fs := p.Features(); len(fs) > 0 {
		names := make([]string, len(fs))
		for i, f := range fs {
			names[i] = f.Name
		}
		parts = append(parts, "features: "+strings.Join(names, ", "))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(p *graph.PackageMetadata, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if p.InWorkspace() {
		attrs = append(attrs, "fillcolor=lightblue")
	}
	if p.IsProcMacro() {
		attrs = append(attrs, "shape=hexagon")
	}
	return attrs
}

func fmtEdgeAttrs(l *graph.PackageLink, back, detailed bool) []string {
	var attrs []string
	if l.DevOnly() {
		attrs = append(attrs, "style=dashed")
	}
	if back {
		attrs = append(attrs, "constraint=false", "color=red")
	} else if l.DevOnly() {
		attrs = append(attrs, "color=grey")
	}
	if detailed {
		var parts []string
		for _, k := range graph.DependencyKinds {
			if r := l.Req(k); r.IsPresent() {
				parts = append(parts, k.String()+": "+r.Status())
			}
		}
		attrs = append(attrs, fmt.Sprintf("label=%q", strings.Join(parts, "\n")))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one whose
// viewBox starts at the origin and whose size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
