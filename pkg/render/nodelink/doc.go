// Package nodelink renders package graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: node labels include source, edition and features; edge
//     labels include the per-kind dependency status.
//   - Platform: only links enabled on the platform are drawn.
//
// # Cycles
//
// Cargo permits cycles through dev-dependencies. The edges that close them
// are found with [dag.BackEdges] and drawn in red with constraint=false, so
// the layout stays top to bottom.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
