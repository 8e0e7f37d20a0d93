// Package render holds the visual outputs for package graphs. The
// [nodelink] subpackage produces Graphviz diagrams.
package render
