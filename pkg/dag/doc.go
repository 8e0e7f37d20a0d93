// Package dag provides an arena-backed directed graph with dense node
// indexes, together with the cycle-tolerant orderings needed to query
// package dependency graphs.
//
// # Overview
//
// Package graphs are large, built once, and then read many times. This
// package stores nodes and edges in slices addressed by [NodeIndex] and
// [EdgeIndex]. Callers keep an auxiliary map from their own identifiers to
// node indexes; the graph itself never hashes keys.
//
// Despite the name, graphs may contain cycles. Cargo permits a package's
// dev-dependencies to depend on the package itself, so a dependency graph is
// "almost" acyclic: cycles exist but only through dev edges. Every algorithm
// here terminates on cyclic input.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [Graph.AddNode] and edges with
// [Graph.AddEdge] or [Graph.UpdateEdge]:
//
//	g := dag.New[string, string](0, 0)
//	app := g.AddNode("app")
//	lib := g.AddNode("lib")
//	g.UpdateEdge(app, lib, "normal")
//
// [Graph.UpdateEdge] replaces the weight of an existing edge instead of adding
// a parallel one. Use [Graph.FindEdge] first when the existing weight must be
// merged rather than replaced.
//
// Query the structure with [Graph.Neighbors], [Graph.Edges], [Graph.Sources]
// and [Graph.Reachable]. Edge direction is described by [Direction]:
// [Outgoing] edges point from a dependent to its dependency.
//
// # Topological Order
//
// [NewTopo] computes a [Topo] by reverse post-order depth-first search. For
// every edge u → v outside a cycle, u is ranked before v. Nodes in a cycle
// are still ranked exactly once, so the ordering is total and ranks are dense.
//
// # Cycles
//
// [StronglyConnected] groups nodes into strongly connected components with
// Tarjan's algorithm; [Components.Cycles] returns the non-trivial ones.
// [BackEdges] returns the edges that close a cycle during depth-first search,
// which renderers use to draw those edges without disturbing layout.
//
// # Concurrency
//
// Graph instances are not safe for concurrent modification. A finished graph
// and any [Topo] or [Components] computed from it are read-only and may be
// shared between goroutines.
package dag
