// Package graph builds an immutable, queryable graph of Cargo packages from
// the output of "cargo metadata".
//
// # Overview
//
// "cargo metadata" describes a dependency graph twice. The resolve section
// says which package depends on which, under what symbol, and for which
// (kind, platform) pairs. The packages section holds each manifest's raw
// dependency declarations: version requirements, renames, optional flags,
// features and platform conditions. Neither is enough on its own. [Build]
// reconciles the two into one [PackageLink] per ordered package pair.
//
// # Building
//
//	g, err := graph.FromJSON(data, graph.WithLogger(logger))
//	if errors.Is(err, errors.ErrCodeUnmatchedDependency) {
//	    // a resolved edge has no manifest declaration behind it
//	}
//
// Construction is all-or-nothing: any inconsistency (duplicate build
// targets, a "dep:" feature naming a non-optional dependency, an edge no
// declaration explains, an optional dev-dependency, ...) fails the build
// with an *errors.Error from package github.com/guppy-rs/guppy/pkg/errors.
//
// # Matching Declarations to Edges
//
// A resolved edge is known by a symbol: the dependency's rename with "-"
// turned into "_", or else the target's library name. Each declaration
// that refers to the target by that symbol, accepts its version, and
// appears in the edge's (kind, platform) list contributes to the link.
// Conditions only ever grow by union, so the order in which declarations
// are folded in does not matter.
//
// # Conditions
//
// Each link carries a [DependencyReq] for normal, build and dev
// dependencies, split into required and optional halves. Every condition
// is a [platform.PlatformSpecs]: "always", "never", or a set of cfg()
// expressions and target triples.
//
//	link, _ := g.Link(app, libc)
//	link.Normal.Status()                            // "cfg(unix)"
//	link.EnabledOn(linux, graph.DependencyNormal)   // platform.Enabled
//
// # Traversal
//
// Links point from a package to its dependency. [PackageGraph.TopoOrder]
// lists dependents before their dependencies; cycles, which Cargo allows
// through dev-dependencies, are broken arbitrarily but every package is
// still listed exactly once. [PackageGraph.Cycles] reports them.
//
// # Concurrency
//
// A built graph is safe for concurrent reads. The topological order and
// the strongly connected components are computed on first use.
package graph
