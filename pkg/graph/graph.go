package graph

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/guppy-rs/guppy/pkg/dag"
	"github.com/guppy-rs/guppy/pkg/observability"
)

// PackageGraph is the dependency graph of a Cargo workspace and everything
// it depends on. It is immutable once built and safe for concurrent reads.
//
// Nodes are packages and edges are [PackageLink]s pointing from a package to
// its dependency. Packages live in an arena addressed by [dag.NodeIndex];
// lookups by [PackageID] go through an auxiliary map.
type PackageGraph struct {
	dag       *dag.Graph[PackageID, *PackageLink]
	packages  []*PackageMetadata
	ids       map[PackageID]dag.NodeIndex
	workspace *Workspace

	topoOnce sync.Once
	topo     *dag.Topo

	sccOnce sync.Once
	sccs    *dag.Components
}

// Len returns the number of packages.
func (g *PackageGraph) Len() int { return len(g.packages) }

// LinkCount returns the number of links.
func (g *PackageGraph) LinkCount() int { return g.dag.EdgeCount() }

// Workspace returns the workspace the metadata was generated for.
func (g *PackageGraph) Workspace() *Workspace { return g.workspace }

// DAG exposes the underlying arena graph for algorithms in package dag.
func (g *PackageGraph) DAG() *dag.Graph[PackageID, *PackageLink] { return g.dag }

// PackageIDs returns every package ID in node index order.
func (g *PackageGraph) PackageIDs() []PackageID {
	out := make([]PackageID, len(g.packages))
	for i, p := range g.packages {
		out[i] = p.ID
	}
	return out
}

// Packages returns every package in node index order.
func (g *PackageGraph) Packages() []*PackageMetadata { return g.packages }

// Links returns every link in edge index order.
func (g *PackageGraph) Links() []*PackageLink {
	out := make([]*PackageLink, g.dag.EdgeCount())
	for i := range out {
		out[i] = g.dag.EdgeWeight(dag.EdgeIndex(i))
	}
	return out
}

// Metadata returns the package with the given ID.
func (g *PackageGraph) Metadata(id PackageID) (*PackageMetadata, bool) {
	ix, ok := g.ids[id]
	if !ok {
		return nil, false
	}
	return g.packages[ix], true
}

// Package returns the package at node index ix.
func (g *PackageGraph) Package(ix dag.NodeIndex) *PackageMetadata { return g.packages[ix] }

// Link returns the link from → to.
func (g *PackageGraph) Link(from, to PackageID) (*PackageLink, bool) {
	fi, ok := g.ids[from]
	if !ok {
		return nil, false
	}
	ti, ok := g.ids[to]
	if !ok {
		return nil, false
	}
	ei, ok := g.dag.FindEdge(fi, ti)
	if !ok {
		return nil, false
	}
	return g.dag.EdgeWeight(ei), true
}

// DepLinks returns the links out of (dag.Outgoing: dependencies) or into
// (dag.Incoming: reverse dependencies) the package id, in edge index order.
func (g *PackageGraph) DepLinks(id PackageID, dir dag.Direction) ([]*PackageLink, bool) {
	ix, ok := g.ids[id]
	if !ok {
		return nil, false
	}
	edges := g.dag.Edges(ix, dir)
	out := make([]*PackageLink, len(edges))
	for i, ei := range edges {
		out[i] = g.dag.EdgeWeight(ei)
	}
	return out, true
}

// Topo returns the cycle-tolerant topological order of the graph, computing
// it on first use.
func (g *PackageGraph) Topo() *dag.Topo {
	g.topoOnce.Do(func() {
		start := time.Now()
		g.topo = dag.NewTopo(g.dag)
		observability.Query().OnDerive("topo", g.Len(), time.Since(start))
	})
	return g.topo
}

// TopoRank returns the position of id in topological order: a package is
// ranked before all of its dependencies unless they share a cycle.
func (g *PackageGraph) TopoRank(id PackageID) (int, bool) {
	ix, ok := g.ids[id]
	if !ok {
		return 0, false
	}
	return g.Topo().Rank(ix), true
}

// SortTopo sorts ids in topological order, dependents first. Unknown IDs
// sort last, in their original relative order.
func (g *PackageGraph) SortTopo(ids []PackageID) {
	topo := g.Topo()
	rank := func(id PackageID) int {
		if ix, ok := g.ids[id]; ok {
			return topo.Rank(ix)
		}
		return len(g.packages)
	}
	slices.SortStableFunc(ids, func(a, b PackageID) int { return cmp.Compare(rank(a), rank(b)) })
}

// TopoOrder returns every package ID in topological order.
func (g *PackageGraph) TopoOrder() []PackageID {
	order := g.Topo().Order()
	out := make([]PackageID, len(order))
	for i, ix := range order {
		out[i] = g.packages[ix].ID
	}
	return out
}

// SCCs returns the strongly connected components of the graph, computing
// them on first use.
func (g *PackageGraph) SCCs() *dag.Components {
	g.sccOnce.Do(func() {
		start := time.Now()
		g.sccs = dag.StronglyConnected(g.dag)
		observability.Query().OnDerive("sccs", g.Len(), time.Since(start))
	})
	return g.sccs
}

// Cycles returns the packages of each dependency cycle. Cargo only permits
// cycles that go through dev-dependencies.
func (g *PackageGraph) Cycles() [][]PackageID {
	cycles := g.SCCs().Cycles()
	out := make([][]PackageID, len(cycles))
	for i, c := range cycles {
		ids := make([]PackageID, len(c))
		for j, ix := range c {
			ids[j] = g.packages[ix].ID
		}
		out[i] = ids
	}
	return out
}

// InCycle reports whether id is part of a dependency cycle.
func (g *PackageGraph) InCycle(id PackageID) bool {
	ix, ok := g.ids[id]
	return ok && g.SCCs().IsCyclic(ix)
}
