package dag

import (
	"errors"
	"slices"
)

var (
	// ErrUnknownSourceNode is returned by [Graph.AddEdge] and
	// [Graph.UpdateEdge] when the source index is out of range.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] and
	// [Graph.UpdateEdge] when the target index is out of range.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrGraphHasCycle is returned by [Graph.Validate] when a directed cycle
	// is detected. Cycles are legal in package graphs (dev-dependencies can
	// point back at their dependents), so this is informational.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// NodeIndex is the dense index of a node. Indexes are assigned in insertion
// order starting at 0 and are never reused.
type NodeIndex int

// EdgeIndex is the dense index of an edge, assigned in insertion order.
type EdgeIndex int

// Direction selects outgoing or incoming edges.
type Direction int

const (
	// Outgoing follows edges from a node to the nodes it points at. In a
	// package graph these are dependencies.
	Outgoing Direction = iota
	// Incoming follows edges into a node. In a package graph these are
	// reverse dependencies.
	Incoming
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Outgoing {
		return Incoming
	}
	return Outgoing
}

func (d Direction) String() string {
	if d == Outgoing {
		return "outgoing"
	}
	return "incoming"
}

type node[N any] struct {
	weight N
	edges  [2][]EdgeIndex // indexed by Direction
}

type edge[E any] struct {
	from, to NodeIndex
	weight   E
}

// Graph is a directed graph stored in an arena: nodes and edges live in
// slices and are addressed by dense indexes. Node weights (N) and edge
// weights (E) are arbitrary.
//
// Parallel edges are avoided by building with [Graph.UpdateEdge], which
// replaces the weight of an existing edge instead of adding a second one.
// Nodes and edges cannot be removed, so indexes stay stable for the lifetime
// of the graph.
//
// The zero value is an empty graph ready to use. Graph is not safe for
// concurrent modification; once construction is finished it may be read from
// multiple goroutines.
type Graph[N, E any] struct {
	nodes []node[N]
	edges []edge[E]
}

// New creates an empty graph with room for the given number of nodes and
// edges.
func New[N, E any](nodeCap, edgeCap int) *Graph[N, E] {
	return &Graph[N, E]{
		nodes: make([]node[N], 0, nodeCap),
		edges: make([]edge[E], 0, edgeCap),
	}
}

// AddNode adds a node with the given weight and returns its index.
func (g *Graph[N, E]) AddNode(weight N) NodeIndex {
	g.nodes = append(g.nodes, node[N]{weight: weight})
	return NodeIndex(len(g.nodes) - 1)
}

// AddEdge adds an edge from → to, even if one already exists.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode if either endpoint is
// out of range.
func (g *Graph[N, E]) AddEdge(from, to NodeIndex, weight E) (EdgeIndex, error) {
	if !g.contains(from) {
		return 0, ErrUnknownSourceNode
	}
	if !g.contains(to) {
		return 0, ErrUnknownTargetNode
	}
	ei := EdgeIndex(len(g.edges))
	g.edges = append(g.edges, edge[E]{from: from, to: to, weight: weight})
	g.nodes[from].edges[Outgoing] = append(g.nodes[from].edges[Outgoing], ei)
	g.nodes[to].edges[Incoming] = append(g.nodes[to].edges[Incoming], ei)
	return ei, nil
}

// UpdateEdge adds an edge from → to, or replaces the weight of the existing
// edge between them. The boolean result reports whether an edge already
// existed.
func (g *Graph[N, E]) UpdateEdge(from, to NodeIndex, weight E) (EdgeIndex, bool, error) {
	if ei, ok := g.FindEdge(from, to); ok {
		g.edges[ei].weight = weight
		return ei, true, nil
	}
	ei, err := g.AddEdge(from, to, weight)
	return ei, false, err
}

// FindEdge returns the first edge from → to.
func (g *Graph[N, E]) FindEdge(from, to NodeIndex) (EdgeIndex, bool) {
	if !g.contains(from) {
		return 0, false
	}
	for _, ei := range g.nodes[from].edges[Outgoing] {
		if g.edges[ei].to == to {
			return ei, true
		}
	}
	return 0, false
}

func (g *Graph[N, E]) contains(n NodeIndex) bool { return n >= 0 && int(n) < len(g.nodes) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph[N, E]) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph[N, E]) EdgeCount() int { return len(g.edges) }

// Node returns the weight of node n. It panics if n is out of range.
func (g *Graph[N, E]) Node(n NodeIndex) N { return g.nodes[n].weight }

// Edge returns the endpoints and weight of edge e. It panics if e is out of
// range.
func (g *Graph[N, E]) Edge(e EdgeIndex) (from, to NodeIndex, weight E) {
	ed := g.edges[e]
	return ed.from, ed.to, ed.weight
}

// EdgeWeight returns the weight of edge e.
func (g *Graph[N, E]) EdgeWeight(e EdgeIndex) E { return g.edges[e].weight }

// NodeIndices returns every node index in ascending order.
func (g *Graph[N, E]) NodeIndices() []NodeIndex {
	out := make([]NodeIndex, len(g.nodes))
	for i := range out {
		out[i] = NodeIndex(i)
	}
	return out
}

// Edges returns the edges of n in the given direction, in insertion order.
// The returned slice should not be modified.
func (g *Graph[N, E]) Edges(n NodeIndex, dir Direction) []EdgeIndex {
	if !g.contains(n) {
		return nil
	}
	return g.nodes[n].edges[dir]
}

// Neighbors returns the nodes at the other end of n's edges in the given
// direction, in edge insertion order.
func (g *Graph[N, E]) Neighbors(n NodeIndex, dir Direction) []NodeIndex {
	edges := g.Edges(n, dir)
	out := make([]NodeIndex, len(edges))
	for i, ei := range edges {
		if dir == Outgoing {
			out[i] = g.edges[ei].to
		} else {
			out[i] = g.edges[ei].from
		}
	}
	return out
}

// OutDegree returns the number of outgoing edges from n.
func (g *Graph[N, E]) OutDegree(n NodeIndex) int { return len(g.Edges(n, Outgoing)) }

// InDegree returns the number of incoming edges to n.
func (g *Graph[N, E]) InDegree(n NodeIndex) int { return len(g.Edges(n, Incoming)) }

// Sources returns the nodes with no incoming edges, in index order.
func (g *Graph[N, E]) Sources() []NodeIndex {
	var out []NodeIndex
	for i, n := range g.nodes {
		if len(n.edges[Incoming]) == 0 {
			out = append(out, NodeIndex(i))
		}
	}
	return out
}

// Sinks returns the nodes with no outgoing edges, in index order.
func (g *Graph[N, E]) Sinks() []NodeIndex {
	var out []NodeIndex
	for i, n := range g.nodes {
		if len(n.edges[Outgoing]) == 0 {
			out = append(out, NodeIndex(i))
		}
	}
	return out
}

// Validate returns ErrGraphHasCycle if the graph contains a directed cycle.
//
// Cycle detection runs in O(N+E) time using depth-first search with
// white/gray/black coloring.
func (g *Graph[N, E]) Validate() error {
	if len(BackEdges(g)) > 0 {
		return ErrGraphHasCycle
	}
	return nil
}

// Reachable returns every node reachable from the given roots by following
// edges in dir, including the roots, in ascending index order.
func (g *Graph[N, E]) Reachable(dir Direction, roots ...NodeIndex) []NodeIndex {
	seen := make([]bool, len(g.nodes))
	stack := make([]NodeIndex, 0, len(roots))
	for _, r := range roots {
		if g.contains(r) && !seen[r] {
			seen[r] = true
			stack = append(stack, r)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range g.Neighbors(n, dir) {
			if !seen[m] {
				seen[m] = true
				stack = append(stack, m)
			}
		}
	}
	var out []NodeIndex
	for i, ok := range seen {
		if ok {
			out = append(out, NodeIndex(i))
		}
	}
	return out
}

// SortIndices sorts node indexes in ascending order and removes duplicates.
func SortIndices(ns []NodeIndex) []NodeIndex {
	slices.Sort(ns)
	return slices.Compact(ns)
}
