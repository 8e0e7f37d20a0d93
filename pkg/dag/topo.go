package dag

import "slices"

// Topo is a topological ordering of a graph that tolerates cycles.
//
// For every edge u → v that is not part of a cycle, Rank(u) < Rank(v): a
// node is ordered before everything it points at. Nodes that form a cycle
// are still ranked, each exactly once, in an order that depends on
// depth-first search order.
//
// Ranks are dense: a graph with n nodes has ranks 0 through n-1.
type Topo struct {
	order []NodeIndex
	ranks []int
}

// NewTopo computes a topological ordering of g.
//
// The ordering is the reverse post-order of a depth-first search over
// outgoing edges. The search is seeded with every node that has no incoming
// edges, in index order, and then with every node not yet visited, in index
// order, so nodes that are only reachable through a cycle are ranked too.
func NewTopo[N, E any](g *Graph[N, E]) *Topo {
	n := g.NodeCount()
	visited := make([]bool, n)
	post := make([]NodeIndex, 0, n)

	var dfs func(NodeIndex)
	dfs = func(v NodeIndex) {
		visited[v] = true
		for _, w := range g.Neighbors(v, Outgoing) {
			if !visited[w] {
				dfs(w)
			}
		}
		post = append(post, v)
	}

	for _, v := range g.Sources() {
		if !visited[v] {
			dfs(v)
		}
	}
	for v := range n {
		if !visited[v] {
			dfs(NodeIndex(v))
		}
	}

	slices.Reverse(post)
	ranks := make([]int, n)
	for i, v := range post {
		ranks[v] = i
	}
	return &Topo{order: post, ranks: ranks}
}

// Order returns the nodes in topological order. The returned slice should not
// be modified.
func (t *Topo) Order() []NodeIndex { return t.order }

// Rank returns the position of n in the ordering.
func (t *Topo) Rank(n NodeIndex) int { return t.ranks[n] }

// Compare orders a and b by rank, returning a negative number if a comes
// first, zero if they are the same node, and a positive number otherwise.
func (t *Topo) Compare(a, b NodeIndex) int { return t.ranks[a] - t.ranks[b] }

// Sort sorts nodes in place by rank.
func (t *Topo) Sort(nodes []NodeIndex) { slices.SortFunc(nodes, t.Compare) }
