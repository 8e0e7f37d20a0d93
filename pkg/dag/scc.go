package dag

import "slices"

// Components is the set of strongly connected components of a graph.
type Components struct {
	comps [][]NodeIndex
	index []int // node -> component
	loops []bool
}

// StronglyConnected computes the strongly connected components of g using
// Tarjan's algorithm. Components are returned in reverse topological order
// (a component is listed after every component it points at), and the nodes
// within each component are sorted by index.
func StronglyConnected[N, E any](g *Graph[N, E]) *Components {
	n := g.NodeCount()
	const unvisited = -1

	var (
		next    int
		stack   []NodeIndex
		onStack = make([]bool, n)
		low     = make([]int, n)
		order   = make([]int, n)
		c       = &Components{index: make([]int, n)}
	)
	for i := range order {
		order[i] = unvisited
	}

	var connect func(v NodeIndex)
	connect = func(v NodeIndex) {
		order[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Neighbors(v, Outgoing) {
			switch {
			case order[w] == unvisited:
				connect(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], order[w])
			}
		}

		if low[v] != order[v] {
			return
		}
		var comp []NodeIndex
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			c.index[w] = len(c.comps)
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		slices.Sort(comp)
		_, selfLoop := g.FindEdge(v, v)
		c.comps = append(c.comps, comp)
		c.loops = append(c.loops, len(comp) > 1 || selfLoop)
	}

	for v := range n {
		if order[v] == unvisited {
			connect(NodeIndex(v))
		}
	}
	return c
}

// Len returns the number of components.
func (c *Components) Len() int { return len(c.comps) }

// All returns every component. The returned slices should not be modified.
func (c *Components) All() [][]NodeIndex { return c.comps }

// Of returns the component containing n.
func (c *Components) Of(n NodeIndex) []NodeIndex { return c.comps[c.index[n]] }

// SameComponent reports whether a and b are in the same component.
func (c *Components) SameComponent(a, b NodeIndex) bool { return c.index[a] == c.index[b] }

// Cycles returns the components that contain a cycle: those with more than
// one node, or a single node with an edge to itself.
func (c *Components) Cycles() [][]NodeIndex {
	var out [][]NodeIndex
	for i, comp := range c.comps {
		if c.loops[i] {
			out = append(out, comp)
		}
	}
	return out
}

// IsCyclic reports whether n is part of a cycle.
func (c *Components) IsCyclic(n NodeIndex) bool { return c.loops[c.index[n]] }
