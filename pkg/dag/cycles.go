package dag

// BackEdges returns the edges that close a cycle during a depth-first search
// seeded from [Graph.Sources] and then from any unvisited node, both in index
// order. Removing the returned edges would leave the graph acyclic.
func BackEdges[N, E any](g *Graph[N, E]) []EdgeIndex {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, g.NodeCount())
	var back []EdgeIndex

	var dfs func(n NodeIndex)
	dfs = func(n NodeIndex) {
		color[n] = gray
		for _, ei := range g.Edges(n, Outgoing) {
			_, child, _ := g.Edge(ei)
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back = append(back, ei)
			}
		}
		color[n] = black
	}

	for _, n := range g.Sources() {
		if color[n] == white {
			dfs(n)
		}
	}
	for _, n := range g.NodeIndices() {
		if color[n] == white {
			dfs(n)
		}
	}
	return back
}
