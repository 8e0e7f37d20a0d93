package dag_test

import (
	"fmt"

	"github.com/guppy-rs/guppy/pkg/dag"
)

func ExampleGraph_basic() {
	// Create a simple dependency graph: app → lib → core
	g := dag.New[string, string](3, 2)
	app := g.AddNode("app")
	lib := g.AddNode("lib")
	core := g.AddNode("core")
	_, _ = g.AddEdge(app, lib, "normal")
	_, _ = g.AddEdge(lib, core, "normal")

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Sources:", g.Sources())
	// Output:
	// Nodes: 3
	// Edges: 2
	// Sources: [0]
}

func ExampleGraph_UpdateEdge() {
	g := dag.New[string, string](2, 1)
	a := g.AddNode("a")
	b := g.AddNode("b")

	_, existed, _ := g.UpdateEdge(a, b, "build")
	fmt.Println("existed:", existed)
	ei, existed, _ := g.UpdateEdge(a, b, "normal")
	fmt.Println("existed:", existed)
	fmt.Println("edges:", g.EdgeCount(), "weight:", g.EdgeWeight(ei))
	// Output:
	// existed: false
	// existed: true
	// edges: 1 weight: normal
}

func ExampleNewTopo() {
	// app depends on auth and cache, both depend on core.
	g := dag.New[string, struct{}](4, 4)
	core := g.AddNode("core")
	auth := g.AddNode("auth")
	cache := g.AddNode("cache")
	app := g.AddNode("app")
	_, _ = g.AddEdge(app, auth, struct{}{})
	_, _ = g.AddEdge(app, cache, struct{}{})
	_, _ = g.AddEdge(auth, core, struct{}{})
	_, _ = g.AddEdge(cache, core, struct{}{})

	topo := dag.NewTopo(g)
	for _, n := range topo.Order() {
		fmt.Println(topo.Rank(n), g.Node(n))
	}
	// Output:
	// 0 app
	// 1 cache
	// 2 auth
	// 3 core
}

func ExampleStronglyConnected() {
	// lib and its test helper depend on each other.
	g := dag.New[string, struct{}](3, 3)
	app := g.AddNode("app")
	lib := g.AddNode("lib")
	helper := g.AddNode("helper")
	_, _ = g.AddEdge(app, lib, struct{}{})
	_, _ = g.AddEdge(lib, helper, struct{}{})
	_, _ = g.AddEdge(helper, lib, struct{}{})

	sccs := dag.StronglyConnected(g)
	fmt.Println("components:", sccs.Len())
	fmt.Println("cycles:", sccs.Cycles())
	// Output:
	// components: 2
	// cycles: [[1 2]]
}
