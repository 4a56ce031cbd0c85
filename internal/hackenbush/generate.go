package hackenbush

import "math/rand"

// Generate builds a random position of size nodes (ground included). It starts
// with one edge standing on ground, then repeatedly picks an edge that has not
// been split yet and raises a triangle on it through a new node. Colours
// alternate edge by edge from a random first colour.
func Generate(size int, rng *rand.Rand) Position {
	if size < 2 {
		return Position{nodes: []NodeID{Ground}}
	}

	b := NewBuilder()
	color := Color(rng.Intn(2))
	next := func() Color {
		c := color
		color = color.Invert()
		return c
	}

	top := b.AddNode()
	free := []Edge{{ID: b.AddEdge(Ground, top, next()), U: Ground, V: top}}

	for i := 2; i < size; i++ {
		k := rng.Intn(len(free))
		split := free[k]
		free = append(free[:k], free[k+1:]...)

		n := b.AddNode()
		ea := b.AddEdge(n, split.U, next())
		eb := b.AddEdge(n, split.V, next())
		free = append(free, Edge{ID: ea, U: n, V: split.U}, Edge{ID: eb, U: n, V: split.V})
	}

	p, err := b.Build()
	if err != nil {
		// Every new node is joined to an existing one, so this cannot happen.
		panic(err)
	}
	return p
}
