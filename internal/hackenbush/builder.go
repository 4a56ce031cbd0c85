package hackenbush

// Builder assembles a position node by node. Handles are assigned in
// insertion order.
type Builder struct {
	next  NodeID
	edges []Edge
}

// NewBuilder returns a builder holding only ground.
func NewBuilder() *Builder {
	return &Builder{next: Ground + 1}
}

// AddNode allocates a new node.
func (b *Builder) AddNode() NodeID {
	n := b.next
	b.next++
	return n
}

// AddEdge joins u and v with an edge of colour c.
func (b *Builder) AddEdge(u, v NodeID, c Color) EdgeID {
	id := EdgeID(len(b.edges))
	b.edges = append(b.edges, Edge{ID: id, U: u, V: v, Color: c})
	return id
}

// AddStalk grows a path from node from, one edge per colour, and returns the
// node at its tip.
func (b *Builder) AddStalk(from NodeID, colors ...Color) NodeID {
	tip := from
	for _, c := range colors {
		n := b.AddNode()
		b.AddEdge(tip, n, c)
		tip = n
	}
	return tip
}

// Build validates and returns the position.
func (b *Builder) Build() (Position, error) {
	return NewPosition(b.edges...)
}
