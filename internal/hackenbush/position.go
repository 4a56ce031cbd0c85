// Package hackenbush models Blue-Red Hackenbush positions: an undirected graph
// rooted at a ground node whose edges belong to one of two players.
package hackenbush

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidPosition reports a graph with nodes that cannot reach ground,
	// duplicate edge handles or unknown colours.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrInvalidMove reports an edge handle that is not in the position.
	ErrInvalidMove = errors.New("invalid move")
)

// Color identifies the player an edge belongs to.
type Color uint8

const (
	// Blue is Left: the maximiser, whose advantage counts positive.
	Blue Color = iota
	// Red is Right: the minimiser.
	Red
)

// Invert returns the opposing colour.
func (c Color) Invert() Color {
	if c == Blue {
		return Red
	}
	return Blue
}

// Valid reports whether c is Blue or Red.
func (c Color) Valid() bool {
	return c == Blue || c == Red
}

func (c Color) String() string {
	switch c {
	case Blue:
		return "blue"
	case Red:
		return "red"
	default:
		return fmt.Sprintf("color(%d)", uint8(c))
	}
}

// ParseColor accepts "blue" or "red".
func ParseColor(s string) (Color, error) {
	switch s {
	case "blue", "Blue", "BLUE":
		return Blue, nil
	case "red", "Red", "RED":
		return Red, nil
	default:
		return 0, fmt.Errorf("unknown color %q", s)
	}
}

// NodeID names a node. Ground is always node 0.
type NodeID int32

// EdgeID is a stable edge handle. Handles survive move application.
type EdgeID int32

// Ground is the anchor node.
const Ground NodeID = 0

// Edge joins U and V and may be cut by the player of its colour.
type Edge struct {
	ID    EdgeID
	U, V  NodeID
	Color Color
}

// Position is an immutable Hackenbush position. The zero value is ground alone.
type Position struct {
	nodes []NodeID // ascending, includes Ground
	edges []Edge   // ascending by ID
}

// NewPosition builds a position from its edges. The node set is ground plus
// every endpoint, and every node must be connected to ground.
func NewPosition(edges ...Edge) (Position, error) {
	sorted := make([]Edge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	seen := map[NodeID]struct{}{Ground: {}}
	for i, e := range sorted {
		if i > 0 && sorted[i-1].ID == e.ID {
			return Position{}, fmt.Errorf("%w: duplicate edge %d", ErrInvalidPosition, e.ID)
		}
		if !e.Color.Valid() {
			return Position{}, fmt.Errorf("%w: edge %d has %s", ErrInvalidPosition, e.ID, e.Color)
		}
		if e.U < 0 || e.V < 0 {
			return Position{}, fmt.Errorf("%w: edge %d has a negative endpoint", ErrInvalidPosition, e.ID)
		}
		seen[e.U] = struct{}{}
		seen[e.V] = struct{}{}
	}

	nodes := make([]NodeID, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	p := Position{nodes: nodes, edges: sorted}
	if err := p.Validate(); err != nil {
		return Position{}, err
	}
	return p, nil
}

// Validate checks that every node can reach ground and that every edge joins
// nodes of the position.
func (p Position) Validate() error {
	reach := reachable(p.edges)
	nodes := make(map[NodeID]struct{}, len(p.nodes))
	for _, n := range p.Nodes() {
		if _, ok := reach[n]; !ok {
			return fmt.Errorf("%w: node %d is not connected to ground", ErrInvalidPosition, n)
		}
		nodes[n] = struct{}{}
	}
	for _, e := range p.edges {
		_, u := nodes[e.U]
		_, v := nodes[e.V]
		if !u || !v {
			return fmt.Errorf("%w: edge %d joins nodes outside the position", ErrInvalidPosition, e.ID)
		}
	}
	return nil
}

// Nodes returns the node set in ascending order.
func (p Position) Nodes() []NodeID {
	if len(p.nodes) == 0 {
		return []NodeID{Ground}
	}
	out := make([]NodeID, len(p.nodes))
	copy(out, p.nodes)
	return out
}

// Edges returns the edges in ascending handle order.
func (p Position) Edges() []Edge {
	out := make([]Edge, len(p.edges))
	copy(out, p.edges)
	return out
}

// NumEdges returns the number of edges left.
func (p Position) NumEdges() int {
	return len(p.edges)
}

// Edge looks up an edge by handle.
func (p Position) Edge(id EdgeID) (Edge, bool) {
	i := p.index(id)
	if i < 0 {
		return Edge{}, false
	}
	return p.edges[i], true
}

// Count returns the number of edges of colour c.
func (p Position) Count(c Color) int {
	n := 0
	for _, e := range p.edges {
		if e.Color == c {
			n++
		}
	}
	return n
}

// LegalMoves returns the edges player c may cut, in ascending handle order.
func (p Position) LegalMoves(c Color) []EdgeID {
	var moves []EdgeID
	for _, e := range p.edges {
		if e.Color == c {
			moves = append(moves, e.ID)
		}
	}
	return moves
}

// IsTerminal reports whether no edges remain.
func (p Position) IsTerminal() bool {
	return len(p.edges) == 0
}

// ApplyMove cuts edge id and removes everything no longer connected to ground.
// The receiver is left untouched.
func (p Position) ApplyMove(id EdgeID) (Position, error) {
	i := p.index(id)
	if i < 0 {
		return Position{}, fmt.Errorf("%w: edge %d is not in the position", ErrInvalidMove, id)
	}

	remaining := make([]Edge, 0, len(p.edges)-1)
	remaining = append(remaining, p.edges[:i]...)
	remaining = append(remaining, p.edges[i+1:]...)

	reach := reachable(remaining)
	edges := remaining[:0]
	for _, e := range remaining {
		// Both endpoints of an edge share a component.
		if _, ok := reach[e.U]; ok {
			edges = append(edges, e)
		}
	}
	nodes := make([]NodeID, 0, len(reach))
	for _, n := range p.Nodes() {
		if _, ok := reach[n]; ok {
			nodes = append(nodes, n)
		}
	}
	return Position{nodes: nodes, edges: edges}, nil
}

// Key returns a canonical encoding of the position. Two positions have the
// same key exactly when they have the same edges.
func (p Position) Key() string {
	buf := make([]byte, 0, len(p.edges)*13)
	for _, e := range p.edges {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.ID))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.U))
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.V))
		buf = append(buf, byte(e.Color))
	}
	return string(buf)
}

func (p Position) index(id EdgeID) int {
	i := sort.Search(len(p.edges), func(i int) bool { return p.edges[i].ID >= id })
	if i < len(p.edges) && p.edges[i].ID == id {
		return i
	}
	return -1
}

// reachable returns the nodes connected to ground through edges.
func reachable(edges []Edge) map[NodeID]struct{} {
	adj := make(map[NodeID][]NodeID, len(edges))
	for _, e := range edges {
		adj[e.U] = append(adj[e.U], e.V)
		adj[e.V] = append(adj[e.V], e.U)
	}
	seen := map[NodeID]struct{}{Ground: {}}
	stack := []NodeID{Ground}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range adj[n] {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				stack = append(stack, m)
			}
		}
	}
	return seen
}
