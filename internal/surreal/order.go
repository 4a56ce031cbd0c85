package surreal

// node pairs an entry with its handle. Candidates that are not stored yet
// carry id None.
type node struct {
	id Value
	e  entry
}

func (a *Arena) node(v Value) node {
	return node{id: v, e: a.entries[v]}
}

func pairKey(x, y Value) uint64 {
	return uint64(uint32(x))<<32 | uint64(uint32(y))
}

// lessEq reports x <= y:
//
//	no left option of x is >= y, and no right option of y is <= x.
//
// Operands of an entry are always older than the entry, so the recursion
// terminates. Callers hold a.mu.
func (a *Arena) lessEq(x, y node) bool {
	if x.id == None || y.id == None {
		return a.lessEqRules(x, y)
	}
	key := pairKey(x.id, y.id)
	if r, ok := a.cmp.Load(key); ok {
		return r.(bool)
	}
	r := a.lessEqRules(x, y)
	a.cmp.Store(key, r)
	return r
}

func (a *Arena) lessEqRules(x, y node) bool {
	if x.e.left != None && a.lessEq(y, a.node(x.e.left)) {
		return false
	}
	if y.e.right != None && a.lessEq(a.node(y.e.right), x) {
		return false
	}
	return true
}

func (a *Arena) less(x, y node) bool {
	return a.lessEq(x, y) && !a.lessEq(y, x)
}

// Contains reports whether v is a handle stored in this arena. The comparison
// methods below panic on handles for which Contains is false, None included.
func (a *Arena) Contains(v Value) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.valid(v)
}

// LessEq reports x <= y. Both handles must come from this arena; see Contains.
func (a *Arena) LessEq(x, y Value) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lessEq(a.node(x), a.node(y))
}

// Less reports x < y.
func (a *Arena) Less(x, y Value) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.less(a.node(x), a.node(y))
}

// Equal reports whether x and y name order-equivalent values.
func (a *Arena) Equal(x, y Value) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	nx, ny := a.node(x), a.node(y)
	return a.lessEq(nx, ny) && a.lessEq(ny, nx)
}

// Compare returns -1, 0 or +1 as x is less than, equal to or greater than y.
func (a *Arena) Compare(x, y Value) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	nx, ny := a.node(x), a.node(y)
	le, ge := a.lessEq(nx, ny), a.lessEq(ny, nx)
	switch {
	case le && ge:
		return 0
	case le:
		return -1
	default:
		return 1
	}
}
