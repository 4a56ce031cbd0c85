// Package surreal stores surreal numbers built by Conway's construction in a
// shared, append-only arena and orders them by the recursive comparison rules.
package surreal

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Value is a stable handle to an entry in an Arena. Two handles from the same
// arena are equal exactly when the values they name are order-equivalent.
type Value int32

const (
	// None marks an absent operand in a construction.
	None Value = -1
	// Zero is the identity element { | }, seeded on day 0.
	Zero Value = 0
)

// The frontier on day n holds 2^(n+1)-1 values. DefaultMaxDay keeps the arena
// around two million entries; MaxSupportedDay, around thirty million, is the
// largest cap WithMaxDay accepts.
const (
	DefaultMaxDay   = 20
	MaxSupportedDay = 24
)

var (
	// ErrArenaInvariant signals that a construction could not be matched to a
	// value, or that its operands were inverted.
	ErrArenaInvariant = errors.New("arena invariant violated")
	// ErrUnknownValue is returned for handles that do not belong to the arena.
	ErrUnknownValue = errors.New("unknown value")
)

// entry is the construction { left | right }. Entries never change once stored.
type entry struct {
	left  Value
	right Value
	day   int
	proj  dyadic
}

// Arena is the append-only table of every value constructed so far, grown one
// generation ("day") at a time. All methods are safe for concurrent use.
type Arena struct {
	mu       sync.RWMutex
	entries  []entry
	frontier []Value
	day      int
	maxDay   int
	memo     map[[2]Value]Value
	cmp      sync.Map // pairKey -> bool, results of lessEq between stored entries
	logger   *log.Logger
}

// ArenaOption configures an Arena.
type ArenaOption func(*Arena)

// WithLogger sets the logger used for growth diagnostics.
func WithLogger(logger *log.Logger) ArenaOption {
	return func(a *Arena) {
		if logger != nil {
			a.logger = logger.WithPrefix("arena")
		}
	}
}

// WithMaxDay caps the number of generations the arena may grow to. The cap is
// clamped to MaxSupportedDay; values below 1 are ignored.
func WithMaxDay(day int) ArenaOption {
	return func(a *Arena) {
		if day > 0 {
			a.maxDay = min(day, MaxSupportedDay)
		}
	}
}

// NewArena returns an arena seeded with the identity element on day 0.
func NewArena(opts ...ArenaOption) *Arena {
	a := &Arena{
		entries:  []entry{{left: None, right: None}},
		frontier: []Value{Zero},
		maxDay:   DefaultMaxDay,
		memo:     make(map[[2]Value]Value),
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Day returns the most recent generation materialised.
func (a *Arena) Day() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.day
}

// Len returns the number of values stored.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// MaxDay returns the growth cap.
func (a *Arena) MaxDay() int {
	return a.maxDay
}

// Frontier returns every stored value in increasing order.
func (a *Arena) Frontier() []Value {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Value, len(a.frontier))
	copy(out, a.frontier)
	return out
}

// Operands returns the left and right operands of v; either may be None.
func (a *Arena) Operands(v Value) (Value, Value, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.valid(v) {
		return None, None, fmt.Errorf("%w: %d", ErrUnknownValue, v)
	}
	e := a.entries[v]
	return e.left, e.right, nil
}

// Birthday returns the generation on which v was created.
func (a *Arena) Birthday(v Value) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.valid(v) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownValue, v)
	}
	return a.entries[v].day, nil
}

// AdvanceGeneration materialises the next day. Existing handles are untouched.
func (a *Arena) AdvanceGeneration() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.advance()
}

// GrowTo advances generations until the arena has reached day.
func (a *Arena) GrowTo(day int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.day < day {
		if err := a.advance(); err != nil {
			return err
		}
	}
	return nil
}

// Intern returns the stored value equivalent to { left | right }, growing the
// arena as needed. Either operand may be None. The operands must satisfy
// left < right when both are present.
func (a *Arena) Intern(left, right Value) (Value, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, v := range []Value{left, right} {
		if v != None && !a.valid(v) {
			return None, fmt.Errorf("%w: operand %d: %w", ErrArenaInvariant, v, ErrUnknownValue)
		}
	}

	key := [2]Value{left, right}
	if v, ok := a.memo[key]; ok {
		return v, nil
	}

	if left != None && right != None && !a.less(a.node(left), a.node(right)) {
		return None, fmt.Errorf("%w: left operand %s is not below right operand %s",
			ErrArenaInvariant, a.entries[left].proj, a.entries[right].proj)
	}

	// The simplest value strictly between the operands is born no later than
	// the day after the younger operand.
	target := 0
	for _, v := range []Value{left, right} {
		if v != None {
			target = max(target, a.entries[v].day+1)
		}
	}

	cand := node{id: None, e: entry{left: left, right: right}}
	start := 0
	for {
		for i := start; i < len(a.entries); i++ {
			n := a.node(Value(i))
			if a.lessEq(cand, n) && a.lessEq(n, cand) {
				a.memo[key] = Value(i)
				return Value(i), nil
			}
		}
		if a.day >= target {
			return None, fmt.Errorf("%w: no value matches {%s | %s} by day %d",
				ErrArenaInvariant, a.describe(left), a.describe(right), a.day)
		}
		start = len(a.entries)
		if err := a.advance(); err != nil {
			return None, err
		}
	}
}

// advance grows one generation. Callers hold the write lock.
func (a *Arena) advance() error {
	if a.day >= a.maxDay {
		return fmt.Errorf("%w: generation cap of %d days reached", ErrArenaInvariant, a.maxDay)
	}
	day := a.day + 1
	next := make([]Value, 0, 2*len(a.frontier)+1)

	first := a.frontier[0]
	next = append(next, a.push(entry{left: None, right: first, day: day, proj: a.entries[first].proj.pred()}))
	for i, v := range a.frontier {
		next = append(next, v)
		if i+1 < len(a.frontier) {
			w := a.frontier[i+1]
			mid := a.entries[v].proj.mid(a.entries[w].proj)
			next = append(next, a.push(entry{left: v, right: w, day: day, proj: mid}))
		}
	}
	last := a.frontier[len(a.frontier)-1]
	next = append(next, a.push(entry{left: last, right: None, day: day, proj: a.entries[last].proj.succ()}))

	a.frontier = next
	a.day = day
	a.logger.Debug("advanced generation", "day", day, "entries", len(a.entries), "frontier", len(next))
	return nil
}

func (a *Arena) push(e entry) Value {
	a.entries = append(a.entries, e)
	return Value(len(a.entries) - 1)
}

func (a *Arena) valid(v Value) bool {
	return v >= 0 && int(v) < len(a.entries)
}

func (a *Arena) describe(v Value) string {
	if v == None {
		return ""
	}
	return a.entries[v].proj.String()
}
