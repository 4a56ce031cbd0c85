package surreal

import (
	"fmt"
	"math"
)

// dyadic is num / 2^exp in lowest terms. It is attached to entries for display
// only and never consulted by the ordering.
type dyadic struct {
	num int64
	exp uint8
}

func (d dyadic) reduce() dyadic {
	for d.exp > 0 && d.num%2 == 0 {
		d.num /= 2
		d.exp--
	}
	return d
}

// pred and succ are only applied to the frontier extremes, which are integers.
func (d dyadic) pred() dyadic { return dyadic{num: d.num - 1}.reduce() }
func (d dyadic) succ() dyadic { return dyadic{num: d.num + 1}.reduce() }

func (d dyadic) mid(o dyadic) dyadic {
	exp := max(d.exp, o.exp)
	sum := d.num<<(exp-d.exp) + o.num<<(exp-o.exp)
	return dyadic{num: sum, exp: exp + 1}.reduce()
}

func (d dyadic) float() float64 {
	return math.Ldexp(float64(d.num), -int(d.exp))
}

func (d dyadic) String() string {
	if d.exp == 0 {
		return fmt.Sprintf("%d", d.num)
	}
	return fmt.Sprintf("%d/%d", d.num, int64(1)<<d.exp)
}

// Approximate returns a floating point rendering of v. It is a display aid:
// equality and ordering are decided by Compare alone.
func (a *Arena) Approximate(v Value) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.valid(v) {
		return math.NaN()
	}
	return a.entries[v].proj.float()
}

// Format renders v as an exact dyadic fraction such as "-3/4". Display only.
func (a *Arena) Format(v Value) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.valid(v) {
		return fmt.Sprintf("<unknown %d>", v)
	}
	return a.entries[v].proj.String()
}
