// Package linexpr provides a sparse-vector representation of "value plus
// linear dependencies": a scalar value together with a bounded list of
// (identifier, partial derivative) pairs. It is used to accumulate and
// combine derivative contributions in-process before they are committed to
// the tape.
//
// All expressions are allocated from an Arena that is reset, not freed, at
// the start of each new top-level expression.
package linexpr

import (
	"fmt"

	"github.com/shadowgrad/shadowgrad/internal/tape"
)

// MaxDeps is the maximum fan-in of one expression. Exceeding it is fatal:
// silently truncating dependency information would produce incorrect
// derivatives.
const MaxDeps = 100

// Expr is a value with linear dependencies. The identifier and jacobian
// slices are parallel; after Normalize the identifiers are unique and
// sorted.
type Expr struct {
	Value float64
	ndep  int
	ids   [MaxDeps]tape.Identifier
	jac   [MaxDeps]float64
}

// NumDeps returns the current number of dependencies.
func (e *Expr) NumDeps() int { return e.ndep }

// Dep returns dependency i as (identifier, jacobian).
func (e *Expr) Dep(i int) (tape.Identifier, float64) {
	return e.ids[i], e.jac[i]
}

// AddDep appends one dependency. Fatal if the fan-in bound is exceeded.
func (e *Expr) AddDep(id tape.Identifier, jacobian float64) {
	if e.ndep == MaxDeps {
		panic(fmt.Sprintf("linexpr: expression exceeds maximum fan-in %d", MaxDeps))
	}
	e.ids[e.ndep] = id
	e.jac[e.ndep] = jacobian
	e.ndep++
}

// Arena is a growable pool of expressions. Reset reuses the storage of all
// previously allocated expressions; growth doubles the capacity plus one,
// preserving existing contents.
//
// The arena is a global, shared, mutable resource in a single-session
// engine; a multi-threaded host must serialize access externally.
type Arena struct {
	buf []*Expr
	n   int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// New returns a fresh expression with zero dependencies.
func (a *Arena) New() *Expr {
	if a.n == len(a.buf) {
		if len(a.buf) == cap(a.buf) {
			grown := make([]*Expr, len(a.buf), 2*cap(a.buf)+1)
			copy(grown, a.buf)
			a.buf = grown
		}
		a.buf = append(a.buf, new(Expr))
	}
	e := a.buf[a.n]
	a.n++
	e.Value = 0
	e.ndep = 0
	return e
}

// Reset discards all expressions without freeing their storage.
func (a *Arena) Reset() {
	a.n = 0
}

// Live returns the number of currently allocated expressions.
func (a *Arena) Live() int { return a.n }

// Combine forms the linear combination k*x + l*y of the dependency lists.
// The value is left unset; callers must assign it.
func (a *Arena) Combine(k float64, x *Expr, l float64, y *Expr) *Expr {
	if x.ndep+y.ndep > MaxDeps {
		panic(fmt.Sprintf("linexpr: combination fan-in %d exceeds maximum %d", x.ndep+y.ndep, MaxDeps))
	}
	res := a.New()
	res.ndep = x.ndep + y.ndep
	for i := 0; i < x.ndep; i++ {
		res.ids[i] = x.ids[i]
		res.jac[i] = k * x.jac[i]
	}
	for i := 0; i < y.ndep; i++ {
		res.ids[x.ndep+i] = y.ids[i]
		res.jac[x.ndep+i] = l * y.jac[i]
	}
	return res
}

// Add returns x + y.
func (a *Arena) Add(x, y *Expr) *Expr {
	sum := a.Combine(1, x, 1, y)
	sum.Value = x.Value + y.Value
	return sum
}

// Sub returns x - y.
func (a *Arena) Sub(x, y *Expr) *Expr {
	diff := a.Combine(1, x, -1, y)
	diff.Value = x.Value - y.Value
	return diff
}

// Mul returns x * y with the product rule applied to the dependencies.
func (a *Arena) Mul(x, y *Expr) *Expr {
	prod := a.Combine(y.Value, x, x.Value, y)
	prod.Value = x.Value * y.Value
	return prod
}

// Div returns x / y with the quotient rule applied to the dependencies.
func (a *Arena) Div(x, y *Expr) *Expr {
	quot := a.Combine(1/y.Value, x, -x.Value/(y.Value*y.Value), y)
	quot.Value = x.Value / y.Value
	return quot
}

// Normalize sorts the dependencies by identifier and merges duplicates by
// summing their jacobians. Duplicate identifiers arise from independent
// derivation paths; without merging, downstream linear combinations would
// double-count them.
func (a *Arena) Normalize(e *Expr) {
	tmp := a.New()
	mergesort(e, 0, e.ndep, tmp)
	tmp.ndep = 0
	tmp.Value = e.Value
	for i := 0; i < e.ndep; {
		id := e.ids[i]
		sum := e.jac[i]
		i++
		for i < e.ndep && e.ids[i] == id {
			sum += e.jac[i]
			i++
		}
		tmp.ids[tmp.ndep] = id
		tmp.jac[tmp.ndep] = sum
		tmp.ndep++
	}
	// tmp doubled as mergesort scratch and may be recycled arena storage;
	// clear the dead slots so normalized expressions compare bytewise.
	for i := tmp.ndep; i < MaxDeps; i++ {
		tmp.ids[i] = 0
		tmp.jac[i] = 0
	}
	*e = *tmp
}

// mergesort stably sorts the (identifier, jacobian) pairs of e within
// [from, to). A mergesort is used rather than a general-purpose sort
// because runs are already partially ordered from recursive combination.
// tmp's section [from, to) is used as scratch.
func mergesort(e *Expr, from, to int, tmp *Expr) {
	if to-from <= 1 {
		return
	}
	sep := (from + to) / 2
	mergesort(e, from, sep, tmp)
	mergesort(e, sep, to, tmp)
	fromM, sepM := from, sep
	for i := from; i < to; i++ {
		if sepM >= to || (fromM < sep && e.ids[fromM] <= e.ids[sepM]) {
			tmp.ids[i] = e.ids[fromM]
			tmp.jac[i] = e.jac[fromM]
			fromM++
		} else {
			tmp.ids[i] = e.ids[sepM]
			tmp.jac[i] = e.jac[sepM]
			sepM++
		}
	}
	for i := from; i < to; i++ {
		e.ids[i] = tmp.ids[i]
		e.jac[i] = tmp.jac[i]
	}
}
