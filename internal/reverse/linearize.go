package reverse

import (
	"github.com/shadowgrad/shadowgrad/internal/linexpr"
	"github.com/shadowgrad/shadowgrad/internal/op"
	"github.com/shadowgrad/shadowgrad/internal/tape"
)

// In-process linearization: composite expressions (math-library wrappers
// and other multi-operation sequences) are accumulated as linear
// expressions over already-recorded identifiers, normalized once, and
// committed to the tape as a chain of two-parent statements. This trades a
// per-operation statement for one statement per surviving dependency.

// BeginExpression resets the linearization arena for a new top-level
// expression. Expressions from the previous top-level expression become
// invalid.
func (e *Engine) BeginExpression() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.arena.Reset()
}

// Operand builds the linear expression of an existing value: value, plus a
// unit dependency on id if the value is tracked.
func (e *Engine) Operand(value float64, id tape.Identifier) *linexpr.Expr {
	e.mu.Lock()
	defer e.mu.Unlock()
	expr := e.arena.New()
	expr.Value = value
	if id != 0 {
		expr.AddDep(id, 1)
	}
	return expr
}

// Linearize applies one arithmetic operation to linear expressions,
// propagating dependencies with the standard calculus rules. Only the four
// basic operations participate in linearization; everything else goes
// through Operation.
func (e *Engine) Linearize(o op.Op, x, y *linexpr.Expr) (*linexpr.Expr, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch o {
	case op.AddF64, op.AddF32:
		return e.arena.Add(x, y), true
	case op.SubF64, op.SubF32:
		return e.arena.Sub(x, y), true
	case op.MulF64, op.MulF32:
		return e.arena.Mul(x, y), true
	case op.DivF64, op.DivF32:
		return e.arena.Div(x, y), true
	default:
		return nil, false
	}
}

// Commit normalizes the expression and records its dependencies as a chain
// of statements, returning the identifier of the final node. An expression
// with no active dependencies yields identifier 0 and no statements.
func (e *Engine) Commit(expr *linexpr.Expr) (tape.Identifier, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.arena.Normalize(expr)
	n := expr.NumDeps()
	if n == 0 {
		return 0, nil
	}

	id1, j1 := expr.Dep(0)
	var id2 tape.Identifier
	var j2 float64
	if n > 1 {
		id2, j2 = expr.Dep(1)
	}
	acc, err := e.record(id1, id2, j1, j2, expr.Value)
	if err != nil {
		return 0, err
	}
	for i := 2; i < n; i++ {
		id, jac := expr.Dep(i)
		acc, err = e.record(acc, id, 1, jac, expr.Value)
		if err != nil {
			return 0, err
		}
	}
	return acc, nil
}
