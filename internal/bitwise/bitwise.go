// Package bitwise approximates derivative propagation through the logical
// operations AND, OR and XOR, which have no calculus-based derivative.
//
// The per-bit heuristic: a result bit whose value is forced to a constant
// by the operation (an AND with a 0 bit, an OR with a 1 bit) carries a
// zero, inactive derivative bit; a result bit that passes one operand
// through unmodified carries that operand's derivative bit; XOR passes
// both operands through (possibly inverted), so both derivative bits are
// carried. This is an approximation, not an exact differentiation, and
// callers must treat it as such.
package bitwise

import (
	"fmt"

	"github.com/shadowgrad/shadowgrad/internal/op"
)

// Logical computes the result derivative of a logical operation from the
// operand values x, y and operand derivatives dx, dy. Widths above 64 bits
// are decomposed into 64-bit lanes and reassembled. Returns false for
// operations this resolver does not cover.
func Logical(o op.Op, x, dx, y, dy op.Value) (op.Value, bool) {
	switch o {
	case op.And32:
		return op.FromU32(and32(x.U32(), dx.U32(), y.U32(), dy.U32())), true
	case op.Or32:
		return op.FromU32(or32(x.U32(), dx.U32(), y.U32(), dy.U32())), true
	case op.Xor32:
		return op.FromU32(dx.U32() | dy.U32()), true
	case op.And64:
		return op.FromU64(and64(x.U64(), dx.U64(), y.U64(), dy.U64())), true
	case op.Or64:
		return op.FromU64(or64(x.U64(), dx.U64(), y.U64(), dy.U64())), true
	case op.Xor64:
		return op.FromU64(dx.U64() | dy.U64()), true
	case op.AndV128, op.AndV256:
		return lanes(o, and64, x, dx, y, dy), true
	case op.OrV128, op.OrV256:
		return lanes(o, or64, x, dx, y, dy), true
	case op.XorV128, op.XorV256:
		return lanes(o, xor64, x, dx, y, dy), true
	default:
		return op.Value{}, false
	}
}

// and: a bit passes through where the other operand's bit is 1.
func and64(x, dx, y, dy uint64) uint64 { return (dx & y) | (dy & x) }

// or: a bit passes through where the other operand's bit is 0.
func or64(x, dx, y, dy uint64) uint64 { return (dx &^ y) | (dy &^ x) }

// xor: every bit passes through, possibly inverted.
func xor64(x, dx, y, dy uint64) uint64 { return dx | dy }

func and32(x, dx, y, dy uint32) uint32 { return (dx & y) | (dy & x) }
func or32(x, dx, y, dy uint32) uint32  { return (dx &^ y) | (dy &^ x) }

func lanes(o op.Op, rule func(x, dx, y, dy uint64) uint64, x, dx, y, dy op.Value) op.Value {
	typ := vectorType(o)
	res := op.NewValue(typ)
	for i := 0; i < res.NumLanes64(); i++ {
		res.SetLane64(i, rule(x.Lane64(i), dx.Lane64(i), y.Lane64(i), dy.Lane64(i)))
	}
	return res
}

func vectorType(o op.Op) op.Type {
	switch o {
	case op.AndV128, op.OrV128, op.XorV128:
		return op.V128
	case op.AndV256, op.OrV256, op.XorV256:
		return op.V256
	default:
		panic(fmt.Sprintf("bitwise: %s is not a vector logical operation", o))
	}
}
