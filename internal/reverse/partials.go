package reverse

import (
	"math"

	"github.com/shadowgrad/shadowgrad/internal/op"
)

// ln2 to full double precision.
const ln2 = 0.6931471805599453094172321214581

// partialsFunc evaluates the partial derivatives of one scalar operation
// with respect to its (at most two) operands, from the operand values.
// Unary operations return a zero second partial.
type partialsFunc func(args []op.Value) (p1, p2 float64)

// partials is the tape-rule half of the per-operation handler table. Pure
// transport operations are absent on purpose; they relocate identifiers
// instead (see isTransport).
var partials = map[op.Op]partialsFunc{
	op.AddF64: func(a []op.Value) (float64, float64) { return 1, 1 },
	op.SubF64: func(a []op.Value) (float64, float64) { return 1, -1 },
	op.MulF64: func(a []op.Value) (float64, float64) { return a[1].F64(), a[0].F64() },
	op.DivF64: func(a []op.Value) (float64, float64) {
		y := a[1].F64()
		return 1 / y, -a[0].F64() / (y * y)
	},
	op.NegF64: func(a []op.Value) (float64, float64) { return -1, 0 },
	op.AbsF64: func(a []op.Value) (float64, float64) {
		if a[0].F64() < 0 {
			return -1, 0
		}
		return 1, 0
	},
	op.SqrtF64: func(a []op.Value) (float64, float64) {
		return 1 / (2 * math.Sqrt(a[0].F64())), 0
	},

	op.SinF64: func(a []op.Value) (float64, float64) { return math.Cos(a[0].F64()), 0 },
	op.CosF64: func(a []op.Value) (float64, float64) { return -math.Sin(a[0].F64()), 0 },
	op.TanF64: func(a []op.Value) (float64, float64) {
		c := math.Cos(a[0].F64())
		return 1 / (c * c), 0
	},
	op.AtanYXF64: func(a []op.Value) (float64, float64) {
		y, x := a[0].F64(), a[1].F64()
		r2 := x*x + y*y
		return x / r2, -y / r2
	},
	op.ScaleF64: func(a []op.Value) (float64, float64) {
		return math.Ldexp(1, int(math.Trunc(a[1].F64()))), 0
	},
	op.Yl2xF64: func(a []op.Value) (float64, float64) {
		y, x := a[0].F64(), a[1].F64()
		return math.Log2(x), y / (ln2 * x)
	},
	op.Yl2xp1F64: func(a []op.Value) (float64, float64) {
		y, x := a[0].F64(), a[1].F64()
		return math.Log2(x + 1), y / (ln2 * (x + 1))
	},
	op.Exp2m1F64: func(a []op.Value) (float64, float64) {
		return ln2 * math.Exp2(a[0].F64()), 0
	},

	op.AddF32: func(a []op.Value) (float64, float64) { return 1, 1 },
	op.SubF32: func(a []op.Value) (float64, float64) { return 1, -1 },
	op.MulF32: func(a []op.Value) (float64, float64) {
		return float64(a[1].F32()), float64(a[0].F32())
	},
	op.DivF32: func(a []op.Value) (float64, float64) {
		x, y := float64(a[0].F32()), float64(a[1].F32())
		return 1 / y, -x / (y * y)
	},
	op.NegF32: func(a []op.Value) (float64, float64) { return -1, 0 },
	op.AbsF32: func(a []op.Value) (float64, float64) {
		if a[0].F32() < 0 {
			return -1, 0
		}
		return 1, 0
	},
	op.SqrtF32: func(a []op.Value) (float64, float64) {
		return 1 / (2 * math.Sqrt(float64(a[0].F32()))), 0
	},

	// Float-to-float conversions keep the dependency with unit partial.
	op.F32toF64: func(a []op.Value) (float64, float64) { return 1, 0 },
	op.F64toF32: func(a []op.Value) (float64, float64) { return 1, 0 },
}

// isTransport reports whether o only relocates bits: the identifier of the
// leading operand travels with the bytes, and no statement is recorded.
func isTransport(o op.Op) bool {
	switch o {
	case op.ReinterpF64asI64, op.ReinterpI64asF64, op.ReinterpF32asI32, op.ReinterpI32asF32,
		op.Concat32HLto64, op.Lo64to32, op.Hi64to32,
		op.Concat64HLtoV128, op.V128toLo64, op.V128toHi64,
		op.Ext8Uto64, op.Ext16Uto64, op.Ext32Uto64,
		op.Ext8Sto64, op.Ext16Sto64, op.Ext32Sto64:
		return true
	default:
		return false
	}
}

// laneDecomposition maps a SIMD tag to its scalar equivalent, lane count,
// and lane width (wide = 64-bit lanes).
func laneDecomposition(o op.Op) (scalar op.Op, lanes int, wide bool, ok bool) {
	switch o {
	case op.Add64Fx2:
		return op.AddF64, 2, true, true
	case op.Sub64Fx2:
		return op.SubF64, 2, true, true
	case op.Mul64Fx2:
		return op.MulF64, 2, true, true
	case op.Div64Fx2:
		return op.DivF64, 2, true, true
	case op.Sqrt64Fx2:
		return op.SqrtF64, 2, true, true
	case op.Add64Fx4:
		return op.AddF64, 4, true, true
	case op.Sub64Fx4:
		return op.SubF64, 4, true, true
	case op.Mul64Fx4:
		return op.MulF64, 4, true, true
	case op.Div64Fx4:
		return op.DivF64, 4, true, true
	case op.Add32Fx4:
		return op.AddF32, 4, false, true
	case op.Sub32Fx4:
		return op.SubF32, 4, false, true
	case op.Mul32Fx4:
		return op.MulF32, 4, false, true
	case op.Div32Fx4:
		return op.DivF32, 4, false, true
	case op.Sqrt32Fx4:
		return op.SqrtF32, 4, false, true
	case op.Add32Fx8:
		return op.AddF32, 8, false, true
	case op.Sub32Fx8:
		return op.SubF32, 8, false, true
	case op.Mul32Fx8:
		return op.MulF32, 8, false, true
	case op.Div32Fx8:
		return op.DivF32, 8, false, true
	default:
		return op.Invalid, 0, false, false
	}
}
