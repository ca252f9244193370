package forward

import (
	"math"

	"github.com/shadowgrad/shadowgrad/internal/op"
)

// Arithmetic rules: sum, product and quotient rules, chain rule for sqrt.
// Each rule combines operand derivatives with the memoized operand values.
func (rs *RuleSet) registerArithmetic() {
	rs.register(op.AddF64, func(args, d []op.Value) op.Value {
		return op.FromF64(d[0].F64() + d[1].F64())
	})
	rs.register(op.SubF64, func(args, d []op.Value) op.Value {
		return op.FromF64(d[0].F64() - d[1].F64())
	})
	rs.register(op.MulF64, func(args, d []op.Value) op.Value {
		x, y := args[0].F64(), args[1].F64()
		return op.FromF64(d[0].F64()*y + x*d[1].F64())
	})
	rs.register(op.DivF64, func(args, d []op.Value) op.Value {
		x, y := args[0].F64(), args[1].F64()
		return op.FromF64((d[0].F64()*y - x*d[1].F64()) / (y * y))
	})
	rs.register(op.NegF64, func(args, d []op.Value) op.Value {
		return op.FromF64(-d[0].F64())
	})
	rs.register(op.AbsF64, func(args, d []op.Value) op.Value {
		if args[0].F64() < 0 {
			return op.FromF64(-d[0].F64())
		}
		return op.FromF64(d[0].F64())
	})
	rs.register(op.SqrtF64, func(args, d []op.Value) op.Value {
		return op.FromF64(d[0].F64() / (2 * math.Sqrt(args[0].F64())))
	})

	rs.register(op.AddF32, func(args, d []op.Value) op.Value {
		return op.FromF32(d[0].F32() + d[1].F32())
	})
	rs.register(op.SubF32, func(args, d []op.Value) op.Value {
		return op.FromF32(d[0].F32() - d[1].F32())
	})
	rs.register(op.MulF32, func(args, d []op.Value) op.Value {
		x, y := args[0].F32(), args[1].F32()
		return op.FromF32(d[0].F32()*y + x*d[1].F32())
	})
	rs.register(op.DivF32, func(args, d []op.Value) op.Value {
		x, y := args[0].F32(), args[1].F32()
		return op.FromF32((d[0].F32()*y - x*d[1].F32()) / (y * y))
	})
	rs.register(op.NegF32, func(args, d []op.Value) op.Value {
		return op.FromF32(-d[0].F32())
	})
	rs.register(op.AbsF32, func(args, d []op.Value) op.Value {
		if args[0].F32() < 0 {
			return op.FromF32(-d[0].F32())
		}
		return op.FromF32(d[0].F32())
	})
	rs.register(op.SqrtF32, func(args, d []op.Value) op.Value {
		return op.FromF32(d[0].F32() / (2 * float32(math.Sqrt(float64(args[0].F32())))))
	})
}
