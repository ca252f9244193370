package forward

import "github.com/shadowgrad/shadowgrad/internal/op"

// Conversion rules. Float-to-float conversions apply the same conversion to
// the derivative. Conversions whose result magnitude is unrelated to the
// operand magnitude (integer truncation, rounding to integral, and
// comparisons registered here for the same reason) yield a zero derivative
// of the result type.
func (rs *RuleSet) registerConversions() {
	rs.register(op.F32toF64, func(args, d []op.Value) op.Value {
		return op.FromF64(float64(d[0].F32()))
	})
	rs.register(op.F64toF32, func(args, d []op.Value) op.Value {
		return op.FromF32(float32(d[0].F64()))
	})

	zeroF64 := func(args, d []op.Value) op.Value { return op.NewValue(op.F64) }
	zeroI64 := func(args, d []op.Value) op.Value { return op.NewValue(op.I64) }
	zeroI32 := func(args, d []op.Value) op.Value { return op.NewValue(op.I32) }

	// Integer inputs carry discrete values; their conversion to float is
	// locally constant.
	rs.register(op.I32StoF64, zeroF64)
	rs.register(op.I64StoF64, zeroF64)

	rs.register(op.F64toI32S, zeroI32)
	rs.register(op.F64toI64S, zeroI64)
	rs.register(op.RoundF64, zeroF64)

	rs.register(op.CmpF64, zeroI32)
	rs.register(op.CmpF32, zeroI32)
	rs.register(op.CmpEQ32, zeroI32)
	rs.register(op.CmpEQ64, zeroI64)
}
