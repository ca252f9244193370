package forward

import (
	"math"

	"github.com/shadowgrad/shadowgrad/internal/op"
)

// ln2 to full double precision.
const ln2 = 0.6931471805599453094172321214581

// Transcendental rules for the x87-style scalar operations.
func (rs *RuleSet) registerTranscendental() {
	rs.register(op.SinF64, func(args, d []op.Value) op.Value {
		return op.FromF64(d[0].F64() * math.Cos(args[0].F64()))
	})
	rs.register(op.CosF64, func(args, d []op.Value) op.Value {
		return op.FromF64(-d[0].F64() * math.Sin(args[0].F64()))
	})
	rs.register(op.TanF64, func(args, d []op.Value) op.Value {
		c := math.Cos(args[0].F64())
		return op.FromF64(d[0].F64() / (c * c))
	})

	// atan(y/x): differentiate the quotient, then the chain rule through
	// atan gives d(f)/(1+f²).
	rs.register(op.AtanYXF64, func(args, d []op.Value) op.Value {
		y, x := args[0].F64(), args[1].F64()
		f := y / x
		df := (d[0].F64()*x - y*d[1].F64()) / (x * x)
		return op.FromF64(df / (1 + f*f))
	})

	// x * 2^trunc(y): the second operand is truncated to an integer
	// exponent, so its derivative contributes nothing almost everywhere.
	rs.register(op.ScaleF64, func(args, d []op.Value) op.Value {
		return op.FromF64(math.Ldexp(d[0].F64(), int(math.Trunc(args[1].F64()))))
	})

	// y * log2(x)
	rs.register(op.Yl2xF64, func(args, d []op.Value) op.Value {
		y, x := args[0].F64(), args[1].F64()
		return op.FromF64(d[0].F64()*math.Log2(x) + y*d[1].F64()/(ln2*x))
	})

	// y * log2(x+1)
	rs.register(op.Yl2xp1F64, func(args, d []op.Value) op.Value {
		y, x := args[0].F64(), args[1].F64()
		return op.FromF64(d[0].F64()*math.Log2(x+1) + y*d[1].F64()/(ln2*(x+1)))
	})

	// 2^x - 1
	rs.register(op.Exp2m1F64, func(args, d []op.Value) op.Value {
		return op.FromF64(d[0].F64() * ln2 * math.Exp2(args[0].F64()))
	})
}
