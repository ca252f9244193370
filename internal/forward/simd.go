package forward

import (
	"math"

	"github.com/shadowgrad/shadowgrad/internal/op"
)

// SIMD rules apply the scalar calculus lanewise. Lane counts follow the
// tag; 256-bit variants differ from 128-bit ones only in lane count.
func (rs *RuleSet) registerSIMD() {
	rs.register(op.Add64Fx2, lanewise64(op.V128, addD))
	rs.register(op.Sub64Fx2, lanewise64(op.V128, subD))
	rs.register(op.Mul64Fx2, lanewise64(op.V128, mulD))
	rs.register(op.Div64Fx2, lanewise64(op.V128, divD))
	rs.register(op.Add64Fx4, lanewise64(op.V256, addD))
	rs.register(op.Sub64Fx4, lanewise64(op.V256, subD))
	rs.register(op.Mul64Fx4, lanewise64(op.V256, mulD))
	rs.register(op.Div64Fx4, lanewise64(op.V256, divD))

	rs.register(op.Add32Fx4, lanewise32(op.V128, addD))
	rs.register(op.Sub32Fx4, lanewise32(op.V128, subD))
	rs.register(op.Mul32Fx4, lanewise32(op.V128, mulD))
	rs.register(op.Div32Fx4, lanewise32(op.V128, divD))
	rs.register(op.Add32Fx8, lanewise32(op.V256, addD))
	rs.register(op.Sub32Fx8, lanewise32(op.V256, subD))
	rs.register(op.Mul32Fx8, lanewise32(op.V256, mulD))
	rs.register(op.Div32Fx8, lanewise32(op.V256, divD))

	rs.register(op.Sqrt64Fx2, func(args, d []op.Value) op.Value {
		res := op.NewValue(op.V128)
		for i := 0; i < res.NumLanes64(); i++ {
			res.SetLaneF64(i, d[0].LaneF64(i)/(2*math.Sqrt(args[0].LaneF64(i))))
		}
		return res
	})
	rs.register(op.Sqrt32Fx4, func(args, d []op.Value) op.Value {
		res := op.NewValue(op.V128)
		for i := 0; i < res.NumLanes32(); i++ {
			lane := float64(d[0].LaneF32(i)) / (2 * math.Sqrt(float64(args[0].LaneF32(i))))
			res.SetLaneF32(i, float32(lane))
		}
		return res
	})
}

// scalar derivative rules shared by all lane widths
func addD(x, dx, y, dy float64) float64 { return dx + dy }
func subD(x, dx, y, dy float64) float64 { return dx - dy }
func mulD(x, dx, y, dy float64) float64 { return dx*y + x*dy }
func divD(x, dx, y, dy float64) float64 { return (dx*y - x*dy) / (y * y) }

func lanewise64(t op.Type, rule func(x, dx, y, dy float64) float64) Rule {
	return func(args, d []op.Value) op.Value {
		res := op.NewValue(t)
		for i := 0; i < res.NumLanes64(); i++ {
			res.SetLaneF64(i, rule(args[0].LaneF64(i), d[0].LaneF64(i), args[1].LaneF64(i), d[1].LaneF64(i)))
		}
		return res
	}
}

func lanewise32(t op.Type, rule func(x, dx, y, dy float64) float64) Rule {
	return func(args, d []op.Value) op.Value {
		res := op.NewValue(t)
		for i := 0; i < res.NumLanes32(); i++ {
			lane := rule(float64(args[0].LaneF32(i)), float64(d[0].LaneF32(i)),
				float64(args[1].LaneF32(i)), float64(d[1].LaneF32(i)))
			res.SetLaneF32(i, float32(lane))
		}
		return res
	}
}
