package forward

import (
	"github.com/shadowgrad/shadowgrad/internal/bitwise"
	"github.com/shadowgrad/shadowgrad/internal/op"
)

// Logical operations have no calculus derivative; the bitwise resolver
// approximates derivative-bit propagation per bit.
func (rs *RuleSet) registerLogical() {
	for _, o := range []op.Op{
		op.And32, op.Or32, op.Xor32,
		op.And64, op.Or64, op.Xor64,
		op.AndV128, op.OrV128, op.XorV128,
		op.AndV256, op.OrV256, op.XorV256,
	} {
		o := o
		rs.register(o, func(args, d []op.Value) op.Value {
			res, ok := bitwise.Logical(o, args[0], d[0], args[1], d[1])
			if !ok {
				// The resolver covers exactly the tags registered here.
				panic("forward: bitwise resolver rejected " + o.String())
			}
			return res
		})
	}
}
