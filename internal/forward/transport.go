package forward

import "github.com/shadowgrad/shadowgrad/internal/op"

// Transport rules. Bit concatenation, extraction, extension, pure
// reinterpretation and lane moves describe no arithmetic, only relocation,
// so each is differentiated by applying the identical operation to the
// derivative operands.
func (rs *RuleSet) registerTransport() {
	rs.register(op.ReinterpF64asI64, func(args, d []op.Value) op.Value {
		return op.FromU64(d[0].U64())
	})
	rs.register(op.ReinterpI64asF64, func(args, d []op.Value) op.Value {
		v := op.NewValue(op.F64)
		v.SetU64(d[0].U64())
		return v
	})
	rs.register(op.ReinterpF32asI32, func(args, d []op.Value) op.Value {
		return op.FromU32(d[0].U32())
	})
	rs.register(op.ReinterpI32asF32, func(args, d []op.Value) op.Value {
		v := op.NewValue(op.F32)
		v.SetU32(d[0].U32())
		return v
	})

	// Operand order follows the tag: high half first.
	rs.register(op.Concat32HLto64, func(args, d []op.Value) op.Value {
		return op.FromU64(uint64(d[0].U32())<<32 | uint64(d[1].U32()))
	})
	rs.register(op.Lo64to32, func(args, d []op.Value) op.Value {
		return op.FromU32(uint32(d[0].U64()))
	})
	rs.register(op.Hi64to32, func(args, d []op.Value) op.Value {
		return op.FromU32(uint32(d[0].U64() >> 32))
	})

	rs.register(op.Concat64HLtoV128, func(args, d []op.Value) op.Value {
		v := op.NewValue(op.V128)
		v.SetLane64(0, d[1].U64())
		v.SetLane64(1, d[0].U64())
		return v
	})
	rs.register(op.V128toLo64, func(args, d []op.Value) op.Value {
		return op.FromU64(d[0].Lane64(0))
	})
	rs.register(op.V128toHi64, func(args, d []op.Value) op.Value {
		return op.FromU64(d[0].Lane64(1))
	})

	rs.register(op.Ext8Uto64, extendUnsigned(8))
	rs.register(op.Ext16Uto64, extendUnsigned(16))
	rs.register(op.Ext32Uto64, extendUnsigned(32))
	rs.register(op.Ext8Sto64, extendSigned(8))
	rs.register(op.Ext16Sto64, extendSigned(16))
	rs.register(op.Ext32Sto64, extendSigned(32))
}

func extendUnsigned(bits uint) Rule {
	mask := uint64(1)<<bits - 1
	return func(args, d []op.Value) op.Value {
		return op.FromU64(d[0].U64() & mask)
	}
}

func extendSigned(bits uint) Rule {
	return func(args, d []op.Value) op.Value {
		shifted := int64(d[0].U64() << (64 - bits))
		return op.FromU64(uint64(shifted >> (64 - bits)))
	}
}
