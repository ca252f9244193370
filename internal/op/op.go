// Package op defines the vocabulary of primitive machine-level operations
// consumed by the differentiation engines, together with the byte-level
// value container they operate on.
//
// The operation tags mirror what an instruction decoder emits: scalar
// floating-point arithmetic, x87-style transcendentals, conversions,
// pure bit-transport operations, SIMD-lane variants, logical operations
// and comparisons. The decoder itself is an external collaborator; this
// package only fixes the shared schema.
package op

import "fmt"

// Op tags one primitive operation.
type Op uint16

// Scalar F64 arithmetic.
const (
	Invalid Op = iota

	AddF64
	SubF64
	MulF64
	DivF64
	NegF64
	AbsF64
	SqrtF64

	// Scalar F32 arithmetic.
	AddF32
	SubF32
	MulF32
	DivF32
	NegF32
	AbsF32
	SqrtF32

	// x87-style scalar transcendentals (F64).
	SinF64
	CosF64
	TanF64
	AtanYXF64 // atan(y/x), two operands
	ScaleF64  // x * 2^trunc(y)
	Yl2xF64   // y * log2(x)
	Yl2xp1F64 // y * log2(x+1)
	Exp2m1F64 // 2^x - 1

	// Conversions.
	F32toF64
	F64toF32
	I32StoF64
	I64StoF64
	F64toI32S
	F64toI64S
	RoundF64 // round to integral, result still F64

	// Bit transport: relocation only, no arithmetic.
	ReinterpF64asI64
	ReinterpI64asF64
	ReinterpF32asI32
	ReinterpI32asF32
	Concat32HLto64
	Lo64to32
	Hi64to32
	Concat64HLtoV128
	V128toLo64
	V128toHi64
	Ext8Uto64
	Ext16Uto64
	Ext32Uto64
	Ext8Sto64
	Ext16Sto64
	Ext32Sto64

	// SIMD lane arithmetic, 128-bit.
	Add64Fx2
	Sub64Fx2
	Mul64Fx2
	Div64Fx2
	Sqrt64Fx2
	Add32Fx4
	Sub32Fx4
	Mul32Fx4
	Div32Fx4
	Sqrt32Fx4

	// SIMD lane arithmetic, 256-bit.
	Add64Fx4
	Sub64Fx4
	Mul64Fx4
	Div64Fx4
	Add32Fx8
	Sub32Fx8
	Mul32Fx8
	Div32Fx8

	// Logical. No calculus derivative; handled by the bitwise resolver.
	And32
	Or32
	Xor32
	And64
	Or64
	Xor64
	AndV128
	OrV128
	XorV128
	AndV256
	OrV256
	XorV256

	// Comparisons. Result magnitude is unrelated to operand magnitude.
	CmpF64
	CmpF32
	CmpEQ32
	CmpEQ64

	numOps // must stay last
)

var opNames = map[Op]string{
	AddF64: "AddF64", SubF64: "SubF64", MulF64: "MulF64", DivF64: "DivF64",
	NegF64: "NegF64", AbsF64: "AbsF64", SqrtF64: "SqrtF64",
	AddF32: "AddF32", SubF32: "SubF32", MulF32: "MulF32", DivF32: "DivF32",
	NegF32: "NegF32", AbsF32: "AbsF32", SqrtF32: "SqrtF32",
	SinF64: "SinF64", CosF64: "CosF64", TanF64: "TanF64",
	AtanYXF64: "AtanYXF64", ScaleF64: "ScaleF64",
	Yl2xF64: "Yl2xF64", Yl2xp1F64: "Yl2xp1F64", Exp2m1F64: "Exp2m1F64",
	F32toF64: "F32toF64", F64toF32: "F64toF32",
	I32StoF64: "I32StoF64", I64StoF64: "I64StoF64",
	F64toI32S: "F64toI32S", F64toI64S: "F64toI64S", RoundF64: "RoundF64",
	ReinterpF64asI64: "ReinterpF64asI64", ReinterpI64asF64: "ReinterpI64asF64",
	ReinterpF32asI32: "ReinterpF32asI32", ReinterpI32asF32: "ReinterpI32asF32",
	Concat32HLto64: "Concat32HLto64", Lo64to32: "Lo64to32", Hi64to32: "Hi64to32",
	Concat64HLtoV128: "Concat64HLtoV128", V128toLo64: "V128toLo64", V128toHi64: "V128toHi64",
	Ext8Uto64: "Ext8Uto64", Ext16Uto64: "Ext16Uto64", Ext32Uto64: "Ext32Uto64",
	Ext8Sto64: "Ext8Sto64", Ext16Sto64: "Ext16Sto64", Ext32Sto64: "Ext32Sto64",
	Add64Fx2: "Add64Fx2", Sub64Fx2: "Sub64Fx2", Mul64Fx2: "Mul64Fx2",
	Div64Fx2: "Div64Fx2", Sqrt64Fx2: "Sqrt64Fx2",
	Add32Fx4: "Add32Fx4", Sub32Fx4: "Sub32Fx4", Mul32Fx4: "Mul32Fx4",
	Div32Fx4: "Div32Fx4", Sqrt32Fx4: "Sqrt32Fx4",
	Add64Fx4: "Add64Fx4", Sub64Fx4: "Sub64Fx4", Mul64Fx4: "Mul64Fx4", Div64Fx4: "Div64Fx4",
	Add32Fx8: "Add32Fx8", Sub32Fx8: "Sub32Fx8", Mul32Fx8: "Mul32Fx8", Div32Fx8: "Div32Fx8",
	And32: "And32", Or32: "Or32", Xor32: "Xor32",
	And64: "And64", Or64: "Or64", Xor64: "Xor64",
	AndV128: "AndV128", OrV128: "OrV128", XorV128: "XorV128",
	AndV256: "AndV256", OrV256: "OrV256", XorV256: "XorV256",
	CmpF64: "CmpF64", CmpF32: "CmpF32", CmpEQ32: "CmpEQ32", CmpEQ64: "CmpEQ64",
}

// String returns the operation name.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", uint16(o))
}

// Valid reports whether o is a known operation tag.
func (o Op) Valid() bool {
	return o > Invalid && o < numOps
}

// Arity returns the number of operands the operation consumes.
func (o Op) Arity() int {
	switch o {
	case NegF64, AbsF64, SqrtF64, NegF32, AbsF32, SqrtF32,
		SinF64, CosF64, TanF64, Exp2m1F64,
		F32toF64, F64toF32, I32StoF64, I64StoF64, F64toI32S, F64toI64S, RoundF64,
		ReinterpF64asI64, ReinterpI64asF64, ReinterpF32asI32, ReinterpI32asF32,
		Lo64to32, Hi64to32, V128toLo64, V128toHi64,
		Ext8Uto64, Ext16Uto64, Ext32Uto64, Ext8Sto64, Ext16Sto64, Ext32Sto64,
		Sqrt64Fx2, Sqrt32Fx4:
		return 1
	default:
		return 2
	}
}
