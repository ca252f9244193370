// Copyright 2026 The Shadowgrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package op exposes the shared operation vocabulary: the primitive
// operation tags an instruction decoder emits and the byte-level value
// container the differentiation engines consume.
package op

import "github.com/shadowgrad/shadowgrad/internal/op"

// Op tags one primitive operation.
type Op = op.Op

// Value is the byte-level operand and result container.
type Value = op.Value

// Type describes the width and interpretation of a Value.
type Type = op.Type

// Value types.
const (
	I8   = op.I8
	I16  = op.I16
	I32  = op.I32
	I64  = op.I64
	F32  = op.F32
	F64  = op.F64
	V128 = op.V128
	V256 = op.V256
)

// Scalar F64 arithmetic.
const (
	Invalid = op.Invalid

	AddF64  = op.AddF64
	SubF64  = op.SubF64
	MulF64  = op.MulF64
	DivF64  = op.DivF64
	NegF64  = op.NegF64
	AbsF64  = op.AbsF64
	SqrtF64 = op.SqrtF64
)

// Scalar F32 arithmetic.
const (
	AddF32  = op.AddF32
	SubF32  = op.SubF32
	MulF32  = op.MulF32
	DivF32  = op.DivF32
	NegF32  = op.NegF32
	AbsF32  = op.AbsF32
	SqrtF32 = op.SqrtF32
)

// x87-style scalar transcendentals.
const (
	SinF64    = op.SinF64
	CosF64    = op.CosF64
	TanF64    = op.TanF64
	AtanYXF64 = op.AtanYXF64
	ScaleF64  = op.ScaleF64
	Yl2xF64   = op.Yl2xF64
	Yl2xp1F64 = op.Yl2xp1F64
	Exp2m1F64 = op.Exp2m1F64
)

// Conversions.
const (
	F32toF64  = op.F32toF64
	F64toF32  = op.F64toF32
	I32StoF64 = op.I32StoF64
	I64StoF64 = op.I64StoF64
	F64toI32S = op.F64toI32S
	F64toI64S = op.F64toI64S
	RoundF64  = op.RoundF64
)

// Bit transport.
const (
	ReinterpF64asI64 = op.ReinterpF64asI64
	ReinterpI64asF64 = op.ReinterpI64asF64
	ReinterpF32asI32 = op.ReinterpF32asI32
	ReinterpI32asF32 = op.ReinterpI32asF32
	Concat32HLto64   = op.Concat32HLto64
	Lo64to32         = op.Lo64to32
	Hi64to32         = op.Hi64to32
	Concat64HLtoV128 = op.Concat64HLtoV128
	V128toLo64       = op.V128toLo64
	V128toHi64       = op.V128toHi64
	Ext8Uto64        = op.Ext8Uto64
	Ext16Uto64       = op.Ext16Uto64
	Ext32Uto64       = op.Ext32Uto64
	Ext8Sto64        = op.Ext8Sto64
	Ext16Sto64       = op.Ext16Sto64
	Ext32Sto64       = op.Ext32Sto64
)

// SIMD lane arithmetic.
const (
	Add64Fx2  = op.Add64Fx2
	Sub64Fx2  = op.Sub64Fx2
	Mul64Fx2  = op.Mul64Fx2
	Div64Fx2  = op.Div64Fx2
	Sqrt64Fx2 = op.Sqrt64Fx2
	Add32Fx4  = op.Add32Fx4
	Sub32Fx4  = op.Sub32Fx4
	Mul32Fx4  = op.Mul32Fx4
	Div32Fx4  = op.Div32Fx4
	Sqrt32Fx4 = op.Sqrt32Fx4
	Add64Fx4  = op.Add64Fx4
	Sub64Fx4  = op.Sub64Fx4
	Mul64Fx4  = op.Mul64Fx4
	Div64Fx4  = op.Div64Fx4
	Add32Fx8  = op.Add32Fx8
	Sub32Fx8  = op.Sub32Fx8
	Mul32Fx8  = op.Mul32Fx8
	Div32Fx8  = op.Div32Fx8
)

// Logical operations.
const (
	And32   = op.And32
	Or32    = op.Or32
	Xor32   = op.Xor32
	And64   = op.And64
	Or64    = op.Or64
	Xor64   = op.Xor64
	AndV128 = op.AndV128
	OrV128  = op.OrV128
	XorV128 = op.XorV128
	AndV256 = op.AndV256
	OrV256  = op.OrV256
	XorV256 = op.XorV256
)

// Comparisons.
const (
	CmpF64  = op.CmpF64
	CmpF32  = op.CmpF32
	CmpEQ32 = op.CmpEQ32
	CmpEQ64 = op.CmpEQ64
)

// NewValue returns a zero value of the given type.
func NewValue(t Type) Value { return op.NewValue(t) }

// FromF64 wraps a float64.
func FromF64(v float64) Value { return op.FromF64(v) }

// FromF32 wraps a float32.
func FromF32(v float32) Value { return op.FromF32(v) }

// FromU64 wraps raw 64-bit contents.
func FromU64(v uint64) Value { return op.FromU64(v) }

// FromU32 wraps raw 32-bit contents.
func FromU32(v uint32) Value { return op.FromU32(v) }

// AllOnes returns the all-bits-set value of the given type.
func AllOnes(t Type) Value { return op.AllOnes(t) }
