package op

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Type is the runtime type of a primitive value.
type Type uint8

// Supported value types. Sizes are the machine widths of the shadowed
// application values; shadow slots always match these sizes.
const (
	TypeInvalid Type = iota
	I8
	I16
	I32
	I64
	F32
	F64
	V128
	V256
)

// Size returns the width in bytes.
func (t Type) Size() int {
	switch t {
	case I8:
		return 1
	case I16:
		return 2
	case I32, F32:
		return 4
	case I64, F64:
		return 8
	case V128:
		return 16
	case V256:
		return 32
	default:
		return 0
	}
}

// String returns a human-readable type name.
func (t Type) String() string {
	switch t {
	case I8:
		return "I8"
	case I16:
		return "I16"
	case I32:
		return "I32"
	case I64:
		return "I64"
	case F32:
		return "F32"
	case F64:
		return "F64"
	case V128:
		return "V128"
	case V256:
		return "V256"
	default:
		return "Invalid"
	}
}

// Value is a fixed-capacity little-endian byte container for one primitive
// value, wide enough for the largest supported vector type. Accessors read
// and write the leading bytes; lanes are addressed from the least
// significant end, matching the machine layout.
type Value struct {
	typ  Type
	bits [32]byte
}

// NewValue returns a zero value of the given type.
func NewValue(t Type) Value {
	return Value{typ: t}
}

// FromF64 wraps a float64.
func FromF64(v float64) Value {
	val := Value{typ: F64}
	val.SetF64(v)
	return val
}

// FromF32 wraps a float32.
func FromF32(v float32) Value {
	val := Value{typ: F32}
	val.SetF32(v)
	return val
}

// FromU64 wraps a 64-bit pattern as I64.
func FromU64(v uint64) Value {
	val := Value{typ: I64}
	val.SetU64(v)
	return val
}

// FromU32 wraps a 32-bit pattern as I32.
func FromU32(v uint32) Value {
	val := Value{typ: I32}
	val.SetU32(v)
	return val
}

// FromBytes wraps raw little-endian bytes. len(b) must equal t.Size().
func FromBytes(t Type, b []byte) Value {
	if len(b) != t.Size() {
		panic(fmt.Sprintf("op: FromBytes: %d bytes for type %s", len(b), t))
	}
	val := Value{typ: t}
	copy(val.bits[:], b)
	return val
}

// Type returns the value's type.
func (v Value) Type() Type { return v.typ }

// Bytes returns the value's bytes, sized to the type width.
func (v Value) Bytes() []byte {
	b := make([]byte, v.typ.Size())
	copy(b, v.bits[:])
	return b
}

// F64 reads the value as a float64.
func (v Value) F64() float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(v.bits[:8]))
}

// SetF64 writes a float64 into the leading 8 bytes.
func (v *Value) SetF64(f float64) {
	binary.LittleEndian.PutUint64(v.bits[:8], math.Float64bits(f))
}

// F32 reads the value as a float32.
func (v Value) F32() float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(v.bits[:4]))
}

// SetF32 writes a float32 into the leading 4 bytes.
func (v *Value) SetF32(f float32) {
	binary.LittleEndian.PutUint32(v.bits[:4], math.Float32bits(f))
}

// U64 reads the leading 8 bytes as an unsigned integer.
func (v Value) U64() uint64 {
	return binary.LittleEndian.Uint64(v.bits[:8])
}

// SetU64 writes an unsigned integer into the leading 8 bytes.
func (v *Value) SetU64(u uint64) {
	binary.LittleEndian.PutUint64(v.bits[:8], u)
}

// U32 reads the leading 4 bytes as an unsigned integer.
func (v Value) U32() uint32 {
	return binary.LittleEndian.Uint32(v.bits[:4])
}

// SetU32 writes an unsigned integer into the leading 4 bytes.
func (v *Value) SetU32(u uint32) {
	binary.LittleEndian.PutUint32(v.bits[:4], u)
}

// Lane64 reads 64-bit lane i as an unsigned integer.
func (v Value) Lane64(i int) uint64 {
	return binary.LittleEndian.Uint64(v.bits[8*i : 8*i+8])
}

// SetLane64 writes 64-bit lane i.
func (v *Value) SetLane64(i int, u uint64) {
	binary.LittleEndian.PutUint64(v.bits[8*i:8*i+8], u)
}

// LaneF64 reads 64-bit lane i as a float64.
func (v Value) LaneF64(i int) float64 {
	return math.Float64frombits(v.Lane64(i))
}

// SetLaneF64 writes 64-bit lane i as a float64.
func (v *Value) SetLaneF64(i int, f float64) {
	v.SetLane64(i, math.Float64bits(f))
}

// LaneF32 reads 32-bit lane i as a float32.
func (v Value) LaneF32(i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(v.bits[4*i : 4*i+4]))
}

// SetLaneF32 writes 32-bit lane i as a float32.
func (v *Value) SetLaneF32(i int, f float32) {
	binary.LittleEndian.PutUint32(v.bits[4*i:4*i+4], math.Float32bits(f))
}

// NumLanes64 returns the number of 64-bit lanes in the type.
func (v Value) NumLanes64() int { return v.typ.Size() / 8 }

// NumLanes32 returns the number of 32-bit lanes in the type.
func (v Value) NumLanes32() int { return v.typ.Size() / 4 }

// AllOnes returns a value of type t with every bit set. Used as the
// diagnostic "fully active" sentinel for unsupported operations.
func AllOnes(t Type) Value {
	val := Value{typ: t}
	for i := 0; i < t.Size(); i++ {
		val.bits[i] = 0xff
	}
	return val
}
