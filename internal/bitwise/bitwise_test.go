package bitwise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowgrad/shadowgrad/internal/op"
)

func TestLogical_And64(t *testing.T) {
	// x AND mask: where the mask bit is 1 the x bit passes through and
	// keeps its derivative bit; where it is 0 the result bit is forced
	// constant and is inactive.
	x := op.FromU64(0xffff_0000_ffff_0000)
	dx := op.FromU64(0xffff_ffff_ffff_ffff) // x fully active
	mask := op.FromU64(0x00ff_00ff_00ff_00ff)
	dmask := op.FromU64(0) // mask is a constant

	res, ok := Logical(op.And64, x, dx, mask, dmask)
	require.True(t, ok)
	assert.Equal(t, uint64(0x00ff_00ff_00ff_00ff), res.U64())
}

func TestLogical_Or64(t *testing.T) {
	// x OR mask: where the mask bit is 1 the result bit is forced to 1.
	x := op.FromU64(0x1234)
	dx := op.FromU64(0xffff_ffff_ffff_ffff)
	mask := op.FromU64(0xff00)
	dmask := op.FromU64(0)

	res, ok := Logical(op.Or64, x, dx, mask, dmask)
	require.True(t, ok)
	assert.Equal(t, uint64(0xffff_ffff_ffff_00ff), res.U64())
}

func TestLogical_Xor64(t *testing.T) {
	// XOR passes both operands through: derivative bits are unioned.
	dx := op.FromU64(0x0f0f)
	dy := op.FromU64(0xf000)

	res, ok := Logical(op.Xor64, op.FromU64(0), dx, op.FromU64(0), dy)
	require.True(t, ok)
	assert.Equal(t, uint64(0xff0f), res.U64())
}

func TestLogical_32Bit(t *testing.T) {
	x := op.FromU32(0xffff_ffff)
	dx := op.FromU32(0xffff_ffff)
	mask := op.FromU32(0x0000_ff00)

	res, ok := Logical(op.And32, x, dx, mask, op.FromU32(0))
	require.True(t, ok)
	assert.Equal(t, uint32(0x0000_ff00), res.U32())
}

func TestLogical_VectorLanes(t *testing.T) {
	// V128 decomposes into two 64-bit lanes with independent results.
	x := op.NewValue(op.V128)
	x.SetLane64(0, ^uint64(0))
	x.SetLane64(1, ^uint64(0))
	dx := op.NewValue(op.V128)
	dx.SetLane64(0, ^uint64(0))
	dx.SetLane64(1, 0) // lane 1 of x is inactive

	mask := op.NewValue(op.V128)
	mask.SetLane64(0, 0x00ff)
	mask.SetLane64(1, 0xff00)

	res, ok := Logical(op.AndV128, x, dx, mask, op.NewValue(op.V128))
	require.True(t, ok)
	assert.Equal(t, uint64(0x00ff), res.Lane64(0))
	assert.Equal(t, uint64(0), res.Lane64(1))
	assert.Equal(t, op.V128, res.Type())
}

func TestLogical_Uncovered(t *testing.T) {
	_, ok := Logical(op.AddF64, op.Value{}, op.Value{}, op.Value{}, op.Value{})
	assert.False(t, ok)
}
