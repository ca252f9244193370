package reverse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowgrad/shadowgrad/internal/op"
	"github.com/shadowgrad/shadowgrad/internal/shadow"
	"github.com/shadowgrad/shadowgrad/internal/tape"
)

func newTestEngine(t *testing.T) (*Engine, *tape.RAMSink) {
	t.Helper()
	sink := tape.NewRAMSink()
	return New(Config{
		Tape:   tape.New(tape.Config{Sink: sink}),
		Shadow: shadow.NewStore(shadow.Reverse, 1024),
	}), sink
}

func TestRecordActivity(t *testing.T) {
	e, sink := newTestEngine(t)

	// Both parents passive: no statement, identifier 0.
	id, err := e.Record(0, 0, 1, 1, 3.0)
	require.NoError(t, err)
	assert.Equal(t, tape.Identifier(0), id)
	assert.Empty(t, sink.Statements())

	// One active parent: fresh identifier, one statement.
	in, err := e.RecordUnconditional(0, 0, 0, 0, 2.0)
	require.NoError(t, err)
	id, err = e.Record(in, 0, 5, 0, 10.0)
	require.NoError(t, err)
	assert.Equal(t, in+1, id)
	require.Len(t, sink.Statements(), 2)
	assert.Equal(t, tape.Statement{Parent1: in, Partial1: 5}, sink.Statements()[1])
}

func TestOperationProductRule(t *testing.T) {
	e, sink := newTestEngine(t)

	x, err := e.RecordUnconditional(0, 0, 0, 0, 3.0)
	require.NoError(t, err)
	y, err := e.RecordUnconditional(0, 0, 0, 0, 2.0)
	require.NoError(t, err)

	id, err := e.Operation(op.MulF64,
		[]op.Value{op.FromF64(3), op.FromF64(2)},
		[]tape.Identifier{x, y},
		op.FromF64(6))
	require.NoError(t, err)
	assert.Equal(t, y+1, id)

	st := sink.Statements()[2]
	assert.Equal(t, x, st.Parent1)
	assert.Equal(t, y, st.Parent2)
	assert.Equal(t, 2.0, st.Partial1) // d(xy)/dx = y
	assert.Equal(t, 3.0, st.Partial2) // d(xy)/dy = x
}

func TestOperationTransportPassthrough(t *testing.T) {
	e, sink := newTestEngine(t)

	x, err := e.RecordUnconditional(0, 0, 0, 0, 1.25)
	require.NoError(t, err)

	id, err := e.Operation(op.ReinterpF64asI64,
		[]op.Value{op.FromF64(1.25)},
		[]tape.Identifier{x},
		op.FromU64(op.FromF64(1.25).U64()))
	require.NoError(t, err)
	assert.Equal(t, x, id)
	assert.Len(t, sink.Statements(), 1)
}

func TestOperationWithoutRule(t *testing.T) {
	e, sink := newTestEngine(t)

	x, err := e.RecordUnconditional(0, 0, 0, 0, 0)
	require.NoError(t, err)

	// No tape rule for bitwise AND: dependency is lost.
	id, err := e.Operation(op.And64,
		[]op.Value{op.FromU64(0xff), op.FromU64(0x0f)},
		[]tape.Identifier{x, 0},
		op.FromU64(0x0f))
	require.NoError(t, err)
	assert.Equal(t, tape.Identifier(0), id)
	assert.Len(t, sink.Statements(), 1)

	// Typegrind marks the result fully active instead.
	e.Typegrind = true
	id, err = e.Operation(op.And64,
		[]op.Value{op.FromU64(0xff), op.FromU64(0x0f)},
		[]tape.Identifier{x, 0},
		op.FromU64(0x0f))
	require.NoError(t, err)
	assert.Equal(t, SentinelIdentifier, id)
}

func TestSentinelFlowsIntoLaterStatements(t *testing.T) {
	e, sink := newTestEngine(t)
	e.Typegrind = true

	x, err := e.RecordUnconditional(0, 0, 0, 0, 1.5)
	require.NoError(t, err)

	masked, err := e.Operation(op.And64,
		[]op.Value{op.FromU64(0xff), op.FromU64(0x0f)},
		[]tape.Identifier{x, 0},
		op.FromU64(0x0f))
	require.NoError(t, err)
	require.Equal(t, SentinelIdentifier, masked)

	// A sentinel-marked value stays recordable as a parent; the lost
	// dependency must not break the rest of the recording.
	id, err := e.Operation(op.MulF64,
		[]op.Value{op.FromF64(3), op.FromF64(2)},
		[]tape.Identifier{masked, 0},
		op.FromF64(6))
	require.NoError(t, err)
	assert.Equal(t, x+1, id)

	st := sink.Statements()[1]
	assert.Equal(t, SentinelIdentifier, st.Parent1)
	assert.Equal(t, 2.0, st.Partial1)
}

func TestOperationLanesTypegrindFillsAllLanes(t *testing.T) {
	e, _ := newTestEngine(t)
	e.Typegrind = true

	res := op.NewValue(op.V256)
	ids, err := e.OperationLanes(op.XorV256,
		[]op.Value{op.NewValue(op.V256), op.NewValue(op.V256)},
		[][]tape.Identifier{{1, 0, 0, 0}, {0, 0, 0, 0}},
		res)
	require.NoError(t, err)
	require.Len(t, ids, res.NumLanes64())
	for _, id := range ids {
		assert.Equal(t, SentinelIdentifier, id)
	}
}

func TestOperationLanes(t *testing.T) {
	e, sink := newTestEngine(t)

	a, err := e.RecordUnconditional(0, 0, 0, 0, 3.0)
	require.NoError(t, err)
	b, err := e.RecordUnconditional(0, 0, 0, 0, 5.0)
	require.NoError(t, err)

	x := op.NewValue(op.V128)
	x.SetLaneF64(0, 3)
	x.SetLaneF64(1, 5)
	y := op.NewValue(op.V128)
	y.SetLaneF64(0, 2)
	y.SetLaneF64(1, 7)
	res := op.NewValue(op.V128)
	res.SetLaneF64(0, 6)
	res.SetLaneF64(1, 35)

	ids, err := e.OperationLanes(op.Mul64Fx2,
		[]op.Value{x, y},
		[][]tape.Identifier{{a, b}, {0, 0}},
		res)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotZero(t, ids[0])
	assert.NotZero(t, ids[1])
	assert.NotEqual(t, ids[0], ids[1])

	// Each lane records its own partials from its own operand values.
	stmts := sink.Statements()
	require.Len(t, stmts, 4)
	assert.Equal(t, 2.0, stmts[2].Partial1)
	assert.Equal(t, 7.0, stmts[3].Partial1)
}

func TestLinearizeAndCommit(t *testing.T) {
	e, sink := newTestEngine(t)

	xid, err := e.RecordUnconditional(0, 0, 0, 0, 3.0)
	require.NoError(t, err)
	yid, err := e.RecordUnconditional(0, 0, 0, 0, 2.0)
	require.NoError(t, err)

	// f = (x + y) * x at x=3, y=2: df/dx = 2x + y = 8, df/dy = x = 3.
	e.BeginExpression()
	x := e.Operand(3, xid)
	y := e.Operand(2, yid)
	sum, ok := e.Linearize(op.AddF64, x, y)
	require.True(t, ok)
	x2 := e.Operand(3, xid)
	f, ok := e.Linearize(op.MulF64, sum, x2)
	require.True(t, ok)
	assert.Equal(t, 15.0, f.Value)

	id, err := e.Commit(f)
	require.NoError(t, err)
	assert.NotZero(t, id)

	// Normalization merged the duplicate x dependency: one statement with
	// both parents suffices.
	stmts := sink.Statements()
	require.Len(t, stmts, 3)
	st := stmts[2]
	assert.Equal(t, xid, st.Parent1)
	assert.Equal(t, yid, st.Parent2)
	assert.Equal(t, 8.0, st.Partial1)
	assert.Equal(t, 3.0, st.Partial2)
}

func TestCommitPassiveExpression(t *testing.T) {
	e, sink := newTestEngine(t)

	e.BeginExpression()
	c := e.Operand(4, 0)
	id, err := e.Commit(c)
	require.NoError(t, err)
	assert.Equal(t, tape.Identifier(0), id)
	assert.Empty(t, sink.Statements())
}

func TestCommitWideFanIn(t *testing.T) {
	e, sink := newTestEngine(t)

	ids := make([]tape.Identifier, 5)
	for i := range ids {
		var err error
		ids[i], err = e.RecordUnconditional(0, 0, 0, 0, float64(i))
		require.NoError(t, err)
	}

	// Sum of five tracked inputs needs a chain of statements.
	e.BeginExpression()
	acc := e.Operand(0, ids[0])
	for _, id := range ids[1:] {
		var ok bool
		acc, ok = e.Linearize(op.AddF64, acc, e.Operand(0, id))
		require.True(t, ok)
	}
	out, err := e.Commit(acc)
	require.NoError(t, err)
	assert.NotZero(t, out)

	// 5 input statements, then 1 pair statement + 3 chain statements.
	assert.Len(t, sink.Statements(), 9)
}

func TestMalformedOperationTagPanics(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.Panics(t, func() {
		e.Operation(op.Op(9999), nil, nil, op.Value{})
	})
}
