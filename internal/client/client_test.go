package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowgrad/shadowgrad/internal/config"
	"github.com/shadowgrad/shadowgrad/internal/session"
	"github.com/shadowgrad/shadowgrad/internal/tape"
)

func forwardClient(t *testing.T) *Client {
	t.Helper()
	s, err := session.New(config.Options{Mode: config.Forward}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, 1)
}

func reverseClient(t *testing.T) *Client {
	t.Helper()
	s, err := session.New(config.Options{Mode: config.Reverse, TapeInRAM: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s, 1)
}

func TestDerivativeRoundTrip(t *testing.T) {
	c := forwardClient(t)

	require.NoError(t, c.SetDerivative(0x1000, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	got, err := c.GetDerivative(0x1000, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, got)

	// Mode gating.
	rc := reverseClient(t)
	_, err = rc.GetDerivative(0x1000, 8)
	assert.ErrorIs(t, err, ErrForwardOnly)
	assert.ErrorIs(t, rc.SetDerivative(0x1000, nil), ErrForwardOnly)
}

func TestIndexRoundTrip(t *testing.T) {
	c := reverseClient(t)

	require.NoError(t, c.SetIndex(0x2000, 42))
	id, err := c.GetIndex(0x2000)
	require.NoError(t, err)
	assert.Equal(t, tape.Identifier(42), id)

	fc := forwardClient(t)
	_, err = fc.GetIndex(0x2000)
	assert.ErrorIs(t, err, ErrReverseOnly)
}

func TestNewIndex(t *testing.T) {
	c := reverseClient(t)

	in, err := c.NewIndexNoActivity(0, 0, 0, 0, 3.0)
	require.NoError(t, err)
	assert.Equal(t, tape.Identifier(1), in)

	id, err := c.NewIndex(in, 0, 2.0, 0, 6.0)
	require.NoError(t, err)
	assert.Equal(t, tape.Identifier(2), id)

	// Passive parents record nothing.
	id, err = c.NewIndex(0, 0, 1, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, tape.Identifier(0), id)
}

func TestDisableSuspendsRecording(t *testing.T) {
	c := reverseClient(t)

	in, err := c.NewIndexNoActivity(0, 0, 0, 0, 1.0)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Disable(1))
	id, err := c.NewIndex(in, 0, 1, 0, 1.0)
	require.NoError(t, err)
	assert.Equal(t, tape.Identifier(0), id)

	assert.Equal(t, 0, c.Disable(-1))
	id, err = c.NewIndex(in, 0, 1, 0, 1.0)
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestIndexToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trace")
	s, err := session.New(config.Options{Mode: config.Reverse, RecordDir: dir}, nil)
	require.NoError(t, err)
	c := New(s, 1)

	id, err := c.NewIndexNoActivity(0, 0, 0, 0, 1.0)
	require.NoError(t, err)
	require.NoError(t, c.InputIndexToFile(id))
	require.NoError(t, c.OutputIndexToFile(id))
	require.NoError(t, s.Close())
}

func TestFlags(t *testing.T) {
	c := reverseClient(t)

	require.NoError(t, c.SetFlags(0x3000, []byte{0xaa}, []byte{0xbb}))
	lo, hi, err := c.GetFlags(0x3000, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa}, lo)
	assert.Equal(t, []byte{0xbb}, hi)

	fc := forwardClient(t)
	assert.Error(t, fc.SetFlags(0x3000, []byte{1}, []byte{2}))
	lo, hi, err = fc.GetFlags(0x3000, 1)
	require.NoError(t, err)
	assert.Nil(t, hi)
	assert.Len(t, lo, 1)
}

func TestGetMode(t *testing.T) {
	assert.Equal(t, ModeForward, forwardClient(t).GetMode())
	assert.Equal(t, ModeReverse, reverseClient(t).GetMode())
}
