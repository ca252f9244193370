package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowgrad/shadowgrad/internal/config"
	"github.com/shadowgrad/shadowgrad/internal/shadow"
	"github.com/shadowgrad/shadowgrad/internal/tape"
)

func TestForwardSession(t *testing.T) {
	s, err := New(config.Options{Mode: config.Forward}, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, config.Forward, s.Mode())
	assert.NotNil(t, s.Rules())
	assert.Nil(t, s.Engine())
	assert.Equal(t, shadow.Forward, s.Shadow().Mode())
}

func TestReverseSessionInRAM(t *testing.T) {
	s, err := New(config.Options{Mode: config.Reverse, TapeInRAM: true}, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.Rules())
	require.NotNil(t, s.Engine())
	assert.Equal(t, shadow.Reverse, s.Shadow().Mode())

	id, err := s.Engine().RecordUnconditional(0, 0, 0, 0, 1.0)
	require.NoError(t, err)
	assert.Equal(t, tape.Identifier(1), id)
}

func TestReverseSessionWritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trace")
	s, err := New(config.Options{
		Mode:         config.Reverse,
		RecordDir:    dir,
		RecordValues: true,
	}, nil)
	require.NoError(t, err)

	id, err := s.Engine().RecordUnconditional(0, 0, 0, 0, 2.5)
	require.NoError(t, err)
	require.NoError(t, s.Engine().WriteInputIndex(id))
	require.NoError(t, s.Engine().WriteOutputIndex(id))
	require.NoError(t, s.Close())

	for _, name := range []string{
		tape.TapeFileName, tape.ValuesFileName,
		tape.InputsFileName, tape.OutputsFileName,
	} {
		fi, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, fi.Size(), name)
	}

	stmts, err := tape.ReadTapeFile(dir)
	require.NoError(t, err)
	assert.Len(t, stmts, 1)
}

func TestDisableCounters(t *testing.T) {
	s, err := New(config.Options{Mode: config.Forward}, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.Disabled(7))
	assert.Equal(t, 1, s.Disable(7, 1))
	assert.Equal(t, 2, s.Disable(7, 1))
	assert.True(t, s.Disabled(7))
	assert.False(t, s.Disabled(8))

	assert.Equal(t, 1, s.Disable(7, -1))
	assert.Equal(t, 0, s.Disable(7, -1))
	assert.False(t, s.Disabled(7))

	// Underflow clamps instead of going negative.
	assert.Equal(t, 0, s.Disable(7, -1))
}
