package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowgrad/shadowgrad/internal/config"
	"github.com/shadowgrad/shadowgrad/internal/session"
)

func forwardConsole(t *testing.T) *Console {
	t.Helper()
	s, err := session.New(config.Options{Mode: config.Forward}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func reverseConsole(t *testing.T) *Console {
	t.Helper()
	s, err := session.New(config.Options{Mode: config.Reverse, TapeInRAM: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func TestHelp(t *testing.T) {
	c := forwardConsole(t)
	out, err := c.Execute("help")
	require.NoError(t, err)
	assert.Contains(t, out, "flagsget")
}

func TestSetGetDouble(t *testing.T) {
	c := forwardConsole(t)

	_, err := c.Execute("set 0x1000 2.5")
	require.NoError(t, err)
	out, err := c.Execute("get 0x1000")
	require.NoError(t, err)
	assert.Equal(t, "dot value: 2.5", out)

	// Unseeded memory reads as zero.
	out, err = c.Execute("get 0x2000")
	require.NoError(t, err)
	assert.Equal(t, "dot value: 0", out)
}

func TestSetGetFloat(t *testing.T) {
	c := forwardConsole(t)

	_, err := c.Execute("fset 1a0 1.5")
	require.NoError(t, err)
	out, err := c.Execute("fget 1a0")
	require.NoError(t, err)
	assert.Equal(t, "dot value: 1.5", out)
}

func TestSetGetLongDouble(t *testing.T) {
	c := forwardConsole(t)

	_, err := c.Execute("lset 0x300 -0.75")
	require.NoError(t, err)
	out, err := c.Execute("lget 0x300")
	require.NoError(t, err)
	assert.Equal(t, "dot value: -0.75", out)
}

func TestForwardCommandsGated(t *testing.T) {
	c := reverseConsole(t)
	for _, line := range []string{"get 0x10", "set 0x10 1", "fget 0x10", "lset 0x10 1"} {
		_, err := c.Execute(line)
		assert.Error(t, err, line)
	}
}

func TestMarkAndIndex(t *testing.T) {
	c := reverseConsole(t)

	out, err := c.Execute("mark 0x4000")
	require.NoError(t, err)
	assert.Equal(t, "marked as index 1", out)

	out, err = c.Execute("index 0x4000")
	require.NoError(t, err)
	assert.Equal(t, "index: 1", out)

	// Re-marking warns about the old index.
	out, err = c.Execute("mark 0x4000")
	require.NoError(t, err)
	assert.Contains(t, out, "previous index was 1")
	assert.Contains(t, out, "marked as index 2")
}

func TestLongDoubleMark(t *testing.T) {
	c := reverseConsole(t)

	out, err := c.Execute("lmark 0x5000")
	require.NoError(t, err)
	assert.Equal(t, "marked as index 1", out)
}

func TestReverseCommandsGated(t *testing.T) {
	c := forwardConsole(t)
	for _, line := range []string{"index 0x10", "mark 0x10", "fmark 0x10", "lmark 0x10"} {
		_, err := c.Execute(line)
		assert.Error(t, err, line)
	}
}

func TestFlagsget(t *testing.T) {
	fc := forwardConsole(t)
	_, err := fc.Execute("set 0x10 1.0")
	require.NoError(t, err)
	out, err := fc.Execute("flagsget 0x10 8")
	require.NoError(t, err)
	assert.Contains(t, out, "shadow:")

	rc := reverseConsole(t)
	out, err = rc.Execute("flagsget 0x10 4")
	require.NoError(t, err)
	assert.Contains(t, out, "shadow lo:")
	assert.Contains(t, out, "shadow hi:")

	_, err = fc.Execute("flagsget 0x10")
	assert.Error(t, err)
	_, err = fc.Execute("flagsget 0x10 -1")
	assert.Error(t, err)
}

func TestBadInput(t *testing.T) {
	c := forwardConsole(t)

	_, err := c.Execute("get")
	assert.Error(t, err)
	_, err = c.Execute("get zzz")
	assert.Error(t, err)
	_, err = c.Execute("set 0x10 notanumber")
	assert.Error(t, err)
	_, err = c.Execute("bogus 0x10")
	assert.Error(t, err)

	out, err := c.Execute("   ")
	require.NoError(t, err)
	assert.Empty(t, out)
}
