// Package client implements the request interface instrumented programs
// use to talk to the running session: reading and seeding derivatives,
// exchanging indices, and suspending differentiation.
package client

import (
	"errors"
	"fmt"

	"github.com/shadowgrad/shadowgrad/internal/config"
	"github.com/shadowgrad/shadowgrad/internal/session"
	"github.com/shadowgrad/shadowgrad/internal/tape"
)

// Request codes, one per operation. The numeric values are part of the
// request protocol and must not be reordered.
type Code uint32

const (
	CodeGetDerivative Code = iota + 1
	CodeSetDerivative
	CodeGetIndex
	CodeSetIndex
	CodeNewIndex
	CodeNewIndexNoActivity
	CodeInputIndexToFile
	CodeOutputIndexToFile
	CodeGetFlags
	CodeSetFlags
	CodeGetMode
	CodeDisable
)

// Mode bytes returned by GetMode.
const (
	ModeForward byte = 'd'
	ModeReverse byte = 'b'
)

var (
	ErrForwardOnly = errors.New("client: request needs forward mode")
	ErrReverseOnly = errors.New("client: request needs reverse mode")
)

// Client serves requests of one application thread.
type Client struct {
	s      *session.Session
	thread int
}

func New(s *session.Session, thread int) *Client {
	return &Client{s: s, thread: thread}
}

// GetDerivative reads size shadow bytes at addr, the dot value of the
// variable stored there.
func (c *Client) GetDerivative(addr uint64, size int) ([]byte, error) {
	if c.s.Mode() != config.Forward {
		return nil, ErrForwardOnly
	}
	buf := make([]byte, size)
	c.s.Shadow().GetMemory(addr, buf, nil)
	return buf, nil
}

// SetDerivative seeds the dot value of the variable at addr.
func (c *Client) SetDerivative(addr uint64, deriv []byte) error {
	if c.s.Mode() != config.Forward {
		return ErrForwardOnly
	}
	c.s.Shadow().SetMemory(addr, deriv, nil)
	return nil
}

// GetIndex reads the identifier of the variable at addr.
func (c *Client) GetIndex(addr uint64) (tape.Identifier, error) {
	if c.s.Mode() != config.Reverse {
		return 0, ErrReverseOnly
	}
	return c.s.Shadow().MemoryIdentifier(addr), nil
}

// SetIndex overwrites the identifier of the variable at addr.
func (c *Client) SetIndex(addr uint64, id tape.Identifier) error {
	if c.s.Mode() != config.Reverse {
		return ErrReverseOnly
	}
	c.s.Shadow().SetMemoryIdentifier(addr, id)
	return nil
}

// NewIndex records a statement with activity analysis and returns the
// resulting identifier, 0 when both parents are passive. Wrapped library
// code uses this to splice externally computed partials into the tape.
func (c *Client) NewIndex(p1, p2 tape.Identifier, d1, d2, value float64) (tape.Identifier, error) {
	if c.s.Mode() != config.Reverse {
		return 0, ErrReverseOnly
	}
	if c.s.Disabled(c.thread) {
		return 0, nil
	}
	return c.s.Engine().Record(p1, p2, d1, d2, value)
}

// NewIndexNoActivity records a statement unconditionally, for marking
// input variables.
func (c *Client) NewIndexNoActivity(p1, p2 tape.Identifier, d1, d2, value float64) (tape.Identifier, error) {
	if c.s.Mode() != config.Reverse {
		return 0, ErrReverseOnly
	}
	return c.s.Engine().RecordUnconditional(p1, p2, d1, d2, value)
}

// InputIndexToFile appends id to the recorded input index list.
func (c *Client) InputIndexToFile(id tape.Identifier) error {
	if c.s.Mode() != config.Reverse {
		return ErrReverseOnly
	}
	return c.s.Engine().WriteInputIndex(id)
}

// OutputIndexToFile appends id to the recorded output index list.
func (c *Client) OutputIndexToFile(id tape.Identifier) error {
	if c.s.Mode() != config.Reverse {
		return ErrReverseOnly
	}
	return c.s.Engine().WriteOutputIndex(id)
}

// GetFlags reads the raw shadow bytes at addr, one buffer per layer. The
// hi buffer is nil in forward mode.
func (c *Client) GetFlags(addr uint64, size int) (lo, hi []byte, err error) {
	lo = make([]byte, size)
	if c.s.Mode() == config.Forward {
		c.s.Shadow().GetMemory(addr, lo, nil)
		return lo, nil, nil
	}
	hi = make([]byte, size)
	c.s.Shadow().GetMemory(addr, lo, hi)
	return lo, hi, nil
}

// SetFlags writes raw shadow bytes at addr. A nil buffer leaves that
// layer untouched.
func (c *Client) SetFlags(addr uint64, lo, hi []byte) error {
	if c.s.Mode() == config.Forward && hi != nil {
		return fmt.Errorf("client: no second shadow layer in forward mode")
	}
	c.s.Shadow().SetMemory(addr, lo, hi)
	return nil
}

// GetMode returns the mode byte.
func (c *Client) GetMode() byte {
	if c.s.Mode() == config.Reverse {
		return ModeReverse
	}
	return ModeForward
}

// Disable adjusts this thread's disable counter by delta and returns the
// new count. While positive, NewIndex returns 0 without recording.
func (c *Client) Disable(delta int) int {
	return c.s.Disable(c.thread, delta)
}
