// Package session assembles the per-process state from the options: the
// shadow store, the active differentiation engine and the recording
// streams, plus the per-thread disable counters.
package session

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/shadowgrad/shadowgrad/internal/config"
	"github.com/shadowgrad/shadowgrad/internal/forward"
	"github.com/shadowgrad/shadowgrad/internal/reverse"
	"github.com/shadowgrad/shadowgrad/internal/shadow"
	"github.com/shadowgrad/shadowgrad/internal/tape"
)

// registerBytes sizes the shadow register file. Large enough for the
// integer, float and vector register state of the targets we care about.
const registerBytes = 4096

// Session is the per-process instrumentation state. One session exists per
// run; it lives from option parsing to finalization.
type Session struct {
	opts   config.Options
	logger *slog.Logger

	shadow *shadow.Store
	rules  *forward.RuleSet // forward mode only
	engine *reverse.Engine  // reverse mode only

	mu       sync.Mutex
	disabled map[int]int
}

// New builds a session from validated options.
func New(opts config.Options, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		opts:     opts,
		logger:   logger,
		disabled: make(map[int]int),
	}

	if opts.Mode == config.Forward {
		s.shadow = shadow.NewStore(shadow.Forward, registerBytes)
		s.rules = forward.NewRuleSet(logger)
		s.rules.Sentinel = opts.Typegrind
		s.rules.WarnUnsupported = opts.WarnUnwrapped
		return s, nil
	}

	s.shadow = shadow.NewStore(shadow.Reverse, registerBytes)

	var sink tape.StatementSink
	var values *tape.ValueLog
	var inputs, outputs *tape.IndexStream
	if opts.TapeInRAM {
		sink = tape.NewRAMSink()
		if opts.RecordValues {
			values = tape.NewRAMValueLog()
		}
	} else {
		if err := os.MkdirAll(opts.RecordDir, 0o755); err != nil {
			return nil, fmt.Errorf("session: create recording directory: %w", err)
		}
		fs, err := tape.NewFileSink(opts.RecordDir)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		sink = fs
		if opts.RecordValues {
			values, err = tape.NewValueLog(opts.RecordDir)
			if err != nil {
				return nil, fmt.Errorf("session: %w", err)
			}
		}
		inputs, err = tape.NewIndexStream(opts.RecordDir, tape.InputsFileName)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		outputs, err = tape.NewIndexStream(opts.RecordDir, tape.OutputsFileName)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	tp := tape.New(tape.Config{
		Sink:   sink,
		Values: values,
		Stops:  opts.RecordStop,
		Logger: logger,
	})
	s.engine = reverse.New(reverse.Config{
		Tape:    tp,
		Shadow:  s.shadow,
		Inputs:  inputs,
		Outputs: outputs,
		Logger:  logger,
	})
	s.engine.Typegrind = opts.Typegrind
	return s, nil
}

// Mode reports the operating mode.
func (s *Session) Mode() config.Mode { return s.opts.Mode }

// Options returns the options the session was built from.
func (s *Session) Options() config.Options { return s.opts }

// Shadow returns the shadow store.
func (s *Session) Shadow() *shadow.Store { return s.shadow }

// Rules returns the forward rule set; nil in reverse mode.
func (s *Session) Rules() *forward.RuleSet { return s.rules }

// Engine returns the reverse engine; nil in forward mode.
func (s *Session) Engine() *reverse.Engine { return s.engine }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Disable adjusts the disable counter of one thread by delta and returns
// the new count. While a thread's counter is positive, its operations are
// not differentiated. Counters nest, so paired enable/disable sections in
// wrapped library code behave.
func (s *Session) Disable(thread, delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.disabled[thread] + delta
	if n < 0 {
		s.logger.Warn("disable counter underflow", "thread", thread)
		n = 0
	}
	if n == 0 {
		delete(s.disabled, thread)
	} else {
		s.disabled[thread] = n
	}
	return n
}

// Disabled reports whether differentiation is suspended for the thread.
func (s *Session) Disabled(thread int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled[thread] > 0
}

// Close finalizes the recording streams. Forward mode has nothing to flush.
func (s *Session) Close() error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Close()
}
