// Package reverse implements the recording mode: every active primitive
// operation appends a dependency statement to the tape and the result's
// storage location is shadowed by the fresh identifier. Derivatives are
// obtained later by a single backward sweep over the recorded DAG.
package reverse

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/shadowgrad/shadowgrad/internal/linexpr"
	"github.com/shadowgrad/shadowgrad/internal/op"
	"github.com/shadowgrad/shadowgrad/internal/shadow"
	"github.com/shadowgrad/shadowgrad/internal/tape"
)

// SentinelIdentifier marks results of unhandled operations as fully active
// under the typegrind diagnostic mode, so lost dependencies surface in the
// recorded DAG instead of silently vanishing. Sentinel-marked values stay
// recordable as parents of later statements.
const SentinelIdentifier = tape.SentinelIdentifier

// Engine owns the reverse-mode state: the tape, the identifier shadow
// store, the linearization arena, and the input/output index streams.
//
// The tape, identifier counter and arena are shared mutable state; Engine
// serializes its entry points with a single lock so a multi-threaded host
// cannot corrupt the monotonic-identifier and backward-DAG invariants.
type Engine struct {
	mu     sync.Mutex
	tape   *tape.Tape
	shadow *shadow.Store
	arena  *linexpr.Arena

	inputs  *tape.IndexStream // nil when no recording directory is used
	outputs *tape.IndexStream

	// Typegrind substitutes SentinelIdentifier for results of operations
	// without a tape rule. Diagnostic only.
	Typegrind bool

	logger *slog.Logger
}

// Config carries engine construction parameters.
type Config struct {
	Tape    *tape.Tape
	Shadow  *shadow.Store
	Inputs  *tape.IndexStream
	Outputs *tape.IndexStream
	Logger  *slog.Logger
}

// New creates a reverse engine. The shadow store must be two-layer.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Shadow != nil && cfg.Shadow.Mode() != shadow.Reverse {
		panic("reverse: engine requires a two-layer shadow store")
	}
	return &Engine{
		tape:   cfg.Tape,
		shadow: cfg.Shadow,
		arena:  linexpr.NewArena(),
		inputs: cfg.Inputs, outputs: cfg.Outputs,
		logger: logger,
	}
}

// Tape exposes the underlying tape for inspection.
func (e *Engine) Tape() *tape.Tape { return e.tape }

// Shadow exposes the identifier shadow store.
func (e *Engine) Shadow() *shadow.Store { return e.shadow }

// Record is the "new index" entry point: submit two parent identifiers and
// two partials, receive a new identifier, subject to activity analysis.
// value is the primal result, logged when value recording is enabled.
func (e *Engine) Record(p1, p2 tape.Identifier, d1, d2 float64, value float64) (tape.Identifier, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record(p1, p2, d1, d2, value)
}

// RecordUnconditional marks an externally supplied input variable: a fresh
// identifier is assigned regardless of current activity.
func (e *Engine) RecordUnconditional(p1, p2 tape.Identifier, d1, d2 float64, value float64) (tape.Identifier, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id, err := e.tape.RecordUnconditional(p1, p2, d1, d2)
	if err != nil {
		return 0, err
	}
	if id != 0 && e.tape.ValuesEnabled() {
		if err := e.tape.RecordValue(value); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (e *Engine) record(p1, p2 tape.Identifier, d1, d2 float64, value float64) (tape.Identifier, error) {
	id, err := e.tape.Record(p1, p2, d1, d2)
	if err != nil {
		return 0, err
	}
	if id != 0 && e.tape.ValuesEnabled() {
		if err := e.tape.RecordValue(value); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// Operation records one scalar primitive operation: the partial derivatives
// are evaluated from the operand values, and a statement is appended if any
// operand is active. Transport operations relocate the first operand's
// identifier without recording. Operations without a tape rule lose the
// dependency (identifier 0), or receive the sentinel under Typegrind.
func (e *Engine) Operation(o op.Op, args []op.Value, parents []tape.Identifier, result op.Value) (tape.Identifier, error) {
	if !o.Valid() {
		panic(fmt.Sprintf("reverse: malformed operation tag %d", uint16(o)))
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if isTransport(o) {
		return parents[0], nil
	}
	ph, ok := partials[o]
	if !ok {
		if e.Typegrind {
			e.logger.Warn("no tape rule, marking result fully active", "op", o.String())
			return SentinelIdentifier, nil
		}
		return 0, nil
	}
	p1, p2 := ph(args)
	var parent2 tape.Identifier
	if len(parents) > 1 {
		parent2 = parents[1]
	}
	return e.record(parents[0], parent2, p1, p2, primal(result))
}

// OperationLanes records a SIMD operation by decomposing it into its scalar
// lane operations. parents[i][l] is the identifier of operand i's lane l;
// the returned slice holds one identifier per result lane.
func (e *Engine) OperationLanes(o op.Op, args []op.Value, parents [][]tape.Identifier, result op.Value) ([]tape.Identifier, error) {
	scalar, lanes, wide, ok := laneDecomposition(o)
	if !ok {
		if e.Typegrind {
			// Lane width of an unhandled tag is unknown; mark every
			// 64-bit lane of the result fully active.
			n := result.NumLanes64()
			if n < 1 {
				n = 1
			}
			ids := make([]tape.Identifier, n)
			for i := range ids {
				ids[i] = SentinelIdentifier
			}
			return ids, nil
		}
		return nil, nil
	}
	ids := make([]tape.Identifier, lanes)
	for l := 0; l < lanes; l++ {
		laneArgs := make([]op.Value, len(args))
		laneParents := make([]tape.Identifier, len(args))
		for i := range args {
			laneArgs[i] = laneValue(args[i], l, wide)
			laneParents[i] = parents[i][l]
		}
		id, err := e.Operation(scalar, laneArgs, laneParents, laneValue(result, l, wide))
		if err != nil {
			return nil, err
		}
		ids[l] = id
	}
	return ids, nil
}

// WriteInputIndex appends id to the input index stream.
func (e *Engine) WriteInputIndex(id tape.Identifier) error {
	if e.inputs == nil {
		return nil
	}
	if err := e.inputs.Append(id); err != nil {
		return fmt.Errorf("reverse: write input index: %w", err)
	}
	return nil
}

// WriteOutputIndex appends id to the output index stream.
func (e *Engine) WriteOutputIndex(id tape.Identifier) error {
	if e.outputs == nil {
		return nil
	}
	if err := e.outputs.Append(id); err != nil {
		return fmt.Errorf("reverse: write output index: %w", err)
	}
	return nil
}

// Close finalizes the tape and index streams. Failures are fatal: a
// truncated recording cannot be trusted for later differentiation.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.tape.Close(); err != nil {
		return err
	}
	for _, s := range []*tape.IndexStream{e.inputs, e.outputs} {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			return fmt.Errorf("reverse: close index stream: %w", err)
		}
	}
	return nil
}

func primal(v op.Value) float64 {
	if v.Type() == op.F32 {
		return float64(v.F32())
	}
	return v.F64()
}

func laneValue(v op.Value, lane int, wide bool) op.Value {
	if wide {
		return op.FromF64(v.LaneF64(lane))
	}
	return op.FromF32(v.LaneF32(lane))
}
