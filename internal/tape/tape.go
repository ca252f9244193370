// Package tape implements the reverse-mode recording engine: an append-only
// sequence of dependency statements, a monotonic identifier allocator, and
// the activity analysis deciding which operations are worth recording.
//
// Identifiers name nodes of the dependency DAG. Identifier 0 is reserved
// and means "not tracked". Every nonzero identifier equals the index of its
// statement on the tape (1-indexed; index 0 is an implicit sentinel that is
// never physically stored).
package tape

import (
	"fmt"
	"log/slog"
	"sort"
)

// Identifier names one tracked value. 0 means inactive.
type Identifier uint64

// SentinelIdentifier marks a value whose dependency chain was lost to an
// unhandled operation, under the typegrind diagnostic mode. It is a valid
// parent in later statements even though it names no statement of its own,
// so lost dependencies stay visible throughout the recorded DAG.
const SentinelIdentifier Identifier = 0xffff_ffff_ffff_ffff

// Statement is one tape record: the new value depends on up to two parents
// with the given partial derivatives. A zero parent means "no such parent".
type Statement struct {
	Parent1  Identifier
	Parent2  Identifier
	Partial1 float64
	Partial2 float64
}

// StopFunc is invoked when a statement whose identifier is in the stop set
// is recorded, before the identifier is returned to the caller.
type StopFunc func(Identifier)

// Tape allocates identifiers and appends statements to a sink.
//
// The tape is a global, shared, mutable resource: a multi-threaded host
// must serialize calls to Record/RecordUnconditional externally (see the
// engine's session lock); the tape itself does no locking.
type Tape struct {
	next   Identifier
	sink   StatementSink
	values *ValueLog // nil unless value recording is enabled

	stops    []Identifier // sorted, immutable after New
	stopFunc StopFunc

	logger *slog.Logger
}

// Config carries tape construction parameters.
type Config struct {
	Sink     StatementSink
	Values   *ValueLog // optional
	Stops    []Identifier
	StopFunc StopFunc // optional; default logs and continues
	Logger   *slog.Logger
}

// New creates a tape. The identifier counter starts at 1; it is never reset
// except by creating a new tape.
func New(cfg Config) *Tape {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stops := make([]Identifier, len(cfg.Stops))
	copy(stops, cfg.Stops)
	sort.Slice(stops, func(i, j int) bool { return stops[i] < stops[j] })
	stopFunc := cfg.StopFunc
	if stopFunc == nil {
		stopFunc = func(id Identifier) {
			logger.Warn("recording stop index reached", "identifier", uint64(id))
		}
	}
	return &Tape{
		next:     1,
		sink:     cfg.Sink,
		values:   cfg.Values,
		stops:    stops,
		stopFunc: stopFunc,
		logger:   logger,
	}
}

// NextIdentifier returns the identifier the next recorded statement will get.
func (t *Tape) NextIdentifier() Identifier { return t.next }

// Record appends a statement if activity analysis finds at least one active
// parent, and returns the fresh identifier. A parent is active if its
// identifier is nonzero and its partial derivative is nonzero. If neither
// parent is active, nothing is appended and 0 is returned.
func (t *Tape) Record(parent1, parent2 Identifier, partial1, partial2 float64) (Identifier, error) {
	active1 := parent1 != 0 && partial1 != 0
	active2 := parent2 != 0 && partial2 != 0
	if !active1 && !active2 {
		return 0, nil
	}
	return t.append(Statement{parent1, parent2, partial1, partial2})
}

// RecordUnconditional appends a statement regardless of parent activity.
// It marks externally supplied input variables, which must always receive
// a fresh identifier to be distinguishable later.
func (t *Tape) RecordUnconditional(parent1, parent2 Identifier, partial1, partial2 float64) (Identifier, error) {
	return t.append(Statement{parent1, parent2, partial1, partial2})
}

func (t *Tape) append(st Statement) (Identifier, error) {
	// Backward-DAG invariant: parents must predate the new statement. The
	// sentinel is exempt; it never names a statement.
	if (st.Parent1 >= t.next && st.Parent1 != SentinelIdentifier) ||
		(st.Parent2 >= t.next && st.Parent2 != SentinelIdentifier) {
		return 0, fmt.Errorf("tape: statement %d refers to future parent (%d, %d): %w",
			uint64(t.next), uint64(st.Parent1), uint64(st.Parent2), ErrForwardReference)
	}
	if err := t.sink.Append(st); err != nil {
		return 0, fmt.Errorf("tape: append statement %d: %w", uint64(t.next), err)
	}
	id := t.next
	t.next++
	if t.inStopSet(id) {
		t.stopFunc(id)
	}
	return id, nil
}

// RecordValue appends the primal value for the most recent statement to the
// value log, if value recording is enabled. Callers gate on a nonzero
// identifier, mirroring the statement/value index correspondence.
func (t *Tape) RecordValue(v float64) error {
	if t.values == nil {
		return nil
	}
	if err := t.values.Append(v); err != nil {
		return fmt.Errorf("tape: append value: %w", err)
	}
	return nil
}

// ValuesEnabled reports whether a value log is attached.
func (t *Tape) ValuesEnabled() bool { return t.values != nil }

// NumStatements returns the number of statements appended so far.
func (t *Tape) NumStatements() int { return int(t.next) - 1 }

func (t *Tape) inStopSet(id Identifier) bool {
	i := sort.Search(len(t.stops), func(i int) bool { return t.stops[i] >= id })
	return i < len(t.stops) && t.stops[i] == id
}

// Close flushes and closes the statement sink and value log. A failure is
// fatal for the session: a truncated tape cannot be trusted later.
func (t *Tape) Close() error {
	if err := t.sink.Close(); err != nil {
		return fmt.Errorf("tape: close statement sink: %w", err)
	}
	if t.values != nil {
		if err := t.values.Close(); err != nil {
			return fmt.Errorf("tape: close value log: %w", err)
		}
	}
	return nil
}
