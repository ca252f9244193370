// Copyright 2026 The Shadowgrad Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tape provides the recorded dependency tape: an append-only
// sequence of statements, each naming up to two parent identifiers and
// the partial derivatives with respect to them. A backward sweep over
// the tape computes adjoints of every recorded variable.
//
// Example:
//
//	import "github.com/shadowgrad/shadowgrad/tape"
//
//	func main() {
//	    sink := tape.NewRAMSink()
//	    t := tape.New(tape.Config{Sink: sink})
//
//	    x, _ := t.RecordUnconditional(0, 0, 0, 0) // input
//	    y, _ := t.Record(x, 0, 2.0, 0)            // y = 2x
//	    _ = y
//	}
package tape

import "github.com/shadowgrad/shadowgrad/internal/tape"

// Identifier names one recorded variable. 0 means inactive.
type Identifier = tape.Identifier

// SentinelIdentifier marks values whose dependency chain was lost to an
// unhandled operation under the typegrind diagnostic mode.
const SentinelIdentifier = tape.SentinelIdentifier

// Statement is one tape record.
type Statement = tape.Statement

// Tape assigns monotonically increasing identifiers to statements.
type Tape = tape.Tape

// Config carries tape construction parameters.
type Config = tape.Config

// StopFunc is called when a stop identifier is assigned.
type StopFunc = tape.StopFunc

// StatementSink receives encoded statements.
type StatementSink = tape.StatementSink

// FileSink streams statements to tape.dat in a directory.
type FileSink = tape.FileSink

// RAMSink keeps statements in memory.
type RAMSink = tape.RAMSink

// ValueLog records one primal value per statement.
type ValueLog = tape.ValueLog

// IndexStream records input or output identifier lists.
type IndexStream = tape.IndexStream

// File names inside a recording directory.
const (
	TapeFileName    = tape.TapeFileName
	ValuesFileName  = tape.ValuesFileName
	InputsFileName  = tape.InputsFileName
	OutputsFileName = tape.OutputsFileName
)

// Sentinel errors.
var (
	ErrForwardReference = tape.ErrForwardReference
	ErrClosed           = tape.ErrClosed
	ErrShortRecord      = tape.ErrShortRecord
)

// New creates a tape. Identifiers start at 1.
func New(cfg Config) *Tape { return tape.New(cfg) }

// NewFileSink creates a sink writing tape.dat under dir.
func NewFileSink(dir string) (*FileSink, error) { return tape.NewFileSink(dir) }

// NewRAMSink creates an in-memory sink.
func NewRAMSink() *RAMSink { return tape.NewRAMSink() }

// NewValueLog creates a value log writing values.dat under dir.
func NewValueLog(dir string) (*ValueLog, error) { return tape.NewValueLog(dir) }

// NewRAMValueLog creates an in-memory value log.
func NewRAMValueLog() *ValueLog { return tape.NewRAMValueLog() }

// NewIndexStream creates an identifier list file under dir.
func NewIndexStream(dir, name string) (*IndexStream, error) {
	return tape.NewIndexStream(dir, name)
}

// ReadTapeFile loads all statements of a recorded tape.dat.
func ReadTapeFile(dir string) ([]Statement, error) { return tape.ReadTapeFile(dir) }
