package tape

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors.
var (
	ErrForwardReference = errors.New("parent identifier not yet assigned")
	ErrClosed           = errors.New("sink is closed")
	ErrShortRecord      = errors.New("truncated record")
)

// statementSize is the fixed on-disk record size:
// {parent1: u64, parent2: u64, partial1: f64, partial2: f64}, little-endian.
const statementSize = 32

// StatementSink receives tape statements in append order. Appends are never
// rolled back; after a crash the stream must remain sequentially readable
// up to the last complete record.
type StatementSink interface {
	Append(Statement) error
	Close() error
}

// FileSink writes fixed-size binary statement records to a file.
type FileSink struct {
	file   *os.File
	w      *bufio.Writer
	closed bool
}

// TapeFileName is the statement file inside a recording directory.
const TapeFileName = "tape.dat"

// NewFileSink creates the tape file inside dir.
func NewFileSink(dir string) (*FileSink, error) {
	path := filepath.Join(dir, TapeFileName)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create tape file: %w", err)
	}
	return &FileSink{file: file, w: bufio.NewWriter(file)}, nil
}

// Append writes one record.
func (s *FileSink) Append(st Statement) error {
	if s.closed {
		return ErrClosed
	}
	var rec [statementSize]byte
	encodeStatement(&rec, st)
	_, err := s.w.Write(rec[:])
	return err
}

// Close flushes and closes the file.
func (s *FileSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// RAMSink keeps statements in memory. Diagnostic and benchmark use only.
type RAMSink struct {
	stmts []Statement
}

// NewRAMSink creates an in-memory sink.
func NewRAMSink() *RAMSink {
	return &RAMSink{stmts: make([]Statement, 0, 1024)}
}

// Append stores one record.
func (s *RAMSink) Append(st Statement) error {
	s.stmts = append(s.stmts, st)
	return nil
}

// Close is a no-op.
func (s *RAMSink) Close() error { return nil }

// Statements returns the recorded statements. Statement i of the tape
// (1-indexed) is Statements()[i-1].
func (s *RAMSink) Statements() []Statement { return s.stmts }

func encodeStatement(rec *[statementSize]byte, st Statement) {
	binary.LittleEndian.PutUint64(rec[0:8], uint64(st.Parent1))
	binary.LittleEndian.PutUint64(rec[8:16], uint64(st.Parent2))
	binary.LittleEndian.PutUint64(rec[16:24], f64bits(st.Partial1))
	binary.LittleEndian.PutUint64(rec[24:32], f64bits(st.Partial2))
}

// ReadTapeFile reads all statements back from a tape file, for tools that
// evaluate the tape after the recorded run.
func ReadTapeFile(dir string) ([]Statement, error) {
	data, err := os.ReadFile(filepath.Join(dir, TapeFileName))
	if err != nil {
		return nil, fmt.Errorf("read tape file: %w", err)
	}
	if len(data)%statementSize != 0 {
		return nil, fmt.Errorf("tape file has %d trailing bytes: %w",
			len(data)%statementSize, ErrShortRecord)
	}
	stmts := make([]Statement, len(data)/statementSize)
	for i := range stmts {
		rec := data[i*statementSize:]
		stmts[i] = Statement{
			Parent1:  Identifier(binary.LittleEndian.Uint64(rec[0:8])),
			Parent2:  Identifier(binary.LittleEndian.Uint64(rec[8:16])),
			Partial1: f64frombits(binary.LittleEndian.Uint64(rec[16:24])),
			Partial2: f64frombits(binary.LittleEndian.Uint64(rec[24:32])),
		}
	}
	return stmts, nil
}
