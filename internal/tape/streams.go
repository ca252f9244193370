package tape

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// File names inside a recording directory, alongside TapeFileName.
const (
	ValuesFileName  = "values.dat"
	InputsFileName  = "inputs.dat"
	OutputsFileName = "outputs.dat"
)

func f64bits(f float64) uint64     { return math.Float64bits(f) }
func f64frombits(u uint64) float64 { return math.Float64frombits(u) }

// ValueLog records the primal value at the moment each statement was
// created, indexed identically to the tape. Debug-only; not required for
// correctness of differentiation.
type ValueLog struct {
	file   *os.File // nil for in-memory logs
	w      *bufio.Writer
	ram    []float64
	inRAM  bool
	closed bool
}

// NewValueLog creates the value file inside dir.
func NewValueLog(dir string) (*ValueLog, error) {
	file, err := os.Create(filepath.Join(dir, ValuesFileName))
	if err != nil {
		return nil, fmt.Errorf("create value file: %w", err)
	}
	return &ValueLog{file: file, w: bufio.NewWriter(file)}, nil
}

// NewRAMValueLog creates an in-memory value log.
func NewRAMValueLog() *ValueLog {
	return &ValueLog{inRAM: true}
}

// Append records one primal value.
func (l *ValueLog) Append(v float64) error {
	if l.closed {
		return ErrClosed
	}
	if l.inRAM {
		l.ram = append(l.ram, v)
		return nil
	}
	var rec [8]byte
	binary.LittleEndian.PutUint64(rec[:], f64bits(v))
	_, err := l.w.Write(rec[:])
	return err
}

// Values returns the in-memory log contents.
func (l *ValueLog) Values() []float64 { return l.ram }

// Close flushes and closes the underlying file, if any.
func (l *ValueLog) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if l.inRAM {
		return nil
	}
	if err := l.w.Flush(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

// IndexStream is an append-only stream of identifiers designating program
// inputs or outputs, in the order they were submitted.
type IndexStream struct {
	file   *os.File
	w      *bufio.Writer
	closed bool
}

// NewIndexStream creates name inside dir.
func NewIndexStream(dir, name string) (*IndexStream, error) {
	file, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create index file %s: %w", name, err)
	}
	return &IndexStream{file: file, w: bufio.NewWriter(file)}, nil
}

// Append writes one identifier.
func (s *IndexStream) Append(id Identifier) error {
	if s.closed {
		return ErrClosed
	}
	var rec [8]byte
	binary.LittleEndian.PutUint64(rec[:], uint64(id))
	_, err := s.w.Write(rec[:])
	return err
}

// Close flushes and closes the file.
func (s *IndexStream) Close() error {
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
