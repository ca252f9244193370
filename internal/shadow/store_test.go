package shadow

import (
	"bytes"
	"math"
	"testing"

	"github.com/shadowgrad/shadowgrad/internal/tape"
)

// TestMemory_RoundTrip writes shadow bytes of every supported width and
// reads back the exact original bits.
func TestMemory_RoundTrip(t *testing.T) {
	s := NewStore(Forward, 1024)

	for _, width := range []int{1, 2, 4, 8} {
		data := make([]byte, width)
		for i := range data {
			data[i] = byte(0xa0 + i)
		}
		addr := uint64(0x7ffd_0000 + width*64)
		s.SetMemory(addr, data, nil)

		got := make([]byte, width)
		s.GetMemory(addr, got, nil)
		if !bytes.Equal(got, data) {
			t.Errorf("width %d: got %x, want %x", width, got, data)
		}
	}
}

// TestMemory_DefaultZero verifies uninitialized shadow reads as zero.
func TestMemory_DefaultZero(t *testing.T) {
	s := NewStore(Forward, 64)
	buf := []byte{0xff, 0xff, 0xff, 0xff}
	s.GetMemory(0xdead_beef, buf, nil)
	for i, b := range buf {
		if b != 0 {
			t.Errorf("byte %d = %#x, want 0", i, b)
		}
	}
}

// TestMemory_PageStraddle verifies accesses crossing a page boundary.
func TestMemory_PageStraddle(t *testing.T) {
	m := NewMemory()
	addr := uint64(pageSize - 3)
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	m.Set(addr, data)

	got := make([]byte, 8)
	m.Get(addr, got)
	if !bytes.Equal(got, data) {
		t.Errorf("straddling read: got %v, want %v", got, data)
	}
	if m.NumPages() != 2 {
		t.Errorf("NumPages = %d, want 2", m.NumPages())
	}
}

// TestIdentifier_SplitRoundTrip verifies the 64-bit identifier survives the
// two-layer split for memory, temporaries, and the extended-precision path.
func TestIdentifier_SplitRoundTrip(t *testing.T) {
	s := NewStore(Reverse, 1024)
	id := tape.Identifier(0x1234_5678_9abc_def0)

	s.SetMemoryIdentifier(0x1000, id)
	if got := s.MemoryIdentifier(0x1000); got != id {
		t.Errorf("memory identifier = %#x, want %#x", got, id)
	}

	s.SetTempIdentifier(7, id)
	if got := s.TempIdentifier(7); got != id {
		t.Errorf("temp identifier = %#x, want %#x", got, id)
	}

	s.SetExtendedIdentifier(0x2000, id)
	if got := s.ExtendedIdentifier(0x2000); got != id {
		t.Errorf("extended identifier = %#x, want %#x", got, id)
	}
}

// TestIdentifier_DefaultInactive verifies untouched locations carry
// identifier 0.
func TestIdentifier_DefaultInactive(t *testing.T) {
	s := NewStore(Reverse, 64)
	if got := s.MemoryIdentifier(0x9999); got != 0 {
		t.Errorf("default identifier = %d, want 0", got)
	}
	if got := s.TempIdentifier(42); got != 0 {
		t.Errorf("default temp identifier = %d, want 0", got)
	}
}

// TestSetMemoryGuarded verifies guarded writes skip symmetrically.
func TestSetMemoryGuarded(t *testing.T) {
	s := NewStore(Forward, 64)
	data := []byte{1, 2, 3, 4}

	s.SetMemoryGuarded(0x100, data, nil, false)
	got := make([]byte, 4)
	s.GetMemory(0x100, got, nil)
	for _, b := range got {
		if b != 0 {
			t.Fatal("guarded-out write modified shadow state")
		}
	}

	s.SetMemoryGuarded(0x100, data, nil, true)
	s.GetMemory(0x100, got, nil)
	if !bytes.Equal(got, data) {
		t.Errorf("guarded-in write: got %v, want %v", got, data)
	}
}

// TestRegisters covers flat and indexed register shadow access.
func TestRegisters(t *testing.T) {
	s := NewStore(Reverse, 512)

	lo := []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}
	hi := []byte{0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x00}
	s.SetRegister(128, lo, hi)

	gotLo := make([]byte, 8)
	gotHi := make([]byte, 8)
	s.GetRegister(128, gotLo, gotHi)
	if !bytes.Equal(gotLo, lo) || !bytes.Equal(gotHi, hi) {
		t.Errorf("register round trip: got %x/%x, want %x/%x", gotLo, gotHi, lo, hi)
	}

	// Indexed access wraps modulo the array length.
	off := RegisterArrayOffset(64, 8, 8, 9, 1) // (9+1) mod 8 = 2 → 64+16
	if off != 80 {
		t.Errorf("RegisterArrayOffset = %d, want 80", off)
	}
	if off := RegisterArrayOffset(64, 8, 8, -3, 1); off != 64+8*6 {
		t.Errorf("negative index offset = %d, want %d", off, 64+8*6)
	}
}

// TestF80Conversion verifies the f64<->f80 helpers on representative
// values.
func TestF80Conversion(t *testing.T) {
	cases := []float64{0, 1, -1, 3.141592653589793, -2.5e-5, 1e300, -1e-300}
	for _, want := range cases {
		got := F80ToF64(F64ToF80(want))
		if got != want {
			t.Errorf("f80 round trip of %g gave %g", want, got)
		}
	}

	if !math.IsInf(F80ToF64(F64ToF80(math.Inf(1))), 1) {
		t.Error("+inf did not survive the round trip")
	}
	if !math.IsNaN(F80ToF64(F64ToF80(math.NaN()))) {
		t.Error("NaN did not survive the round trip")
	}
	if got := F80ToF64(F64ToF80(math.Copysign(0, -1))); !math.Signbit(got) || got != 0 {
		t.Errorf("-0 round trip gave %g", got)
	}
}
