// Package shadow implements the shadow state store: for every storage
// location used by the target program (scalar temporaries, machine
// registers, memory bytes) it keeps a same-sized shadow slot.
//
// In forward mode a slot holds a derivative value of matching type. In
// reverse mode a slot holds a 64-bit identifier encoded across two
// independently addressable layers, the low 32 bits in the first layer and
// the high 32 bits in the second, so that loads and stores of any byte
// width can assemble and disassemble a full identifier. The split is purely
// a storage-layout detail: it never leaks out of this package, and the rest
// of the system only ever sees whole 64-bit identifiers.
package shadow

import (
	"encoding/binary"
	"fmt"

	"github.com/shadowgrad/shadowgrad/internal/tape"
)

// Mode selects the shadow layout.
type Mode uint8

// Shadow layouts.
const (
	Forward Mode = iota + 1 // one layer of derivative bytes
	Reverse                 // two layers of identifier halves
)

// NumLayers returns the number of independent shadow layers of the mode.
func (m Mode) NumLayers() int {
	if m == Reverse {
		return 2
	}
	return 1
}

// layer shadows one full copy of the target's storage locations.
// Uninitialized content reads as zero everywhere: zero derivative in
// forward mode, identifier 0 in reverse mode.
type layer struct {
	temps map[int][]byte
	regs  []byte
	mem   *Memory
}

func newLayer(registerBytes int) *layer {
	return &layer{
		temps: make(map[int][]byte),
		regs:  make([]byte, registerBytes),
		mem:   NewMemory(),
	}
}

// Store maps application storage locations to shadow slots.
//
// Per-location slots are only ever touched by the thread owning the
// application location; cross-thread racing access by the target program
// has undefined shadow behavior, matching the target's own undefined
// behavior.
type Store struct {
	mode   Mode
	layers []*layer
}

// NewStore creates a store for the given mode. registerBytes is the size of
// the shadowed register file (guest state).
func NewStore(mode Mode, registerBytes int) *Store {
	s := &Store{mode: mode}
	for i := 0; i < mode.NumLayers(); i++ {
		s.layers = append(s.layers, newLayer(registerBytes))
	}
	return s
}

// Mode returns the store's layout mode.
func (s *Store) Mode() Mode { return s.mode }

func (s *Store) layer(i int, buf []byte) *layer {
	if buf == nil {
		return nil
	}
	if i >= len(s.layers) {
		panic(fmt.Sprintf("shadow: layer %d requested in %d-layer store", i, len(s.layers)))
	}
	return s.layers[i]
}

// GetMemory reads width len(lo) shadow bytes at addr from the first layer
// into lo and, if hi is non-nil, the same width from the second layer into
// hi. A nil buffer skips that layer.
func (s *Store) GetMemory(addr uint64, lo, hi []byte) {
	if l := s.layer(0, lo); l != nil {
		l.mem.Get(addr, lo)
	}
	if l := s.layer(1, hi); l != nil {
		l.mem.Get(addr, hi)
	}
}

// SetMemory writes shadow bytes at addr, one buffer per layer. Callers
// keeping a split identifier must write both layers back to back at the
// same address and width; no atomicity across the pair is guaranteed.
func (s *Store) SetMemory(addr uint64, lo, hi []byte) {
	if l := s.layer(0, lo); l != nil {
		l.mem.Set(addr, lo)
	}
	if l := s.layer(1, hi); l != nil {
		l.mem.Set(addr, hi)
	}
}

// SetMemoryGuarded writes shadow bytes only if guard holds, mirroring a
// guarded or conditional write of the original program. A skipped original
// write must skip the shadow write symmetrically.
func (s *Store) SetMemoryGuarded(addr uint64, lo, hi []byte, guard bool) {
	if !guard {
		return
	}
	s.SetMemory(addr, lo, hi)
}

// GetTemp reads the shadow of scalar temporary t.
func (s *Store) GetTemp(t int, lo, hi []byte) {
	if l := s.layer(0, lo); l != nil {
		l.getTemp(t, lo)
	}
	if l := s.layer(1, hi); l != nil {
		l.getTemp(t, hi)
	}
}

// SetTemp writes the shadow of scalar temporary t.
func (s *Store) SetTemp(t int, lo, hi []byte) {
	if l := s.layer(0, lo); l != nil {
		l.setTemp(t, lo)
	}
	if l := s.layer(1, hi); l != nil {
		l.setTemp(t, hi)
	}
}

func (l *layer) getTemp(t int, buf []byte) {
	slot := l.temps[t]
	for i := range buf {
		if i < len(slot) {
			buf[i] = slot[i]
		} else {
			buf[i] = 0
		}
	}
}

func (l *layer) setTemp(t int, data []byte) {
	slot := make([]byte, len(data))
	copy(slot, data)
	l.temps[t] = slot
}

// GetRegister reads width len(lo) shadow bytes at register-file offset.
func (s *Store) GetRegister(offset int, lo, hi []byte) {
	if l := s.layer(0, lo); l != nil {
		copy(lo, l.regs[offset:])
	}
	if l := s.layer(1, hi); l != nil {
		copy(hi, l.regs[offset:])
	}
}

// SetRegister writes shadow bytes at register-file offset.
func (s *Store) SetRegister(offset int, lo, hi []byte) {
	if l := s.layer(0, lo); l != nil {
		copy(l.regs[offset:], lo)
	}
	if l := s.layer(1, hi); l != nil {
		copy(l.regs[offset:], hi)
	}
}

// RegisterArrayOffset computes the effective register-file offset of an
// indexed (array-style) register access: element (ix+bias) mod nElems of an
// array of nElems elements of elemSize bytes starting at base.
func RegisterArrayOffset(base, elemSize, nElems, ix, bias int) int {
	idx := (ix + bias) % nElems
	if idx < 0 {
		idx += nElems
	}
	return base + elemSize*idx
}

// splitIdentifier disassembles a 64-bit identifier into its two layer
// halves.
func splitIdentifier(id tape.Identifier) (lo, hi uint32) {
	return uint32(id), uint32(id >> 32)
}

// assembleIdentifier reconstructs a 64-bit identifier from its two layer
// halves.
func assembleIdentifier(lo, hi uint32) tape.Identifier {
	return tape.Identifier(uint64(hi)<<32 | uint64(lo))
}

// MemoryIdentifier assembles the identifier shadowing the value at addr
// from the leading 4 bytes of both layers.
func (s *Store) MemoryIdentifier(addr uint64) tape.Identifier {
	s.mustReverse()
	var lo, hi [4]byte
	s.GetMemory(addr, lo[:], hi[:])
	return assembleIdentifier(binary.LittleEndian.Uint32(lo[:]), binary.LittleEndian.Uint32(hi[:]))
}

// SetMemoryIdentifier splits id across both layers at addr.
func (s *Store) SetMemoryIdentifier(addr uint64, id tape.Identifier) {
	s.mustReverse()
	var lo, hi [4]byte
	loHalf, hiHalf := splitIdentifier(id)
	binary.LittleEndian.PutUint32(lo[:], loHalf)
	binary.LittleEndian.PutUint32(hi[:], hiHalf)
	s.SetMemory(addr, lo[:], hi[:])
}

// TempIdentifier assembles the identifier shadowing temporary t.
func (s *Store) TempIdentifier(t int) tape.Identifier {
	s.mustReverse()
	var lo, hi [4]byte
	s.GetTemp(t, lo[:], hi[:])
	return assembleIdentifier(binary.LittleEndian.Uint32(lo[:]), binary.LittleEndian.Uint32(hi[:]))
}

// SetTempIdentifier splits id across both layers of temporary t.
func (s *Store) SetTempIdentifier(t int, id tape.Identifier) {
	s.mustReverse()
	var lo, hi [4]byte
	loHalf, hiHalf := splitIdentifier(id)
	binary.LittleEndian.PutUint32(lo[:], loHalf)
	binary.LittleEndian.PutUint32(hi[:], hiHalf)
	s.SetTemp(t, lo[:], hi[:])
}

func (s *Store) mustReverse() {
	if s.mode != Reverse {
		panic("shadow: identifier access on a single-layer store")
	}
}
