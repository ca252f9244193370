package shadow

import (
	"encoding/binary"
	"math"

	"github.com/shadowgrad/shadowgrad/internal/tape"
)

// Extended-precision transport. 80-bit x87 values are stored
// least-significant-first across a ten-byte range, a width with no
// registered shadow conversion (everything else is 1/2/4/8 bytes). Their
// shadow is only meaningfully tracked in the leading 32-bit window of each
// layer: enough for a split identifier half per layer in reverse mode, and
// for the leading derivative bytes in forward mode.

// LoadExtended reads the leading 32-bit shadow window of each layer at the
// address of an 80-bit value. In forward mode hi is zero.
func (s *Store) LoadExtended(addr uint64) (lo, hi uint32) {
	var loBuf, hiBuf [4]byte
	if s.mode == Reverse {
		s.GetMemory(addr, loBuf[:], hiBuf[:])
	} else {
		s.GetMemory(addr, loBuf[:], nil)
	}
	return binary.LittleEndian.Uint32(loBuf[:]), binary.LittleEndian.Uint32(hiBuf[:])
}

// StoreExtended writes the leading 32-bit shadow window of each layer at
// the address of an 80-bit value. In forward mode hi is ignored.
func (s *Store) StoreExtended(addr uint64, lo, hi uint32) {
	var loBuf, hiBuf [4]byte
	binary.LittleEndian.PutUint32(loBuf[:], lo)
	binary.LittleEndian.PutUint32(hiBuf[:], hi)
	if s.mode == Reverse {
		s.SetMemory(addr, loBuf[:], hiBuf[:])
	} else {
		s.SetMemory(addr, loBuf[:], nil)
	}
}

// ExtendedIdentifier assembles the identifier of an 80-bit value from the
// two shadow windows.
func (s *Store) ExtendedIdentifier(addr uint64) tape.Identifier {
	s.mustReverse()
	lo, hi := s.LoadExtended(addr)
	return assembleIdentifier(lo, hi)
}

// SetExtendedIdentifier splits id into the two shadow windows of an 80-bit
// value.
func (s *Store) SetExtendedIdentifier(addr uint64, id tape.Identifier) {
	s.mustReverse()
	lo, hi := splitIdentifier(id)
	s.StoreExtended(addr, lo, hi)
}

const (
	f80ExpBias  = 16383
	f64ExpBias  = 1023
	f80ExpMax   = 0x7fff
	f80IntegBit = uint64(1) << 63
)

// F80ToF64 converts a little-endian 80-bit extended value to float64.
// Bytes 0-7 hold the 64-bit significand with an explicit integer bit;
// bytes 8-9 hold sign and 15-bit exponent.
func F80ToF64(src [10]byte) float64 {
	mant := binary.LittleEndian.Uint64(src[0:8])
	se := binary.LittleEndian.Uint16(src[8:10])
	sign := se>>15 != 0
	exp := int(se & f80ExpMax)

	var f float64
	switch {
	case exp == f80ExpMax:
		if mant<<1 == 0 { // only the integer bit set
			f = math.Inf(1)
		} else {
			f = math.NaN()
		}
	case exp == 0 && mant == 0:
		f = 0
	default:
		// Denormals (exp==0) use the minimum exponent without an integer
		// bit; the Ldexp below handles both since the bit is explicit.
		e := exp
		if e == 0 {
			e = 1
		}
		f = math.Ldexp(float64(mant), e-f80ExpBias-63)
	}
	if sign {
		f = -f
	}
	return f
}

// F64ToF80 converts a float64 to a little-endian 80-bit extended value.
func F64ToF80(f float64) [10]byte {
	var dst [10]byte
	var se uint16
	if math.Signbit(f) {
		se = 1 << 15
		f = -f
	}
	var mant uint64
	switch {
	case math.IsNaN(f):
		se |= f80ExpMax
		mant = f80IntegBit | uint64(1)<<62 // quiet NaN
	case math.IsInf(f, 0):
		se |= f80ExpMax
		mant = f80IntegBit
	case f == 0:
		// all zero
	default:
		frac, exp := math.Frexp(f) // f = frac * 2^exp, frac in [0.5, 1)
		mant = uint64(frac * (1 << 63) * 2)
		se |= uint16(exp - 1 + f80ExpBias)
	}
	binary.LittleEndian.PutUint64(dst[0:8], mant)
	binary.LittleEndian.PutUint16(dst[8:10], se)
	return dst
}
