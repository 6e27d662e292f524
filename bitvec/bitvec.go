// Package bitvec implements fixed-width two-state bit vectors with
// signed/unsigned integer conversions, used by the typed port surface
// and by cell evaluators.
//
// Arbitrary-width conversions go through math/big rather than a fixed
// machine integer: element widths of at least 128 bits are expected,
// which no built-in integer type covers, and no third-party bignum
// library is available to use instead (see DESIGN.md).
package bitvec

import (
	"fmt"
	"math/big"
)

// Bit is a two-state value. Only 0 and 1 are valid.
type Bit uint8

const (
	Zero Bit = 0
	One  Bit = 1
)

// BitVec is an ordered sequence of Bit. Index 0 is the least-significant
// bit (little-endian).
type BitVec struct {
	bits []Bit
}

// New returns a zero-filled BitVec of the given width.
func New(width int) BitVec {
	if width < 0 {
		panic("bitvec: negative width")
	}
	return BitVec{bits: make([]Bit, width)}
}

// FromBits builds a BitVec from an explicit little-endian bit slice. The
// slice is copied.
func FromBits(bits []Bit) BitVec {
	cp := make([]Bit, len(bits))
	copy(cp, bits)
	return BitVec{bits: cp}
}

// Width returns the number of bits.
func (v BitVec) Width() int { return len(v.bits) }

// Bit returns the bit at index i (0 = LSB).
func (v BitVec) Bit(i int) Bit { return v.bits[i] }

// WithBit returns a copy of v with bit i set to b.
func (v BitVec) WithBit(i int, b Bit) BitVec {
	cp := make([]Bit, len(v.bits))
	copy(cp, v.bits)
	cp[i] = b
	return BitVec{bits: cp}
}

// Bits returns the underlying little-endian bit slice (read-only; callers
// must not mutate it).
func (v BitVec) Bits() []Bit { return v.bits }

// Slice returns the half-open bit range [lo, hi).
func (v BitVec) Slice(lo, hi int) BitVec {
	return FromBits(v.bits[lo:hi])
}

// Concat returns low's bits followed by high's bits, i.e. low occupies
// the least-significant positions of the result.
func Concat(low, high BitVec) BitVec {
	out := make([]Bit, 0, len(low.bits)+len(high.bits))
	out = append(out, low.bits...)
	out = append(out, high.bits...)
	return BitVec{bits: out}
}

// Uint interprets v as an unsigned integer.
func (v BitVec) Uint() *big.Int {
	out := new(big.Int)
	for i := len(v.bits) - 1; i >= 0; i-- {
		out.Lsh(out, 1)
		if v.bits[i] == One {
			out.SetBit(out, 0, 1)
		}
	}
	return out
}

// Int interprets v as a two's-complement signed integer.
func (v BitVec) Int() *big.Int {
	u := v.Uint()
	w := len(v.bits)
	if w == 0 || v.bits[w-1] == Zero {
		return u
	}
	// Negative: value = u - 2^w.
	full := new(big.Int).Lsh(big.NewInt(1), uint(w))
	return u.Sub(u, full)
}

// FromUint builds a width-bit BitVec from an unsigned integer. It is an
// error if value does not fit in width bits.
func FromUint(value *big.Int, width int) (BitVec, error) {
	if value.Sign() < 0 {
		return BitVec{}, fmt.Errorf("bitvec: negative value for unsigned width %d", width)
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(width))
	if value.Cmp(limit) >= 0 {
		return BitVec{}, fmt.Errorf("bitvec: value %s out of range for unsigned width %d", value, width)
	}

	bits := make([]Bit, width)
	tmp := new(big.Int).Set(value)
	for i := 0; i < width; i++ {
		if tmp.Bit(0) == 1 {
			bits[i] = One
		}
		tmp.Rsh(tmp, 1)
	}
	return BitVec{bits: bits}, nil
}

// FromInt builds a width-bit two's-complement BitVec from a signed
// integer. It is an error if value does not fit in width bits.
func FromInt(value *big.Int, width int) (BitVec, error) {
	if width <= 0 {
		return BitVec{}, fmt.Errorf("bitvec: non-positive width %d", width)
	}
	minVal := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(width-1)))
	maxVal := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(width-1)), big.NewInt(1))
	if value.Cmp(minVal) < 0 || value.Cmp(maxVal) > 0 {
		return BitVec{}, fmt.Errorf("bitvec: value %s out of range for signed width %d", value, width)
	}

	unsigned := value
	if value.Sign() < 0 {
		full := new(big.Int).Lsh(big.NewInt(1), uint(width))
		unsigned = new(big.Int).Add(full, value)
	}
	return FromUint(unsigned, width)
}
