// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

// A Signal is an immutable fixed width bit vector. Bit 0 is the least
// significant bit.
//
// The zero value is a 0 bit wide signal.
//
type Signal struct {
	n int
	w []uint64 // never modified once the Signal has been built
}

func words(width int) int { return (width + 63) / 64 }

// NewSignal returns a width bits signal holding the low order bits of v.
//
func NewSignal(v uint64, width int) Signal {
	if width < 0 {
		panic("negative signal width")
	}
	s := Signal{n: width, w: make([]uint64, words(width))}
	if width > 0 {
		s.w[0] = v
		s.mask()
	}
	return s
}

// FromBits returns a signal built from bits, bits[0] being the least
// significant bit.
//
func FromBits(bits []bool) Signal {
	s := Signal{n: len(bits), w: make([]uint64, words(len(bits)))}
	for i, b := range bits {
		if b {
			s.w[i/64] |= 1 << uint(i%64)
		}
	}
	return s
}

// clear unused bits in the last word
func (s Signal) mask() {
	if r := uint(s.n % 64); r != 0 {
		s.w[len(s.w)-1] &= 1<<r - 1
	}
}

// Width returns the signal width in bits.
//
func (s Signal) Width() int { return s.n }

// Bit returns the state of bit i.
//
func (s Signal) Bit(i int) bool {
	if i < 0 || i >= s.n {
		panic(errors.Wrapf(ErrIndexOutOfRange, "bit %d of %d bits signal", i, s.n))
	}
	return s.w[i/64]&(1<<uint(i%64)) != 0
}

// Bits returns the individual bits of s, least significant bit first.
//
func (s Signal) Bits() []bool {
	r := make([]bool, s.n)
	for i := range r {
		r[i] = s.w[i/64]&(1<<uint(i%64)) != 0
	}
	return r
}

// Uint64 returns the low 64 bits of s.
//
func (s Signal) Uint64() uint64 {
	if len(s.w) == 0 {
		return 0
	}
	return s.w[0]
}

// OnesCount returns the number of bits set in s.
//
func (s Signal) OnesCount() int {
	c := 0
	for _, w := range s.w {
		c += bits.OnesCount64(w)
	}
	return c
}

// Equal returns true if s and o have the same width and bits.
//
func (s Signal) Equal(o Signal) bool {
	if s.n != o.n {
		return false
	}
	for i := range s.w {
		if s.w[i] != o.w[i] {
			return false
		}
	}
	return true
}

// Not returns the complement of s.
//
func (s Signal) Not() Signal {
	r := Signal{n: s.n, w: make([]uint64, len(s.w))}
	for i, w := range s.w {
		r.w[i] = ^w
	}
	if len(r.w) > 0 {
		r.mask()
	}
	return r
}

func binop(name string, a, b Signal, fn func(x, y uint64) uint64) (Signal, error) {
	if a.n != b.n {
		return Signal{}, errors.Wrapf(ErrWidthMismatch, "%s of %d and %d bits signals", name, a.n, b.n)
	}
	r := Signal{n: a.n, w: make([]uint64, len(a.w))}
	for i := range a.w {
		r.w[i] = fn(a.w[i], b.w[i])
	}
	return r, nil
}

// And returns a & b. Both signals must have the same width.
//
func And(a, b Signal) (Signal, error) {
	return binop("AND", a, b, func(x, y uint64) uint64 { return x & y })
}

// Or returns a | b. Both signals must have the same width.
//
func Or(a, b Signal) (Signal, error) {
	return binop("OR", a, b, func(x, y uint64) uint64 { return x | y })
}

// Xor returns a ^ b. Both signals must have the same width.
//
func Xor(a, b Signal) (Signal, error) {
	return binop("XOR", a, b, func(x, y uint64) uint64 { return x ^ y })
}

// String returns s in binary, most significant bit first, like 0b0101.
//
func (s Signal) String() string {
	var b strings.Builder
	b.Grow(s.n + 2)
	b.WriteString("0b")
	for i := s.n - 1; i >= 0; i-- {
		if s.w[i/64]&(1<<uint(i%64)) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
