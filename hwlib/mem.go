// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"io"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/hwio"
	"github.com/pkg/errors"
)

const (
	pAddr = "addr"
	pCE   = "ce"
	pW    = "w"
	pEn   = "en"
)

// max address width of memory parts.
const maxAddrWidth = 16

// A ROM is a read-only memory part. The number of words is 2^n, where n is
// the width of the addr port. Its contents are set with Burn or BurnImage.
//
//	Inputs: addr, ce (1 bit)
//	Outputs: q (word bits)
//	Function: if ce == 1 { q = mem[addr] }
//
type ROM struct {
	*evsim.Part
	word  int
	cells []*evsim.Bus
}

func romSpec(r *ROM) *evsim.PartSpec {
	return &evsim.PartSpec{
		Name:    "ROM",
		Inputs:  []string{pAddr, pCE},
		Outputs: []string{pQ},
		Widths:  map[string]int{pCE: 1, pQ: r.word},
		Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
			if r.word < 1 {
				return nil, errors.Errorf("ROM: invalid word size %d", r.word)
			}
			n := s.Width(pAddr)
			if n > maxAddrWidth {
				return nil, errors.Errorf("ROM: address width %d too large", n)
			}
			dec, err := s.Part(Decoder(n), evsim.W{pA: s.Input(pAddr), pE: evsim.VDD(1)})
			if err != nil {
				return nil, err
			}
			q := s.Output(pQ)
			r.cells = make([]*evsim.Bus, 1<<uint(n))
			for i := range r.cells {
				r.cells[i] = s.NewBus(r.word)
				_, err = s.Part(Buffer, evsim.W{pA: r.cells[i], pY: q}, evsim.Tristate(pY, dec.Pin(pn(pY, i))))
				if err != nil {
					return nil, err
				}
			}
			return nil, s.Tristate(pQ, s.Input(pCE))
		},
	}
}

// NewROM creates a new ROM with the given word size. The width of the addr
// port is set with the evsim.Size option or inferred from w.
//
func NewROM(u *evsim.Updater, word int, w evsim.W, opts ...evsim.Option) (*ROM, error) {
	r := &ROM{word: word}
	p, err := romSpec(r).NewPart(u, w, opts...)
	if err != nil {
		return nil, err
	}
	r.Part = p
	return r, nil
}

// MountROM is like NewROM but creates the ROM as a sub-part of the part
// being built with s.
//
func MountROM(s *evsim.Socket, word int, w evsim.W, opts ...evsim.Option) (*ROM, error) {
	r := &ROM{word: word}
	p, err := s.Part(romSpec(r), w, opts...)
	if err != nil {
		return nil, err
	}
	r.Part = p
	return r, nil
}

// Words returns the number of words in the ROM.
//
func (r *ROM) Words() int { return len(r.cells) }

// Burn writes words to the ROM, starting at address 0. Words past the end of
// the given slice are left untouched.
//
func (r *ROM) Burn(words []uint64) error {
	if len(words) > len(r.cells) {
		return errors.Wrapf(evsim.ErrIndexOutOfRange, "%s: %d words image, capacity is %d", r, len(words), len(r.cells))
	}
	for i, v := range words {
		if r.word < 64 && v>>uint(r.word) != 0 {
			return errors.Wrapf(evsim.ErrWidthMismatch, "%s: word %d: value %#x does not fit in %d bits", r, i, v, r.word)
		}
	}
	for i, v := range words {
		if err := r.cells[i].WriteUint64(v); err != nil {
			return errors.WithMessage(err, r.String())
		}
	}
	return nil
}

// BurnImage reads a memory image in the hwio format from rd and burns it.
//
func (r *ROM) BurnImage(rd io.Reader) error {
	words, err := hwio.ReadImage(rd)
	if err != nil {
		return err
	}
	return r.Burn(words)
}

// MemoryCell is a one word read/write memory cell.
//
//	Inputs: d, clk (1 bit), w (1 bit), en (1 bit)
//	Outputs: q
//	Function: on clk rising edge: if w == 1 { state = d }
//	          if en == 1 { q = state }
//
var MemoryCell = &evsim.PartSpec{
	Name:    "CELL",
	Inputs:  []string{pD, pClk, pW, pEn},
	Outputs: []string{pQ},
	Widths:  map[string]int{pClk: 1, pW: 1, pEn: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		mux, err := s.Part(Mux, evsim.W{pS: s.Input(pW), "d1": s.Input(pD)})
		if err != nil {
			return nil, err
		}
		ff, err := s.Part(DFlipFlop, evsim.W{pD: mux.Pin(pY), pClk: s.Input(pClk)})
		if err != nil {
			return nil, err
		}
		if err = mux.Connect("d0", ff.Pin(pQ)); err != nil {
			return nil, err
		}
		if err = s.SetOutput(pQ, ff.Pin(pQ)); err != nil {
			return nil, err
		}
		return nil, s.Tristate(pQ, s.Input(pEn))
	},
}

// RAM returns a random access memory part with the given word size. The
// number of words is 2^n, where n is the width of the addr port, set with
// the evsim.Size option or inferred from the bus connected to addr.
//
//	Inputs: d (word bits), clk (1 bit), addr, w (1 bit), en (1 bit)
//	Outputs: q (word bits)
//	Function: on clk rising edge: if w == 1 { mem[addr] = d }
//	          if en == 1 { q = mem[addr] }
//
func RAM(word int) *evsim.PartSpec {
	if word < 1 {
		panic(errors.Errorf("RAM: invalid word size %d", word))
	}
	return &evsim.PartSpec{
		Name:    "RAM",
		Inputs:  []string{pD, pClk, pAddr, pW, pEn},
		Outputs: []string{pQ},
		Widths:  map[string]int{pD: word, pQ: word, pClk: 1, pW: 1, pEn: 1},
		Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
			n := s.Width(pAddr)
			if n > maxAddrWidth {
				return nil, errors.Errorf("RAM: address width %d too large", n)
			}
			dec, err := s.Part(Decoder(n), evsim.W{pA: s.Input(pAddr), pE: evsim.VDD(1)})
			if err != nil {
				return nil, err
			}
			q := s.Output(pQ)
			for i := 0; i < 1<<uint(n); i++ {
				line := dec.Pin(pn(pY, i))
				we, err := s.Part(And, evsim.W{pA: s.Input(pW), pB: line})
				if err != nil {
					return nil, err
				}
				_, err = s.Part(MemoryCell, evsim.W{
					pD:   s.Input(pD),
					pClk: s.Input(pClk),
					pW:   we.Pin(pY),
					pEn:  line,
					pQ:   q,
				})
				if err != nil {
					return nil, err
				}
			}
			return nil, s.Tristate(pQ, s.Input(pEn))
		},
	}
}
