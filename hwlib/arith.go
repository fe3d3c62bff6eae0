// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"math/bits"

	"github.com/db47h/evsim"
)

// HalfAdder is a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
var HalfAdder = &evsim.PartSpec{
	Name:    "HalfAdder",
	Inputs:  []string{pA, pB},
	Outputs: []string{pS, "c"},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		w := evsim.W{pA: s.Input(pA), pB: s.Input(pB)}
		x, err := s.Part(Xor, w)
		if err != nil {
			return nil, err
		}
		a, err := s.Part(And, w)
		if err != nil {
			return nil, err
		}
		if err = s.SetOutput(pS, x.Pin(pY)); err != nil {
			return nil, err
		}
		return nil, s.SetOutput("c", a.Pin(pY))
	},
}

// FullAdder is a full adder built from two half adders.
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = a ^ b ^ cin
//	          cout = majority(a, b, cin)
//
var FullAdder = &evsim.PartSpec{
	Name:    "FullAdder",
	Inputs:  []string{pA, pB, pCin},
	Outputs: []string{pS, pCout},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		h0, err := s.Part(HalfAdder, evsim.W{pA: s.Input(pA), pB: s.Input(pB)})
		if err != nil {
			return nil, err
		}
		h1, err := s.Part(HalfAdder, evsim.W{pA: h0.Pin(pS), pB: s.Input(pCin)})
		if err != nil {
			return nil, err
		}
		or, err := s.Part(Or, evsim.W{pA: h0.Pin("c"), pB: h1.Pin("c")})
		if err != nil {
			return nil, err
		}
		if err = s.SetOutput(pS, h1.Pin(pS)); err != nil {
			return nil, err
		}
		return nil, s.SetOutput(pCout, or.Pin(pY))
	},
}

// CPA is a carry propagate (ripple carry) adder.
//
//	Inputs: a, b, cin (1 bit)
//	Outputs: s, cout (1 bit)
//	Function: s = lsb(a + b + cin)
//	          cout = carry out of a + b + cin
//
var CPA = &evsim.PartSpec{
	Name:    "CPA",
	Inputs:  []string{pA, pB, pCin},
	Outputs: []string{pS, pCout},
	Widths:  map[string]int{pCin: 1, pCout: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		as, bs := s.Input(pA).Split(), s.Input(pB).Split()
		sum := make([]*evsim.Bus, len(as))
		c := s.Input(pCin)
		for i := range as {
			fa, err := s.Part(FullAdder, evsim.W{pA: as[i], pB: bs[i], pCin: c})
			if err != nil {
				return nil, err
			}
			sum[i] = fa.Pin(pS)
			c = fa.Pin(pCout)
		}
		if err := s.SetOutput(pS, evsim.Merge(sum...)); err != nil {
			return nil, err
		}
		return nil, s.SetOutput(pCout, c)
	},
}

// Subtractor computes a - b as a + ^b + 1.
//
//	Inputs: a, b
//	Outputs: s, cout (1 bit)
//	Function: s = lsb(a - b)
//	          cout = 1 if a >= b (no borrow)
//
var Subtractor = &evsim.PartSpec{
	Name:    "SUB",
	Inputs:  []string{pA, pB},
	Outputs: []string{pS, pCout},
	Widths:  map[string]int{pCout: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		cpa, err := s.Part(CPA, evsim.W{pA: s.Input(pA), pB: s.Input(pB), pCin: evsim.VDD(1)}, evsim.Bubble(pB))
		if err != nil {
			return nil, err
		}
		if err = s.SetOutput(pS, cpa.Pin(pS)); err != nil {
			return nil, err
		}
		return nil, s.SetOutput(pCout, cpa.Pin(pCout))
	},
}

// EqualityComparator compares two buses.
//
//	Inputs: a, b
//	Outputs: eq (1 bit)
//	Function: eq = a == b
//
var EqualityComparator = &evsim.PartSpec{
	Name:    "EQ",
	Inputs:  []string{pA, pB},
	Outputs: []string{"eq"},
	Widths:  map[string]int{"eq": 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		x, err := s.Part(Xnor, evsim.W{pA: s.Input(pA), pB: s.Input(pB)})
		if err != nil {
			return nil, err
		}
		bits := x.Pin(pY).Split()
		if len(bits) == 1 {
			return nil, s.SetOutput("eq", bits[0])
		}
		w := make(evsim.W, len(bits))
		for i, b := range bits {
			w[pn(pA, i)] = b
		}
		and, err := s.Part(AndN(len(bits)), w)
		if err != nil {
			return nil, err
		}
		return nil, s.SetOutput("eq", and.Pin(pY))
	},
}

type adder struct {
	A    *evsim.Bus `hw:"in"`
	B    *evsim.Bus `hw:"in"`
	Cin  *evsim.Bus `hw:"in,cin,1"`
	S    *evsim.Bus `hw:"out"`
	Cout *evsim.Bus `hw:"out,cout,1"`
}

func (a *adder) Update() error {
	n := uint(a.S.Len())
	s, c := bits.Add64(a.A.Uint64(), a.B.Uint64(), a.Cin.Uint64())
	if n < 64 {
		c = s >> n & 1
		s &= 1<<n - 1
	}
	if err := a.S.WriteUint64(s); err != nil {
		return err
	}
	return a.Cout.WriteUint64(c)
}

// Adder is a behavioral adder with the same interface as CPA. Ports are
// limited to 64 bits.
//
//	Inputs: a, b, cin (1 bit)
//	Outputs: s, cout (1 bit)
//	Function: s = lsb(a + b + cin)
//	          cout = carry out of a + b + cin
//
var Adder = evsim.MakePart((*adder)(nil))

// ALU is an adder/subtractor with tri-state output.
//
//	Inputs: a, b, sub (1 bit), e (1 bit)
//	Outputs: s, cout (1 bit)
//	Function: if e { s = sub ? a - b : a + b }
//
var ALU = &evsim.PartSpec{
	Name:    "ALU",
	Inputs:  []string{pA, pB, "sub", pE},
	Outputs: []string{pS, pCout},
	Widths:  map[string]int{"sub": 1, pE: 1, pCout: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		b := s.Input(pB)
		sel, err := s.Part(Mux, evsim.W{pS: s.Input("sub"), "d0": b, "d1": b}, evsim.Bubble("d1"))
		if err != nil {
			return nil, err
		}
		cpa, err := s.Part(CPA, evsim.W{pA: s.Input(pA), pB: sel.Pin(pY), pCin: s.Input("sub")})
		if err != nil {
			return nil, err
		}
		if err = s.SetOutput(pS, cpa.Pin(pS)); err != nil {
			return nil, err
		}
		if err = s.SetOutput(pCout, cpa.Pin(pCout)); err != nil {
			return nil, err
		}
		return nil, s.Tristate(pS, s.Input(pE))
	},
}
