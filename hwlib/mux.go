// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/evsim"
	"github.com/pkg/errors"
)

// Mux is a 2 to 1 multiplexer.
//
//	Inputs: s (1 bit), d0, d1
//	Outputs: y
//	Function: if s == 0 { y = d0 } else { y = d1 }
//
var Mux = &evsim.PartSpec{
	Name:    "MUX",
	Inputs:  []string{pS, "d0", "d1"},
	Outputs: []string{pY},
	Widths:  map[string]int{pS: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		sel, err := s.Input(pS).Branch(s.Width(pY))
		if err != nil {
			return nil, err
		}
		d0, err := s.Part(And, evsim.W{pA: s.Input("d0"), pB: sel}, evsim.Bubble(pB))
		if err != nil {
			return nil, err
		}
		d1, err := s.Part(And, evsim.W{pA: s.Input("d1"), pB: sel})
		if err != nil {
			return nil, err
		}
		or, err := s.Part(Or, evsim.W{pA: d0.Pin(pY), pB: d1.Pin(pY)})
		if err != nil {
			return nil, err
		}
		return nil, s.SetOutput(pY, or.Pin(pY))
	},
}

// MuxN returns a multiplexer with sel select lines, built as a tree of 2 to
// 1 multiplexers.
//
//	Inputs: s (sel bits), d0, d1, ..., d(2^sel-1)
//	Outputs: y
//	Function: y = d[s]
//
func MuxN(sel int) *evsim.PartSpec {
	if sel < 1 || sel > 16 {
		panic(errors.Errorf("MuxN: invalid select width %d", sel))
	}
	ds := pns(pD, 1<<uint(sel))
	return &evsim.PartSpec{
		Name:    "MUX" + strconv.Itoa(len(ds)),
		Inputs:  append([]string{pS}, ds...),
		Outputs: []string{pY},
		Widths:  map[string]int{pS: sel},
		Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
			lines := make([]*evsim.Bus, len(ds))
			for i, d := range ds {
				lines[i] = s.Input(d)
			}
			for bit, sb := range s.Input(pS).Split() {
				next := make([]*evsim.Bus, 0, len(lines)/2)
				for i := 0; i < len(lines); i += 2 {
					m, err := s.Part(Mux, evsim.W{pS: sb, "d0": lines[i], "d1": lines[i+1]})
					if err != nil {
						return nil, errors.WithMessage(err, "level "+strconv.Itoa(bit))
					}
					next = append(next, m.Pin(pY))
				}
				lines = next
			}
			return nil, s.SetOutput(pY, lines[0])
		},
	}
}

// Decoder returns an n to 2^n decoder with enable line.
//
//	Inputs: a (n bits), e (1 bit)
//	Outputs: y0, y1, ..., y(2^n-1) (1 bit each)
//	Function: yi = e && a == i
//
func Decoder(n int) *evsim.PartSpec {
	if n < 1 || n > 16 {
		panic(errors.Errorf("Decoder: invalid input width %d", n))
	}
	ys := pns(pY, 1<<uint(n))
	widths := map[string]int{pA: n, pE: 1}
	for _, y := range ys {
		widths[y] = 1
	}
	return &evsim.PartSpec{
		Name:    "DEC" + strconv.Itoa(n),
		Inputs:  []string{pA, pE},
		Outputs: ys,
		Widths:  widths,
		Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
			bits := s.Input(pA).Split()
			for i, y := range ys {
				line := s.Input(pE)
				for j, b := range bits {
					var opts []evsim.Option
					if i&(1<<uint(j)) == 0 {
						opts = append(opts, evsim.Bubble(pB))
					}
					g, err := s.Part(And, evsim.W{pA: line, pB: b}, opts...)
					if err != nil {
						return nil, err
					}
					line = g.Pin(pY)
				}
				if err := s.SetOutput(y, line); err != nil {
					return nil, err
				}
			}
			return nil, nil
		},
	}
}
