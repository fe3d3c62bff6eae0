// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable parts for evsim.
//
// Unless stated otherwise, the ports of a part have the same width, set
// with the evsim.Size option or inferred from the buses it is connected to.
// 1 bit control lines (select, clock, enable, ...) are always 1 bit wide.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package hwlib

import (
	"strconv"

	"github.com/db47h/evsim"
	"github.com/pkg/errors"
)

// common port names
const (
	pA    = "a"
	pB    = "b"
	pY    = "y"
	pS    = "s"
	pD    = "d"
	pQ    = "q"
	pE    = "e"
	pClk  = "clk"
	pCin  = "cin"
	pCout = "cout"
)

// port name with index
func pn(n string, i int) string { return n + strconv.Itoa(i) }

// list of indexed port names
func pns(n string, count int) []string {
	r := make([]string, count)
	for i := range r {
		r[i] = pn(n, i)
	}
	return r
}

type gate func(a, b evsim.Signal) (evsim.Signal, error)

func (g gate) make(invert bool) evsim.MakeFn {
	return func(s *evsim.Socket) (evsim.UpdateFn, error) {
		a, b, y := s.Input(pA), s.Input(pB), s.Output(pY)
		return func() error {
			r, err := g(a.Read(), b.Read())
			if err != nil {
				return err
			}
			if invert {
				r = r.Not()
			}
			return y.Write(r)
		}, nil
	}
}

func newGate(name string, fn gate, invert bool) *evsim.PartSpec {
	return &evsim.PartSpec{
		Name:    name,
		Inputs:  []string{pA, pB},
		Outputs: []string{pY},
		Make:    fn.make(invert),
	}
}

// 2 input gates.
//
//	Inputs: a, b
//	Outputs: y
//	Function: y = a OP b, bitwise
//
var (
	And  = newGate("AND", evsim.And, false)
	Or   = newGate("OR", evsim.Or, false)
	Xor  = newGate("XOR", evsim.Xor, false)
	Nand = newGate("NAND", evsim.And, true)
	Nor  = newGate("NOR", evsim.Or, true)
	Xnor = newGate("XNOR", evsim.Xor, true)
)

func unary(name string, invert bool) *evsim.PartSpec {
	return &evsim.PartSpec{
		Name:    name,
		Inputs:  []string{pA},
		Outputs: []string{pY},
		Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
			a, y := s.Input(pA), s.Output(pY)
			return func() error {
				r := a.Read()
				if invert {
					r = r.Not()
				}
				return y.Write(r)
			}, nil
		},
	}
}

// Not is a NOT gate.
//
//	Inputs: a
//	Outputs: y
//	Function: y = !a
//
var Not = unary("NOT", true)

// Buffer copies its input to its output. Combined with the evsim.Tristate
// option, it is a tri-state bus driver.
//
//	Inputs: a
//	Outputs: y
//	Function: y = a
//
var Buffer = unary("BUF", false)

func gateN(name string, g *evsim.PartSpec, n int) *evsim.PartSpec {
	if n < 2 {
		panic(errors.Errorf("%s: invalid input count %d", name, n))
	}
	ins := pns(pA, n)
	return &evsim.PartSpec{
		Name:    name + strconv.Itoa(n),
		Inputs:  ins,
		Outputs: []string{pY},
		Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
			y := s.Input(ins[0])
			for _, in := range ins[1:] {
				p, err := s.Part(g, evsim.W{pA: y, pB: s.Input(in)})
				if err != nil {
					return nil, err
				}
				y = p.Pin(pY)
			}
			return nil, s.SetOutput(pY, y)
		},
	}
}

// AndN returns an n inputs AND gate built from a chain of 2 inputs gates.
//
//	Inputs: a0, a1, ..., a(n-1)
//	Outputs: y
//	Function: y = a0 & a1 & ... & a(n-1)
//
func AndN(n int) *evsim.PartSpec { return gateN("AND", And, n) }

// OrN returns an n inputs OR gate.
//
//	Inputs: a0, a1, ..., a(n-1)
//	Outputs: y
//	Function: y = a0 | a1 | ... | a(n-1)
//
func OrN(n int) *evsim.PartSpec { return gateN("OR", Or, n) }

// XorN returns an n inputs XOR gate.
//
//	Inputs: a0, a1, ..., a(n-1)
//	Outputs: y
//	Function: y = a0 ^ a1 ^ ... ^ a(n-1)
//
func XorN(n int) *evsim.PartSpec { return gateN("XOR", Xor, n) }
