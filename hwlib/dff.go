// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/evsim"
)

const (
	pQn    = "qn"
	pReset = "reset"
	pClr   = "clr"
	pL     = "l"
)

// SRLatch is a set/reset latch built from two cross-coupled NOR gates. It
// powers up with q = 0.
//
//	Inputs: s, r
//	Outputs: q, qn
//	Function: s = 1: q = 1, qn = 0
//	          r = 1: q = 0, qn = 1
//	          s = r = 0: q and qn hold their state
//	          s = r = 1: undefined
//
var SRLatch = &evsim.PartSpec{
	Name:    "SR",
	Inputs:  []string{pS, "r"},
	Outputs: []string{pQ, pQn},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		qn, err := s.Part(Or, evsim.W{pA: s.Input(pS)}, evsim.Bubble(pY))
		if err != nil {
			return nil, err
		}
		q, err := s.Part(Or, evsim.W{pA: s.Input("r"), pB: qn.Pin(pY)}, evsim.Bubble(pY))
		if err != nil {
			return nil, err
		}
		if err = qn.Connect(pB, q.Pin(pY)); err != nil {
			return nil, err
		}
		if err = s.SetOutput(pQ, q.Pin(pY)); err != nil {
			return nil, err
		}
		return nil, s.SetOutput(pQn, qn.Pin(pY))
	},
}

// DLatch is a level triggered D latch.
//
//	Inputs: d, clk (1 bit)
//	Outputs: q
//	Function: if clk == 1 { q = d }
//
var DLatch = &evsim.PartSpec{
	Name:    "DLATCH",
	Inputs:  []string{pD, pClk},
	Outputs: []string{pQ},
	Widths:  map[string]int{pClk: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		clk, err := s.Input(pClk).Branch(s.Width(pD))
		if err != nil {
			return nil, err
		}
		d := s.Input(pD)
		reset, err := s.Part(And, evsim.W{pA: clk, pB: d}, evsim.Bubble(pB))
		if err != nil {
			return nil, err
		}
		set, err := s.Part(And, evsim.W{pA: clk, pB: d})
		if err != nil {
			return nil, err
		}
		sr, err := s.Part(SRLatch, evsim.W{pS: set.Pin(pY), "r": reset.Pin(pY)})
		if err != nil {
			return nil, err
		}
		return nil, s.SetOutput(pQ, sr.Pin(pQ))
	},
}

// DFlipFlop is a master-slave D flip-flop, triggered on the rising edge of
// clk.
//
//	Inputs: d, clk (1 bit)
//	Outputs: q
//	Function: q(t) = d(t-1) // where t is the current clock cycle.
//
var DFlipFlop = &evsim.PartSpec{
	Name:    "DFF",
	Inputs:  []string{pD, pClk},
	Outputs: []string{pQ},
	Widths:  map[string]int{pClk: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		master, err := s.Part(DLatch, evsim.W{pD: s.Input(pD), pClk: s.Input(pClk)}, evsim.Bubble(pClk))
		if err != nil {
			return nil, err
		}
		slave, err := s.Part(DLatch, evsim.W{pD: master.Pin(pQ), pClk: s.Input(pClk)})
		if err != nil {
			return nil, err
		}
		return nil, s.SetOutput(pQ, slave.Pin(pQ))
	},
}

// ResetFlipFlop is a D flip-flop with synchronous reset.
//
//	Inputs: d, clk (1 bit), reset (1 bit)
//	Outputs: q
//	Function: on clk rising edge: q = reset ? 0 : d
//
var ResetFlipFlop = &evsim.PartSpec{
	Name:    "RDFF",
	Inputs:  []string{pD, pClk, pReset},
	Outputs: []string{pQ},
	Widths:  map[string]int{pClk: 1, pReset: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		reset, err := s.Input(pReset).Branch(s.Width(pD))
		if err != nil {
			return nil, err
		}
		gate, err := s.Part(And, evsim.W{pA: s.Input(pD), pB: reset}, evsim.Bubble(pB))
		if err != nil {
			return nil, err
		}
		ff, err := s.Part(DFlipFlop, evsim.W{pD: gate.Pin(pY), pClk: s.Input(pClk)})
		if err != nil {
			return nil, err
		}
		return nil, s.SetOutput(pQ, ff.Pin(pQ))
	},
}

// ELFlipFlop is a D flip-flop with load enable and tri-state output. It is
// the typical building block of a register connected to a shared bus.
//
//	Inputs: d, clk (1 bit), l (1 bit), e (1 bit)
//	Outputs: q
//	Function: on clk rising edge: if l == 1 { state = d }
//	          if e == 1 { q = state }
//
var ELFlipFlop = &evsim.PartSpec{
	Name:    "ELDFF",
	Inputs:  []string{pD, pClk, pL, pE},
	Outputs: []string{pQ},
	Widths:  map[string]int{pClk: 1, pL: 1, pE: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		mux, err := s.Part(Mux, evsim.W{pS: s.Input(pL), "d1": s.Input(pD)})
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
		return nil, s.Tristate(pQ, s.Input(pE))
	},
}

// Counter is a binary counter with synchronous reset.
//
//	Inputs: clk (1 bit), reset (1 bit)
//	Outputs: q
//	Function: on clk rising edge: q = reset ? 0 : q + 1
//
var Counter = &evsim.PartSpec{
	Name:    "COUNTER",
	Inputs:  []string{pClk, pReset},
	Outputs: []string{pQ},
	Widths:  map[string]int{pClk: 1, pReset: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		n := s.Width(pQ)
		ff, err := s.Part(ResetFlipFlop, evsim.W{pClk: s.Input(pClk), pReset: s.Input(pReset)}, evsim.Size(n))
		if err != nil {
			return nil, err
		}
		inc, err := s.Part(CPA, evsim.W{pA: ff.Pin(pQ), pB: evsim.GND(n), pCin: evsim.VDD(1)})
		if err != nil {
			return nil, err
		}
		if err = ff.Connect(pD, inc.Pin(pS)); err != nil {
			return nil, err
		}
		return nil, s.SetOutput(pQ, ff.Pin(pQ))
	},
}

// SettableCounter is a binary counter that can be loaded with a value, like
// a program counter. clr has precedence over l.
//
//	Inputs: d, l (1 bit), clr (1 bit), clk (1 bit)
//	Outputs: q
//	Function: on clk rising edge: q = clr ? 0 : l ? d : q + 1
//
var SettableCounter = &evsim.PartSpec{
	Name:    "PC",
	Inputs:  []string{pD, pL, pClr, pClk},
	Outputs: []string{pQ},
	Widths:  map[string]int{pL: 1, pClr: 1, pClk: 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		n := s.Width(pD)
		mux, err := s.Part(Mux, evsim.W{pS: s.Input(pL), "d1": s.Input(pD)})
		if err != nil {
			return nil, err
		}
		ff, err := s.Part(ResetFlipFlop, evsim.W{pD: mux.Pin(pY), pClk: s.Input(pClk), pReset: s.Input(pClr)})
		if err != nil {
			return nil, err
		}
		inc, err := s.Part(CPA, evsim.W{pA: ff.Pin(pQ), pB: evsim.GND(n), pCin: evsim.VDD(1)})
		if err != nil {
			return nil, err
		}
		if err = mux.Connect("d0", inc.Pin(pS)); err != nil {
			return nil, err
		}
		return nil, s.SetOutput(pQ, ff.Pin(pQ))
	},
}

var ringStates = pns("t", 6)

// RingCounter generates the six timing states of a simple CPU control
// sequencer: exactly one of t0..t5 is set at any time and the active output
// moves to the next one on each clock rising edge, wrapping from t5 to t0.
// The counter powers up in state t0; clr forces it back to t0 on the next
// rising edge.
//
//	Inputs: clk (1 bit), clr (1 bit)
//	Outputs: t0, t1, t2, t3, t4, t5 (1 bit each)
//
var RingCounter = &evsim.PartSpec{
	Name:    "RING",
	Inputs:  []string{pClk, pClr},
	Outputs: ringStates,
	Widths:  map[string]int{pClk: 1, pClr: 1, "t0": 1, "t1": 1, "t2": 1, "t3": 1, "t4": 1, "t5": 1},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		cnt, err := s.Part(Counter, evsim.W{pClk: s.Input(pClk)}, evsim.Size(3))
		if err != nil {
			return nil, err
		}
		dec, err := s.Part(Decoder(3), evsim.W{pA: cnt.Pin(pQ), pE: evsim.VDD(1)})
		if err != nil {
			return nil, err
		}
		// restart after t5
		clr, err := s.Part(Or, evsim.W{pA: s.Input(pClr), pB: dec.Pin("y5")})
		if err != nil {
			return nil, err
		}
		if err = cnt.Connect(pReset, clr.Pin(pY)); err != nil {
			return nil, err
		}
		for i, t := range ringStates {
			if err = s.SetOutput(t, dec.Pin(pn(pY, i))); err != nil {
				return nil, err
			}
		}
		return nil, nil
	},
}
