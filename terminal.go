// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"github.com/pkg/errors"
)

// A Terminal connects a bus inside a part to a bus outside of it. For input
// ports, In is the external bus and Out the internal one. For output ports it
// is the other way around.
//
// When Bubble is set, the terminal inverts the signal. When the Enable bus
// does not read 1, the terminal is in high impedance state: Propagate does
// not touch Out, which keeps its last value.
//
type Terminal struct {
	In     *Bus
	Out    *Bus
	Bubble bool
	Enable *Bus
}

// NewTerminal returns a new terminal that propagates in to out. Both buses
// must have the same width.
//
func NewTerminal(in, out *Bus) (*Terminal, error) {
	if in.Len() != out.Len() {
		return nil, errors.Wrap(widthError(in.Len(), out.Len()), "terminal")
	}
	return &Terminal{In: in, Out: out, Enable: VDD(1)}, nil
}

// Enabled returns true if the terminal's enable line reads 1.
//
func (t *Terminal) Enabled() bool {
	return t.Enable == nil || t.Enable.u.get(t.Enable.ws[0])
}

// SetEnable sets the terminal's enable line. en must be 1 bit wide.
//
func (t *Terminal) SetEnable(en *Bus) error {
	if en.Len() != 1 {
		return errors.Wrap(widthError(1, en.Len()), "enable line")
	}
	t.Enable = en
	return nil
}

// Propagate writes the signal on In to Out, inverted if Bubble is set, if
// the terminal is enabled.
//
func (t *Terminal) Propagate() error {
	if !t.Enabled() {
		return nil
	}
	s := t.In.Read()
	if t.Bubble {
		s = s.Not()
	}
	return t.Out.Write(s)
}

// Triggers returns the buses whose changes must cause a call to Propagate:
// In and Enable.
//
func (t *Terminal) Triggers() []*Bus {
	if t.Enable == nil {
		return []*Bus{t.In}
	}
	return []*Bus{t.In, t.Enable}
}
