// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"github.com/pkg/errors"
)

// A Socket gives a MakeFn access to the internal side of a part's ports.
//
type Socket struct {
	p *Part
}

// Updater returns the Updater the part is being built in.
//
func (s *Socket) Updater() *Updater { return s.p.u }

// NewBus allocates a new internal bus.
//
func (s *Socket) NewBus(width int) *Bus { return s.p.u.NewBus(width) }

// Width returns the width of the given port.
// This function panics if the port does not exist.
//
func (s *Socket) Width(port string) int {
	w, ok := s.p.widths[port]
	if !ok {
		panic(errors.Wrapf(ErrUnknownPort, "%s.%s", s.p, port))
	}
	return w
}

// Input returns the internal bus of the given input port.
// This function panics if the input does not exist.
//
func (s *Socket) Input(port string) *Bus {
	if !s.p.spec.isInput(port) {
		panic(errors.Wrapf(ErrUnknownPort, "input %s.%s", s.p, port))
	}
	return s.p.terms[port].Out
}

// Output returns the internal bus of the given output port. Unless changed
// with SetOutput, this is a new bus allocated when the part was created.
// This function panics if the output does not exist.
//
func (s *Socket) Output(port string) *Bus {
	if !s.p.spec.isOutput(port) {
		panic(errors.Wrapf(ErrUnknownPort, "output %s.%s", s.p, port))
	}
	return s.p.terms[port].In
}

// SetOutput sets the internal bus of the given output port. This is how
// composite parts route the outputs of their sub-parts to their own outputs.
//
func (s *Socket) SetOutput(port string, b *Bus) error {
	if !s.p.spec.isOutput(port) {
		return errors.Wrapf(ErrUnknownPort, "output %s.%s", s.p, port)
	}
	if b.Len() != s.p.widths[port] {
		return errors.Wrapf(widthError(s.p.widths[port], b.Len()), "%s.%s", s.p, port)
	}
	s.p.terms[port].In = b
	return nil
}

// Bubble inverts the signal going through the given port.
//
func (s *Socket) Bubble(port string) error {
	t, err := s.p.Terminal(port)
	if err != nil {
		return err
	}
	t.Bubble = true
	return nil
}

// Tristate gates the given port with the 1 bit enable line en.
//
func (s *Socket) Tristate(port string, en *Bus) error {
	t, err := s.p.Terminal(port)
	if err != nil {
		return err
	}
	return errors.WithMessage(t.SetEnable(en), s.p.String()+"."+port)
}

// Part creates a sub-part owned by the part being built.
//
func (s *Socket) Part(spec *PartSpec, w W, opts ...Option) (*Part, error) {
	c, err := spec.NewPart(s.p.u, w, opts...)
	if err != nil {
		return nil, err
	}
	s.p.children = append(s.p.children, c)
	return c, nil
}
