// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// An UpdateFn computes the outputs of a leaf part from its inputs. It reads
// and writes the part's internal buses, as returned by the Socket methods.
//
type UpdateFn func() error

// A MakeFn builds the internals of a part. It is called exactly once when a
// part is created and should use the socket to get the internal side of the
// part's ports, mount sub-parts and assign output buses.
//
// Leaf parts return an UpdateFn, composite parts return nil.
//
// For example, a Not gate can be defined like this:
//
//	not := &evsim.PartSpec{
//		Name:    "NOT",
//		Inputs:  []string{"a"},
//		Outputs: []string{"y"},
//		Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
//			a, y := s.Input("a"), s.Output("y")
//			return func() error { return y.Write(a.Read().Not()) }, nil
//		}}
//
type MakeFn func(s *Socket) (UpdateFn, error)

// A PartSpec wraps a part specification (its blueprint).
//
// Parts are created by calling NewPart:
//
//	y := u.NewBus(4)
//	p, err := not.NewPart(u, evsim.W{"a": a, "y": y})
//
// Or, from the MakeFn of another part:
//
//	p, err := s.Part(not, evsim.W{"a": s.Input("in")})
//
type PartSpec struct {
	// Part name.
	Name string
	// Input port names. Must be distinct.
	Inputs []string
	// Output port names. Must be distinct.
	Outputs []string
	// Widths forces the width of some ports. Ports not listed here get
	// their width from the Size option or from the buses connected to
	// them.
	Widths map[string]int
	// Make function (see MakeFn).
	Make MakeFn
}

func (p *PartSpec) isInput(port string) bool  { return contains(p.Inputs, port) }
func (p *PartSpec) isOutput(port string) bool { return contains(p.Outputs, port) }
func (p *PartSpec) isPort(port string) bool   { return p.isInput(port) || p.isOutput(port) }

func (p *PartSpec) ports() []string {
	r := make([]string, 0, len(p.Inputs)+len(p.Outputs))
	r = append(r, p.Inputs...)
	return append(r, p.Outputs...)
}

func contains(l []string, s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// W maps a part's port names to the buses they connect to.
//
type W map[string]*Bus

type config struct {
	size     int
	bubbles  []string
	tristate []struct {
		port string
		en   *Bus
	}
}

// An Option configures a part being created with NewPart.
//
type Option func(*config)

// Size sets the default width of the part's ports.
//
func Size(n int) Option {
	return func(c *config) { c.size = n }
}

// Bubble inverts the signal going through the given ports.
//
func Bubble(ports ...string) Option {
	return func(c *config) { c.bubbles = append(c.bubbles, ports...) }
}

// Tristate gates port with the 1 bit enable line en: when en is 0, the port
// is in high impedance state and its output bus keeps its last value.
//
func Tristate(port string, en *Bus) Option {
	return func(c *config) {
		c.tristate = append(c.tristate, struct {
			port string
			en   *Bus
		}{port, en})
	}
}

// A Part is an instance of a PartSpec wired into a circuit. It owns one
// Terminal per port and the sub-parts created by its MakeFn.
//
type Part struct {
	spec     *PartSpec
	u        *Updater
	id       int
	widths   map[string]int
	terms    map[string]*Terminal
	fn       UpdateFn
	children []*Part
}

// NewPart creates a new part from the spec p.
//
// Ports missing from w are connected to new buses. The width of each port is
// taken, in order of precedence, from p.Widths, from the Size option, or from
// the width of the first bus in w connected to a port that is not listed in
// p.Widths.
//
// On error, the part and any sub-part already created are unsubscribed from
// the Updater.
//
func (p *PartSpec) NewPart(u *Updater, w W, opts ...Option) (*Part, error) {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	for k := range w {
		if !p.isPort(k) {
			return nil, errors.Wrapf(ErrUnknownPort, "%s.%s", p.Name, k)
		}
	}
	for k := range p.Widths {
		if !p.isPort(k) {
			return nil, errors.Wrapf(ErrUnknownPort, "%s.%s in port widths", p.Name, k)
		}
	}

	widths, err := p.portWidths(w, cfg.size)
	if err != nil {
		return nil, err
	}

	part := &Part{
		spec:   p,
		u:      u,
		id:     u.nextID(),
		widths: widths,
		terms:  make(map[string]*Terminal, len(widths)),
	}
	for _, n := range p.Inputs {
		ext, err := part.external(n, w[n])
		if err != nil {
			return nil, err
		}
		part.terms[n] = &Terminal{In: ext, Out: u.NewBus(widths[n]), Enable: VDD(1)}
	}
	for _, n := range p.Outputs {
		ext, err := part.external(n, w[n])
		if err != nil {
			return nil, err
		}
		part.terms[n] = &Terminal{In: u.NewBus(widths[n]), Out: ext, Enable: VDD(1)}
	}
	for _, n := range cfg.bubbles {
		t, err := part.Terminal(n)
		if err != nil {
			return nil, err
		}
		t.Bubble = true
	}
	for _, ts := range cfg.tristate {
		t, err := part.Terminal(ts.port)
		if err != nil {
			return nil, err
		}
		if err = t.SetEnable(ts.en); err != nil {
			return nil, errors.WithMessage(err, part.String()+"."+ts.port)
		}
	}

	if p.Make != nil {
		part.fn, err = p.Make(&Socket{p: part})
		if err != nil {
			part.detach()
			return nil, errors.WithMessage(err, "make "+p.Name)
		}
	}

	part.subscribe()
	if err = u.Evaluate(part); err != nil {
		part.detach()
		return nil, err
	}
	return part, nil
}

func (p *PartSpec) portWidths(w W, size int) (map[string]int, error) {
	ports := p.ports()
	widths := make(map[string]int, len(ports))
	infer := 0
	for _, n := range ports {
		if b := w[n]; b != nil && p.Widths[n] == 0 {
			infer = b.Len()
			break
		}
	}
	for _, n := range ports {
		switch {
		case p.Widths[n] > 0:
			widths[n] = p.Widths[n]
		case size > 0:
			widths[n] = size
		case infer > 0:
			widths[n] = infer
		default:
			return nil, errors.Wrapf(ErrMissingWidth, "%s.%s", p.Name, n)
		}
		if b := w[n]; b != nil && b.Len() != widths[n] {
			return nil, errors.Wrapf(widthError(widths[n], b.Len()), "%s.%s", p.Name, n)
		}
	}
	return widths, nil
}

// external checks or allocates the external bus for port n.
//
func (p *Part) external(n string, b *Bus) (*Bus, error) {
	if b == nil {
		return p.u.NewBus(p.widths[n]), nil
	}
	if b.u != nil && b.u != p.u {
		return nil, errors.Errorf("%s.%s: bus belongs to another Updater", p, n)
	}
	return b, nil
}

func (p *Part) triggers() []*Bus {
	var r []*Bus
	for _, n := range p.spec.ports() {
		r = append(r, p.terms[n].Triggers()...)
	}
	return r
}

func (p *Part) subscribe() {
	p.u.Subscribe(p, p.triggers()...)
}

// detach unsubscribes p and its sub-parts.
//
func (p *Part) detach() {
	for _, c := range p.children {
		c.detach()
	}
	p.u.Unsubscribe(p, p.triggers()...)
}

// Name returns the part's name.
//
func (p *Part) Name() string { return p.spec.Name }

// String returns the part name followed by its instance number.
//
func (p *Part) String() string { return p.spec.Name + "#" + strconv.Itoa(p.id) }

// Updater returns the Updater the part belongs to.
//
func (p *Part) Updater() *Updater { return p.u }

// Spec returns the part's spec.
//
func (p *Part) Spec() *PartSpec { return p.spec }

// Children returns the sub-parts created through the part's socket.
//
func (p *Part) Children() []*Part { return p.children }

// Width returns the width of the given port, or 0 if there is no such port.
//
func (p *Part) Width(port string) int { return p.widths[port] }

// Terminal returns the terminal for the given port.
//
func (p *Part) Terminal(port string) (*Terminal, error) {
	t, ok := p.terms[port]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPort, "%s.%s", p, port)
	}
	return t, nil
}

// Bus returns the external bus connected to the given port.
//
func (p *Part) Bus(port string) (*Bus, error) {
	t, err := p.Terminal(port)
	if err != nil {
		return nil, err
	}
	if p.spec.isInput(port) {
		return t.In, nil
	}
	return t.Out, nil
}

// Pin is like Bus but panics if port does not exist.
//
func (p *Part) Pin(port string) *Bus {
	b, err := p.Bus(port)
	if err != nil {
		panic(err)
	}
	return b
}

// Connect connects the given port to b, replacing the current connection.
// The part's subscriptions are updated accordingly and its outputs are
// recomputed.
//
// Connect is typically used to close loops, like the output of a counter
// feeding back into its own adder.
//
func (p *Part) Connect(port string, b *Bus) error {
	t, err := p.Terminal(port)
	if err != nil {
		return err
	}
	if b.Len() != p.widths[port] {
		return errors.Wrapf(widthError(p.widths[port], b.Len()), "connect %s.%s", p, port)
	}
	if b.u != nil && b.u != p.u {
		return errors.Errorf("connect %s.%s: bus belongs to another Updater", p, port)
	}
	p.u.Unsubscribe(p, p.triggers()...)
	if p.spec.isInput(port) {
		t.In = b
	} else {
		t.Out = b
	}
	p.subscribe()
	return p.u.Evaluate(p)
}

// SetTristate gates port with the 1 bit enable line en.
//
func (p *Part) SetTristate(port string, en *Bus) error {
	t, err := p.Terminal(port)
	if err != nil {
		return err
	}
	if en.u != nil && en.u != p.u {
		return errors.Errorf("tristate %s.%s: bus belongs to another Updater", p, port)
	}
	p.u.Unsubscribe(p, p.triggers()...)
	err = t.SetEnable(en)
	p.subscribe()
	if err != nil {
		return errors.WithMessage(err, p.String()+"."+port)
	}
	return p.u.Evaluate(p)
}

// Update propagates the part's input terminals, runs its UpdateFn if any,
// then propagates its output terminals. It is normally called by the
// Updater.
//
func (p *Part) Update() error {
	for _, n := range p.spec.Inputs {
		if err := p.terms[n].Propagate(); err != nil {
			return errors.WithMessage(err, p.String()+"."+n)
		}
	}
	if p.fn != nil {
		if err := p.fn(); err != nil {
			return err
		}
	}
	for _, n := range p.spec.Outputs {
		if err := p.terms[n].Propagate(); err != nil {
			return errors.WithMessage(err, p.String()+"."+n)
		}
	}
	return nil
}

// State returns the current signal on the external bus of every port.
//
func (p *Part) State() map[string]Signal {
	r := make(map[string]Signal, len(p.terms))
	for n := range p.terms {
		b, _ := p.Bus(n)
		r[n] = b.Read()
	}
	return r
}

// Inputs returns the part's input port names.
//
func (p *Part) Inputs() []string { return append([]string(nil), p.spec.Inputs...) }

// Outputs returns the part's output port names.
//
func (p *Part) Outputs() []string { return append([]string(nil), p.spec.Outputs...) }
