// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"github.com/pkg/errors"
)

// A Bus is an ordered set of wires. Wire 0 carries the least significant bit
// of the bus signal.
//
// Buses are views: slicing, branching, concatenating or extending a bus
// returns a new Bus that shares wires with its source. Writing through any of
// them is visible through all the others.
//
type Bus struct {
	u  *Updater // nil for constant buses
	ws []int
}

// GND returns a constant width bits bus tied to 0.
//
func GND(width int) *Bus { return constBus(wireGND, width) }

// VDD returns a constant width bits bus tied to 1.
//
func VDD(width int) *Bus { return constBus(wireVDD, width) }

func constBus(w, width int) *Bus {
	if width <= 0 {
		panic(errors.Errorf("invalid bus width %d", width))
	}
	ws := make([]int, width)
	for i := range ws {
		ws[i] = w
	}
	return &Bus{ws: ws}
}

// Len returns the bus width.
//
func (b *Bus) Len() int { return len(b.ws) }

// Updater returns the Updater that owns b. It returns nil for buses that
// only contain constant wires.
//
func (b *Bus) Updater() *Updater { return b.u }

// IsConstant returns true if any of b's wires is tied to a constant.
//
func (b *Bus) IsConstant() bool {
	for _, w := range b.ws {
		if w < wireCount {
			return true
		}
	}
	return false
}

// Read returns the current signal on b.
//
func (b *Bus) Read() Signal {
	s := Signal{n: len(b.ws), w: make([]uint64, words(len(b.ws)))}
	for i, w := range b.ws {
		if b.u.get(w) {
			s.w[i/64] |= 1 << uint(i%64)
		}
	}
	return s
}

// Uint64 returns the low 64 bits of b's current signal.
//
func (b *Bus) Uint64() uint64 {
	var v uint64
	for i, w := range b.ws {
		if i >= 64 {
			break
		}
		if b.u.get(w) {
			v |= 1 << uint(i)
		}
	}
	return v
}

// Write sets the state of b's wires to s, wire 0 first. Each wire that
// actually changes state queues its own event.
//
// When called outside of a circuit update and the Updater's AutoRun field is
// set, Write runs the Updater until the circuit settles and returns any error
// from Run.
//
func (b *Bus) Write(s Signal) error {
	if s.n != len(b.ws) {
		return errors.Wrap(widthError(len(b.ws), s.n), "bus write")
	}
	if b.IsConstant() {
		return errors.Wrapf(ErrImmutableWrite, "write %v", s)
	}
	for i, w := range b.ws {
		b.u.set(w, s.w[i/64]&(1<<uint(i%64)) != 0)
	}
	return b.u.kick()
}

// WriteUint64 writes the low order bits of v to b.
//
func (b *Bus) WriteUint64(v uint64) error {
	return b.Write(NewSignal(v, len(b.ws)))
}

// Set sets all wires of b to 1.
//
func (b *Bus) Set() error { return b.Write(NewSignal(0, len(b.ws)).Not()) }

// Reset sets all wires of b to 0.
//
func (b *Bus) Reset() error { return b.Write(NewSignal(0, len(b.ws))) }

// Pulse sets then resets all wires of b, letting the circuit settle in
// between.
//
func (b *Bus) Pulse() error {
	if err := b.Set(); err != nil {
		return err
	}
	return b.Reset()
}

// Equal returns true if b and o currently carry the same signal. Since bus
// states change over time, so does the result of Equal.
//
func (b *Bus) Equal(o *Bus) bool {
	return b.Read().Equal(o.Read())
}

// String returns the current signal on b.
//
func (b *Bus) String() string {
	return b.Read().String()
}

// Slice returns a bus made of wires lo to hi-1 of b.
//
func (b *Bus) Slice(lo, hi int) (*Bus, error) {
	if lo < 0 || hi > len(b.ws) || lo >= hi {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "slice [%d:%d] of %d bits bus", lo, hi, len(b.ws))
	}
	return &Bus{u: b.u, ws: b.ws[lo:hi:hi]}, nil
}

// Index returns a 1 bit bus made of wire i of b.
//
func (b *Bus) Index(i int) (*Bus, error) {
	return b.Slice(i, i+1)
}

// MSB returns the 1 bit bus made of b's most significant wire.
//
func (b *Bus) MSB() *Bus {
	n := len(b.ws)
	return &Bus{u: b.u, ws: b.ws[n-1 : n : n]}
}

// Split returns the 1 bit buses that make up b, least significant first.
//
func (b *Bus) Split() []*Bus {
	r := make([]*Bus, len(b.ws))
	for i := range b.ws {
		r[i] = &Bus{u: b.u, ws: b.ws[i : i+1 : i+1]}
	}
	return r
}

// Concat returns a new bus where b is the most significant part and o the
// least significant one:
//
//	a.Concat(b).Read() == a<<b.Len() | b
//
// Concat panics if b and o belong to different Updaters.
//
func (b *Bus) Concat(o *Bus) *Bus {
	return Merge(o, b)
}

// Merge concatenates the given buses into a single one. buses[0] is the
// least significant part.
//
// Merge panics if no bus is given or if the buses belong to different
// Updaters.
//
func Merge(buses ...*Bus) *Bus {
	if len(buses) == 0 {
		panic(errors.New("merge of zero buses"))
	}
	var u *Updater
	n := 0
	for _, b := range buses {
		n += len(b.ws)
		switch {
		case b.u == nil:
		case u == nil:
			u = b.u
		case u != b.u:
			panic("cannot merge buses from different Updaters")
		}
	}
	ws := make([]int, 0, n)
	for _, b := range buses {
		ws = append(ws, b.ws...)
	}
	return &Bus{u: u, ws: ws}
}

// Branch fans out a 1 bit bus to n parallel wires that all track the same
// source wire.
//
func (b *Bus) Branch(n int) (*Bus, error) {
	if len(b.ws) != 1 {
		return nil, errors.Wrap(widthError(1, len(b.ws)), "branch")
	}
	if n <= 0 {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "branch to %d wires", n)
	}
	ws := make([]int, n)
	for i := range ws {
		ws[i] = b.ws[0]
	}
	return &Bus{u: b.u, ws: ws}, nil
}

// ExtendMode selects how Extend pads a bus.
//
type ExtendMode int

// Extend modes.
const (
	ZeroExtend ExtendMode = iota // pad with constant 0 wires
	SignExtend                   // pad with the most significant wire
	OneExtend                    // pad with constant 1 wires
)

// Extend returns a width bits bus made of b padded on the most significant
// side according to mode.
//
func (b *Bus) Extend(mode ExtendMode, width int) (*Bus, error) {
	if width < len(b.ws) {
		return nil, errors.Wrapf(ErrWidthMismatch, "cannot extend %d bits bus to %d bits", len(b.ws), width)
	}
	if width == len(b.ws) {
		return b, nil
	}
	var pad int
	switch mode {
	case ZeroExtend:
		pad = wireGND
	case OneExtend:
		pad = wireVDD
	case SignExtend:
		pad = b.ws[len(b.ws)-1]
	default:
		return nil, errors.Errorf("unknown extend mode %d", mode)
	}
	ws := make([]int, width)
	copy(ws, b.ws)
	for i := len(b.ws); i < width; i++ {
		ws[i] = pad
	}
	return &Bus{u: b.u, ws: ws}, nil
}
