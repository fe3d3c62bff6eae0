// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwio

import (
	"fmt"

	"github.com/db47h/evsim"
	"github.com/pkg/errors"
)

// A Mismatch reports an output that did not match the expected value.
//
type Mismatch struct {
	Row  int // row index in Vectors.Rows
	Line int // line number of the row
	Port string
	Want uint64
	Got  uint64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("line %d: %s = %#x, want %#x", m.Line, m.Port, m.Got, m.Want)
}

// Check applies test vectors to part p and returns the outputs that did not
// match.
//
// For each row, all the input values of the row are written before the
// Updater runs, so that the part sees them as a single change. Output values
// are read once the circuit has settled.
//
func Check(p *evsim.Part, v *Vectors) ([]Mismatch, error) {
	for _, l := range v.Labels {
		if _, err := p.Bus(l); err != nil {
			return nil, err
		}
	}
	var ms []Mismatch
	for i, row := range v.Rows {
		if err := Apply(p, row); err != nil {
			return ms, errors.WithMessage(err, fmt.Sprintf("line %d", v.Lines[i]))
		}
		for _, o := range p.Outputs() {
			want, ok := row[o]
			if !ok {
				continue
			}
			if got := p.Pin(o).Uint64(); got != want {
				ms = append(ms, Mismatch{Row: i, Line: v.Lines[i], Port: o, Want: want, Got: got})
			}
		}
	}
	return ms, nil
}

// Apply writes the values in row to the matching inputs of p as a single
// change, then runs the Updater until the circuit settles. Values for
// outputs or unknown ports are ignored.
//
func Apply(p *evsim.Part, row map[string]uint64) error {
	u := p.Updater()
	auto := u.AutoRun
	u.AutoRun = false
	defer func() { u.AutoRun = auto }()

	for _, n := range p.Inputs() {
		x, ok := row[n]
		if !ok {
			continue
		}
		b := p.Pin(n)
		if w := uint(b.Len()); w < 64 && x>>w != 0 {
			return errors.Wrapf(evsim.ErrWidthMismatch, "value %#x does not fit in %d bits input %q", x, w, n)
		}
		if err := b.WriteUint64(x); err != nil {
			return errors.WithMessage(err, "input "+n)
		}
	}
	return u.Run()
}
