// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/evsim"
)

// Probe returns a part that calls f with the signal on its input once when
// the part is created, then for every event on any of its input wires.
//
//	Inputs: a
//	Function: f(a)
//
func Probe(f func(evsim.Signal)) *evsim.PartSpec {
	return &evsim.PartSpec{
		Name:   "PROBE",
		Inputs: []string{pA},
		Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
			a := s.Input(pA)
			return func() error {
				f(a.Read())
				return nil
			}, nil
		},
	}
}
