// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/hwio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// max number of input bits for exhaustive testing.
const maxExhaustive = 12

// Sweep drives the given inputs of p through all their possible values and
// returns the state of p's outputs for each of them. The first input is the
// most significant one, so that row i of the result is for the inputs set to
// the bits of i, in the order they were given.
//
// Inputs not listed keep their current value. The total width of the inputs
// must not exceed 16 bits.
//
func Sweep(t testing.TB, p *evsim.Part, inputs ...string) []map[string]uint64 {
	t.Helper()
	total := 0
	for _, n := range inputs {
		total += p.Width(n)
	}
	require.NotZero(t, total, "no inputs to sweep")
	require.True(t, total <= 16, "too many input bits to sweep: %d", total)

	rows := make([]map[string]uint64, 0, 1<<uint(total))
	for i := uint64(0); i < 1<<uint(total); i++ {
		row := split(p, inputs, i)
		require.NoError(t, hwio.Apply(p, row))
		out := make(map[string]uint64, len(p.Outputs()))
		for _, o := range p.Outputs() {
			out[o] = p.Pin(o).Uint64()
		}
		rows = append(rows, out)
	}
	return rows
}

// split distributes the bits of v to the given inputs, the last input
// getting the least significant bits.
//
func split(p *evsim.Part, inputs []string, v uint64) map[string]uint64 {
	row := make(map[string]uint64, len(inputs))
	for i := len(inputs) - 1; i >= 0; i-- {
		w := p.Width(inputs[i])
		row[inputs[i]] = v & mask(w)
		v >>= uint(w)
	}
	return row
}

func mask(w int) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(w) - 1
}

func randRow(r *rand.Rand, p *evsim.Part) map[string]uint64 {
	row := make(map[string]uint64)
	for _, n := range p.Inputs() {
		row[n] = r.Uint64() & mask(p.Width(n))
	}
	return row
}

// ComparePart takes two part specs and compares their outputs given the same
// inputs. Both parts must have the same Input/Output interface. size is the
// default width of the parts' ports.
//
// Inputs are tested exhaustively if they add up to no more than 12 bits.
// Otherwise, all 0, all 1 and 4096 random input sets are tested.
//
func ComparePart(t *testing.T, size int, spec1, spec2 *evsim.PartSpec) {
	t.Helper()

	require.Equal(t, spec1.Inputs, spec2.Inputs, "inputs")
	require.Equal(t, spec1.Outputs, spec2.Outputs, "outputs")

	u := evsim.NewUpdater()
	p1, err := spec1.NewPart(u, nil, evsim.Size(size))
	require.NoError(t, err)
	w := make(evsim.W, len(spec1.Inputs))
	for _, n := range spec1.Inputs {
		w[n] = p1.Pin(n)
	}
	p2, err := spec2.NewPart(u, w, evsim.Size(size))
	require.NoError(t, err)
	for _, n := range spec1.Outputs {
		require.Equal(t, p1.Width(n), p2.Width(n), "width of output %q", n)
	}

	total := 0
	for _, n := range spec1.Inputs {
		total += p1.Width(n)
	}

	check := func(row map[string]uint64) {
		require.NoError(t, hwio.Apply(p1, row))
		for _, o := range spec1.Outputs {
			v1, v2 := p1.Pin(o).Read(), p2.Pin(o).Read()
			if !v1.Equal(v2) {
				t.Fatalf("%s: %s = %v, %s: %s = %v for %s",
					spec1.Name, o, v1, spec2.Name, o, v2, fmtRow(spec1.Inputs, row))
			}
		}
	}

	start := time.Now()
	n := 0
	if total <= maxExhaustive {
		for i := uint64(0); i < 1<<uint(total); i++ {
			check(split(p1, spec1.Inputs, i))
			n++
		}
	} else {
		all0 := make(map[string]uint64)
		all1 := make(map[string]uint64)
		for _, in := range spec1.Inputs {
			all0[in] = 0
			all1[in] = mask(p1.Width(in))
		}
		check(all0)
		check(all1)
		seed := time.Now().UnixNano()
		r := rand.New(rand.NewSource(seed))
		for i := 0; i < 1<<maxExhaustive; i++ {
			check(randRow(r, p1))
		}
		n = 2 + 1<<maxExhaustive
		t.Logf("random seed %d", seed)
	}
	t.Logf("%d input sets. %d wires, %d events in %v", n, u.Wires(), u.Events(), time.Since(start))
}

// RunVectors applies the test vectors v to p and reports every mismatch.
//
func RunVectors(t testing.TB, p *evsim.Part, v *hwio.Vectors) {
	t.Helper()
	ms, err := hwio.Check(p, v)
	require.NoError(t, err)
	for _, m := range ms {
		assert.Fail(t, "output mismatch", "%s: %s", p, m)
	}
}

func fmtRow(inputs []string, row map[string]uint64) string {
	var b strings.Builder
	for _, n := range inputs {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%#x", n, row[n])
	}
	return b.String()
}
