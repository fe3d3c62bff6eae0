// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/db47h/evsim"
	hl "github.com/db47h/evsim/hwlib"
	"github.com/pkg/errors"
)

// a builder creates the part under test described by a bench. n is the
// numeric suffix of the part name, or 0 if there is none.
type builder func(u *evsim.Updater, b *Bench, n int) (*evsim.Part, error)

var parts = map[string]builder{
	"and":       gate(hl.And, hl.AndN),
	"or":        gate(hl.Or, hl.OrN),
	"xor":       gate(hl.Xor, hl.XorN),
	"nand":      fixed(hl.Nand),
	"nor":       fixed(hl.Nor),
	"xnor":      fixed(hl.Xnor),
	"not":       fixed(hl.Not),
	"buf":       fixed(hl.Buffer),
	"mux":       mux,
	"dec":       decoder,
	"halfadder": fixed(hl.HalfAdder),
	"fulladder": fixed(hl.FullAdder),
	"cpa":       fixed(hl.CPA),
	"adder":     fixed(hl.Adder),
	"sub":       fixed(hl.Subtractor),
	"eq":        fixed(hl.EqualityComparator),
	"alu":       fixed(hl.ALU),
	"sr":        fixed(hl.SRLatch),
	"dlatch":    fixed(hl.DLatch),
	"dff":       fixed(hl.DFlipFlop),
	"rdff":      fixed(hl.ResetFlipFlop),
	"eldff":     fixed(hl.ELFlipFlop),
	"counter":   fixed(hl.Counter),
	"pc":        fixed(hl.SettableCounter),
	"ring":      fixed(hl.RingCounter),
	"cell":      fixed(hl.MemoryCell),
	"ram":       ram,
	"rom":       rom,
}

// partNames returns the sorted list of known part names.
func partNames() []string {
	r := make([]string, 0, len(parts))
	for k := range parts {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// splitName splits a part name like "and4" into its base name and numeric
// suffix.
func splitName(name string) (string, int, error) {
	name = strings.ToLower(name)
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return name, 0, nil
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil || n == 0 {
		return "", 0, errors.Errorf("invalid part name %q", name)
	}
	return name[:i], n, nil
}

// newPart creates the part described by b.
func newPart(u *evsim.Updater, b *Bench) (*evsim.Part, error) {
	base, n, err := splitName(b.Part)
	if err != nil {
		return nil, err
	}
	mk, ok := parts[base]
	if !ok {
		return nil, errors.Errorf("unknown part %q", b.Part)
	}
	return mk(u, b, n)
}

func size(b *Bench) evsim.Option {
	if b.Size > 0 {
		return evsim.Size(b.Size)
	}
	return evsim.Size(1)
}

func noSuffix(n int) error {
	if n != 0 {
		return errors.Errorf("part does not take a size suffix")
	}
	return nil
}

func fixed(spec *evsim.PartSpec) builder {
	return func(u *evsim.Updater, b *Bench, n int) (*evsim.Part, error) {
		if err := noSuffix(n); err != nil {
			return nil, errors.WithMessage(err, spec.Name)
		}
		return spec.NewPart(u, nil, size(b))
	}
}

func gate(g *evsim.PartSpec, gn func(int) *evsim.PartSpec) builder {
	return func(u *evsim.Updater, b *Bench, n int) (*evsim.Part, error) {
		switch {
		case n == 0 || n == 2:
			return g.NewPart(u, nil, size(b))
		case n < 2:
			return nil, errors.Errorf("%s: need at least 2 inputs", g.Name)
		}
		return gn(n).NewPart(u, nil, size(b))
	}
}

// mux handles "mux" and "muxN" where N is the number of data inputs.
func mux(u *evsim.Updater, b *Bench, n int) (*evsim.Part, error) {
	if n == 0 || n == 2 {
		return hl.Mux.NewPart(u, nil, size(b))
	}
	sel := 0
	for 1<<uint(sel) < n {
		sel++
	}
	if sel < 1 || sel > 16 || 1<<uint(sel) != n {
		return nil, errors.Errorf("mux%d: number of inputs must be a power of 2 no greater than 65536", n)
	}
	return hl.MuxN(sel).NewPart(u, nil, size(b))
}

// decoder handles "decN" where N is the input width.
func decoder(u *evsim.Updater, b *Bench, n int) (*evsim.Part, error) {
	if n < 1 || n > 16 {
		return nil, errors.Errorf("dec%d: invalid input width", n)
	}
	return hl.Decoder(n).NewPart(u, nil)
}

func ram(u *evsim.Updater, b *Bench, n int) (*evsim.Part, error) {
	if err := noSuffix(n); err != nil {
		return nil, errors.WithMessage(err, "RAM")
	}
	if b.Word < 1 {
		return nil, errors.New("RAM: missing word size")
	}
	return hl.RAM(b.Word).NewPart(u, nil, size(b))
}

func rom(u *evsim.Updater, b *Bench, n int) (*evsim.Part, error) {
	if err := noSuffix(n); err != nil {
		return nil, errors.WithMessage(err, "ROM")
	}
	r, err := hl.NewROM(u, b.Word, nil, size(b))
	if err != nil {
		return nil, err
	}
	if b.Image == "" {
		return r.Part, nil
	}
	f, err := os.Open(filepath.Join(b.dir, b.Image))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err = r.BurnImage(f); err != nil {
		return nil, errors.WithMessage(err, b.Image)
	}
	return r.Part, nil
}
