// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/hwio"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Bench describes a test bench: a part from the library and the files used
// to drive it. File names are relative to the directory of the bench file.
//
//	part: cpa
//	size: 4
//	vectors: cpa4.vec
//
type Bench struct {
	Part     string `yaml:"part"`
	Size     int    `yaml:"size"`
	Word     int    `yaml:"word"`
	Image    string `yaml:"image"`
	Vectors  string `yaml:"vectors"`
	MaxSteps int    `yaml:"max_steps"`

	dir string
}

// loadBench reads a bench file.
func loadBench(name string) (*Bench, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := decodeBench(f)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	b.dir = filepath.Dir(name)
	return b, nil
}

func decodeBench(r io.Reader) (*Bench, error) {
	var b Bench
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, errors.Wrap(err, "decode bench")
	}
	if b.Part == "" {
		return nil, errors.New("missing part name")
	}
	if b.Size < 0 || b.Word < 0 || b.MaxSteps < 0 {
		return nil, errors.New("negative size, word or max_steps")
	}
	return &b, nil
}

// result summarizes a bench run.
type result struct {
	Part       *evsim.Part
	Rows       int
	Mismatches []hwio.Mismatch
}

// run builds the bench part in u and checks it against the bench vectors,
// if any.
func (b *Bench) run(u *evsim.Updater) (*result, error) {
	if b.MaxSteps > 0 {
		u.MaxSteps = b.MaxSteps
	}
	p, err := newPart(u, b)
	if err != nil {
		return nil, err
	}
	r := &result{Part: p}
	if b.Vectors == "" {
		return r, nil
	}
	f, err := os.Open(filepath.Join(b.dir, b.Vectors))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	v, err := hwio.ReadVectors(f)
	if err != nil {
		return nil, errors.WithMessage(err, b.Vectors)
	}
	r.Rows = len(v.Rows)
	r.Mismatches, err = hwio.Check(p, v)
	if err != nil {
		return r, errors.WithMessage(err, b.Vectors)
	}
	return r, nil
}

// report writes a human readable summary of r to w.
func (r *result) report(w io.Writer, color bool) {
	if r.Rows == 0 {
		state := r.Part.State()
		ports := make([]string, 0, len(state))
		for k := range state {
			ports = append(ports, k)
		}
		sort.Strings(ports)
		fmt.Fprintf(w, "%s\n", r.Part)
		for _, n := range ports {
			fmt.Fprintf(w, "  %-6s %v\n", n, state[n])
		}
		return
	}
	for _, m := range r.Mismatches {
		fmt.Fprintln(w, m)
	}
	status := paint(color, green, "PASS")
	if len(r.Mismatches) > 0 {
		status = paint(color, red, "FAIL")
	}
	fmt.Fprintf(w, "%s %s: %d rows, %d mismatches\n", status, r.Part, r.Rows, len(r.Mismatches))
}

const (
	red   = "\x1b[31m"
	green = "\x1b[32m"
	reset = "\x1b[0m"
)

func paint(color bool, c, s string) string {
	if !color {
		return s
	}
	return c + s + reset
}
