// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwio reads the text formats used to feed evsim circuits: memory
// images and test vectors.
//
// Both formats are line oriented. Anything following a '#' is a comment and
// blank lines are ignored. Values are unsigned integers in decimal, or in
// hexadecimal or binary with a 0x or 0b prefix (case insensitive).
//
// A memory image holds one value per line:
//
//	# reset vector
//	0x1f
//	0b0101
//	42
//
// Test vectors start with a header line of port names, followed by one line
// per test with as many values as there are names. A '-' stands for a value
// that is neither set nor checked:
//
//	a   b   cin  s   cout
//	3   4   0    7   0
//	0xf 1   0    0   1
//	1   1   -    -   -
//
package hwio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseError records a syntax error in an input file.
//
type ParseError struct {
	Line int    // 1 based line number
	Text string // offending line
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
//
func (e *ParseError) Unwrap() error { return e.Err }

// ParseValue parses a single value.
//
func ParseValue(s string) (uint64, error) {
	base := 10
	l := strings.ToLower(s)
	switch {
	case strings.HasPrefix(l, "0x"):
		base, l = 16, l[2:]
	case strings.HasPrefix(l, "0b"):
		base, l = 2, l[2:]
	}
	v, err := strconv.ParseUint(l, base, 64)
	if err != nil {
		return 0, errors.Errorf("invalid value %q", s)
	}
	return v, nil
}

// lines calls fn for each non-empty line in r, with comments stripped.
//
func lines(r io.Reader, fn func(n int, text string, fields []string) error) error {
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := sc.Text()
		l := text
		if i := strings.IndexByte(l, '#'); i >= 0 {
			l = l[:i]
		}
		fields := strings.Fields(l)
		if len(fields) == 0 {
			continue
		}
		if err := fn(n, text, fields); err != nil {
			return &ParseError{Line: n, Text: text, Err: err}
		}
	}
	return errors.Wrap(sc.Err(), "read error")
}

// ReadImage reads a memory image from r.
//
func ReadImage(r io.Reader) ([]uint64, error) {
	var words []uint64
	err := lines(r, func(_ int, _ string, fields []string) error {
		if len(fields) != 1 {
			return errors.Errorf("expected 1 value, got %d", len(fields))
		}
		v, err := ParseValue(fields[0])
		if err != nil {
			return err
		}
		words = append(words, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return words, nil
}

// Vectors is a set of test vectors.
//
type Vectors struct {
	// Port names, from the header line.
	Labels []string
	// Rows maps port names to values. Values marked '-' in the input are
	// absent from the map.
	Rows []map[string]uint64
	// Lines holds the line number of each row, for error reporting.
	Lines []int
}

// ReadVectors reads test vectors from r.
//
func ReadVectors(r io.Reader) (*Vectors, error) {
	v := new(Vectors)
	err := lines(r, func(n int, _ string, fields []string) error {
		if v.Labels == nil {
			seen := make(map[string]bool, len(fields))
			for _, f := range fields {
				if seen[f] {
					return errors.Errorf("duplicate label %q", f)
				}
				seen[f] = true
			}
			v.Labels = fields
			return nil
		}
		if len(fields) != len(v.Labels) {
			return errors.Errorf("expected %d values, got %d", len(v.Labels), len(fields))
		}
		row := make(map[string]uint64, len(fields))
		for i, f := range fields {
			if f == "-" {
				continue
			}
			x, err := ParseValue(f)
			if err != nil {
				return err
			}
			row[v.Labels[i]] = x
		}
		v.Rows = append(v.Rows, row)
		v.Lines = append(v.Lines, n)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if v.Labels == nil {
		return nil, errors.New("missing header")
	}
	return v, nil
}
