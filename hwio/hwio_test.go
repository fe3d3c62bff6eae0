package hwio_test

import (
	"strings"
	"testing"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/hwio"
	hl "github.com/db47h/evsim/hwlib"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	td := []struct {
		in  string
		v   uint64
		err bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"0x1F", 31, false},
		{"0XfF", 255, false},
		{"0b101", 5, false},
		{"0B11", 3, false},
		{"010", 10, false},
		{"0x", 0, true},
		{"0b102", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"18446744073709551616", 0, true},
	}
	for _, d := range td {
		v, err := hwio.ParseValue(d.in)
		if d.err {
			assert.Error(t, err, d.in)
			continue
		}
		if assert.NoError(t, err, d.in) {
			assert.Equal(t, d.v, v, d.in)
		}
	}
}

func TestReadImage(t *testing.T) {
	words, err := hwio.ReadImage(strings.NewReader(`# test image
0x1f

0b0101 # five
42
`))
	require.NoError(t, err)
	assert.Equal(t, []uint64{31, 5, 42}, words)

	words, err = hwio.ReadImage(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestReadImage_errors(t *testing.T) {
	td := []struct {
		in   string
		line int
	}{
		{"1\n2\nfoo\n", 3},
		{"# comment\n\n1 2\n", 3},
		{"0x10\n0b2\n", 2},
	}
	for _, d := range td {
		_, err := hwio.ReadImage(strings.NewReader(d.in))
		require.Error(t, err, d.in)
		pe, ok := errors.Cause(err).(*hwio.ParseError)
		require.True(t, ok, "%q: unexpected error type %T", d.in, err)
		assert.Equal(t, d.line, pe.Line, d.in)
		assert.Contains(t, pe.Error(), "line ")

		// context added by callers does not hide the line number
		pe, ok = errors.Cause(errors.WithMessage(err, "image.hex")).(*hwio.ParseError)
		require.True(t, ok, "%q: wrapped error", d.in)
		assert.Equal(t, d.line, pe.Line, d.in)
	}
}

func TestReadVectors(t *testing.T) {
	v, err := hwio.ReadVectors(strings.NewReader(`
# adder
a   b   cin  s   cout
3   4   0    7   0
0xf 1   0    0   1
1   1   -    -   -
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "cin", "s", "cout"}, v.Labels)
	require.Len(t, v.Rows, 3)
	assert.Equal(t, map[string]uint64{"a": 3, "b": 4, "cin": 0, "s": 7, "cout": 0}, v.Rows[0])
	assert.Equal(t, map[string]uint64{"a": 1, "b": 1}, v.Rows[2])
	assert.Equal(t, []int{4, 5, 6}, v.Lines)
}

func TestReadVectors_errors(t *testing.T) {
	td := []struct {
		name string
		in   string
		line int
	}{
		{"short row", "a b\n1\n", 2},
		{"long row", "a b\n1 2\n1 2 3\n", 3},
		{"bad value", "a b\n1 x\n", 2},
		{"duplicate label", "a a\n", 1},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			_, err := hwio.ReadVectors(strings.NewReader(d.in))
			require.Error(t, err)
			pe, ok := errors.Cause(err).(*hwio.ParseError)
			require.True(t, ok, "unexpected error type %T", err)
			assert.Equal(t, d.line, pe.Line)
		})
	}
	_, err := hwio.ReadVectors(strings.NewReader("# nothing\n"))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	u := evsim.NewUpdater()
	p, err := hl.CPA.NewPart(u, nil, evsim.Size(4))
	require.NoError(t, err)

	v, err := hwio.ReadVectors(strings.NewReader(`
a   b   cin  s   cout
3   4   0    7   0
0xf 1   0    0   1
1   1   1    4   0
`))
	require.NoError(t, err)
	ms, err := hwio.Check(p, v)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, hwio.Mismatch{Row: 2, Line: 5, Port: "s", Want: 4, Got: 3}, ms[0])
	assert.True(t, u.AutoRun, "AutoRun must be restored")

	v, err = hwio.ReadVectors(strings.NewReader("a foo\n1 2\n"))
	require.NoError(t, err)
	_, err = hwio.Check(p, v)
	assert.Equal(t, evsim.ErrUnknownPort, errors.Cause(err))

	v, err = hwio.ReadVectors(strings.NewReader("a b\n16 0\n"))
	require.NoError(t, err)
	_, err = hwio.Check(p, v)
	assert.Equal(t, evsim.ErrWidthMismatch, errors.Cause(err))
}
