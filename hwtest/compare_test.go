package hwtest_test

import (
	"strings"
	"testing"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/hwio"
	hl "github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/hwtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var customOr = &evsim.PartSpec{
	Name:    "custom_or",
	Inputs:  []string{"a", "b"},
	Outputs: []string{"y"},
	Make: func(s *evsim.Socket) (evsim.UpdateFn, error) {
		notA, err := s.Part(hl.Nand, evsim.W{"a": s.Input("a"), "b": s.Input("a")})
		if err != nil {
			return nil, err
		}
		notB, err := s.Part(hl.Nand, evsim.W{"a": s.Input("b"), "b": s.Input("b")})
		if err != nil {
			return nil, err
		}
		or, err := s.Part(hl.Nand, evsim.W{"a": notA.Pin("y"), "b": notB.Pin("y")})
		if err != nil {
			return nil, err
		}
		return nil, s.SetOutput("y", or.Pin("y"))
	},
}

func TestComparePart(t *testing.T) {
	hwtest.ComparePart(t, 4, hl.Or, customOr)
	// random sampling
	hwtest.ComparePart(t, 16, hl.Or, customOr)
}

func TestSweep(t *testing.T) {
	u := evsim.NewUpdater()
	p, err := customOr.NewPart(u, nil, evsim.Size(1))
	require.NoError(t, err)
	rows := hwtest.Sweep(t, p, "a", "b")
	require.Len(t, rows, 4)
	for i, want := range []uint64{0, 1, 1, 1} {
		assert.Equal(t, want, rows[i]["y"], "row %d", i)
	}
}

func TestRunVectors(t *testing.T) {
	v, err := hwio.ReadVectors(strings.NewReader(`
a b y
0 0 0
0b1010 0b0101 0xf
3 - 7
`))
	require.NoError(t, err)
	u := evsim.NewUpdater()
	p, err := customOr.NewPart(u, nil, evsim.Size(4))
	require.NoError(t, err)
	hwtest.RunVectors(t, p, v)
}
