package evsim_test

import (
	"testing"

	hw "github.com/db47h/evsim"
	"github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/hwtest"
	"github.com/stretchr/testify/assert"
)

type testPart struct {
	A   *hw.Bus `hw:"in"`
	B   *hw.Bus `hw:"in"`
	Sel *hw.Bus `hw:"in,s,1"`
	Out *hw.Bus `hw:"out,y"`
	foo int
}

func (t *testPart) Update() error {
	if t.Sel.Uint64() != 0 {
		return t.Out.Write(t.B.Read())
	}
	return t.Out.Write(t.A.Read())
}

// same ports as hwlib.Mux, in the same order
type testMux struct {
	S  *hw.Bus `hw:"in,s,1"`
	D0 *hw.Bus `hw:"in"`
	D1 *hw.Bus `hw:"in"`
	Y  *hw.Bus `hw:"out"`
}

func (m *testMux) Update() error {
	if m.S.Uint64() != 0 {
		return m.Y.Write(m.D1.Read())
	}
	return m.Y.Write(m.D0.Read())
}

func Test_MakePart(t *testing.T) {
	sp := hw.MakePart((*testPart)(nil))
	assert.Equal(t, "TESTPART", sp.Name)
	assert.Equal(t, []string{"a", "b", "s"}, sp.Inputs)
	assert.Equal(t, []string{"y"}, sp.Outputs)
	assert.Equal(t, map[string]int{"s": 1}, sp.Widths)

	hwtest.ComparePart(t, 4, hwlib.Mux, hw.MakePart((*testMux)(nil)))
}

type badTag struct {
	A *hw.Bus `hw:"inout"`
}

func (*badTag) Update() error { return nil }

type badType struct {
	A []*hw.Bus `hw:"in"`
}

func (*badType) Update() error { return nil }

type badWidth struct {
	A *hw.Bus `hw:"in,a,zero"`
}

func (*badWidth) Update() error { return nil }

type dupPort struct {
	A *hw.Bus `hw:"in"`
	B *hw.Bus `hw:"out,a"`
}

func (*dupPort) Update() error { return nil }

type unexported struct {
	a *hw.Bus `hw:"in"`
}

func (*unexported) Update() error { return nil }

type notStruct func()

func (notStruct) Update() error { return nil }

func Test_MakePart_panics(t *testing.T) {
	td := []struct {
		name string
		leaf hw.Leaf
	}{
		{"tag", (*badTag)(nil)},
		{"type", (*badType)(nil)},
		{"width", (*badWidth)(nil)},
		{"duplicate", (*dupPort)(nil)},
		{"unexported", (*unexported)(nil)},
		{"kind", notStruct(nil)},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			assert.Panics(t, func() { hw.MakePart(d.leaf) })
		})
	}
}
