package evsim_test

import (
	"fmt"

	hw "github.com/db47h/evsim"
)

// mux4Impl is a custom 4 bits mux.
//
type mux4Impl struct {
	A   *hw.Bus `hw:"in,,4"`    // input bus "a", 4 bits
	B   *hw.Bus `hw:"in,,4"`    // input bus "b", 4 bits
	S   *hw.Bus `hw:"in,sel,1"` // single wire, the second tag value forces the port name to "sel"
	Out *hw.Bus `hw:"out,,4"`   // output bus "out"
}

// Update implements Leaf.
//
func (m *mux4Impl) Update() error {
	if m.S.Uint64() != 0 {
		return m.Out.Write(m.B.Read())
	}
	return m.Out.Write(m.A.Read())
}

// no need to import reflect, just cast a nil pointer to mux4Impl
var mux4 = hw.MakePart((*mux4Impl)(nil))

// MakePart example with a custom Mux4
func ExampleMakePart() {
	u := hw.NewUpdater()
	a, b, sel := u.BusValue(4, 1), u.BusValue(4, 15), u.NewBus(1)
	m, err := mux4.NewPart(u, hw.W{"a": a, "b": b, "sel": sel})
	if err != nil {
		panic(err)
	}
	out := m.Pin("out")

	fmt.Printf("%s: a=%d, b=%d, sel=%d => out=%d\n", m.Name(), a.Uint64(), b.Uint64(), sel.Uint64(), out.Uint64())
	if err = sel.Set(); err != nil {
		panic(err)
	}
	fmt.Printf("%s: a=%d, b=%d, sel=%d => out=%d\n", m.Name(), a.Uint64(), b.Uint64(), sel.Uint64(), out.Uint64())

	// Output:
	// MUX4IMPL: a=1, b=15, sel=0 => out=1
	// MUX4IMPL: a=1, b=15, sel=1 => out=15
}
