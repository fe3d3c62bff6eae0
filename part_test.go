package evsim_test

import (
	"testing"

	hw "github.com/db47h/evsim"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// xor counting its updates.
func newXor(count *int) *hw.PartSpec {
	return &hw.PartSpec{
		Name:    "XOR",
		Inputs:  []string{"a", "b"},
		Outputs: []string{"y"},
		Make: func(s *hw.Socket) (hw.UpdateFn, error) {
			a, b, y := s.Input("a"), s.Input("b"), s.Output("y")
			return func() error {
				*count++
				r, err := hw.Xor(a.Read(), b.Read())
				if err != nil {
					return err
				}
				return y.Write(r)
			}, nil
		},
	}
}

var sel = &hw.PartSpec{
	Name:    "SEL",
	Inputs:  []string{"s", "d"},
	Outputs: []string{"y", "z"},
	Widths:  map[string]int{"s": 1, "z": 2},
	Make: func(s *hw.Socket) (hw.UpdateFn, error) {
		return func() error { return nil }, nil
	},
}

func TestPart_widths(t *testing.T) {
	u := hw.NewUpdater()

	// inferred from the first connected port not listed in Widths
	p, err := sel.NewPart(u, hw.W{"s": u.NewBus(1), "y": u.NewBus(6)})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Width("s"))
	assert.Equal(t, 6, p.Width("d"))
	assert.Equal(t, 6, p.Width("y"))
	assert.Equal(t, 2, p.Width("z"))
	assert.Equal(t, 0, p.Width("foo"))
	assert.Equal(t, 6, p.Pin("d").Len(), "unconnected ports get a new bus")

	// Size has precedence over inferred widths
	_, err = sel.NewPart(u, hw.W{"d": u.NewBus(6)}, hw.Size(4))
	assert.Equal(t, hw.ErrWidthMismatch, errors.Cause(err))
	p, err = sel.NewPart(u, hw.W{"d": u.NewBus(4)}, hw.Size(4))
	require.NoError(t, err)
	assert.Equal(t, 4, p.Width("y"))

	// Widths has precedence over everything
	_, err = sel.NewPart(u, hw.W{"s": u.NewBus(4)}, hw.Size(4))
	assert.Equal(t, hw.ErrWidthMismatch, errors.Cause(err))

	_, err = sel.NewPart(u, hw.W{"s": u.NewBus(1)})
	assert.Equal(t, hw.ErrMissingWidth, errors.Cause(err))

	_, err = sel.NewPart(u, hw.W{"q": u.NewBus(1)}, hw.Size(1))
	assert.Equal(t, hw.ErrUnknownPort, errors.Cause(err))

	bad := *sel
	bad.Widths = map[string]int{"q": 1}
	_, err = bad.NewPart(u, nil, hw.Size(1))
	assert.Equal(t, hw.ErrUnknownPort, errors.Cause(err))

	_, err = sel.NewPart(u, hw.W{"d": hw.NewUpdater().NewBus(1)})
	assert.Error(t, err, "bus from another updater")
}

func TestPart_ports(t *testing.T) {
	var n int
	u := hw.NewUpdater()
	a, b := u.BusValue(4, 0xc), u.BusValue(4, 0xa)
	p, err := newXor(&n).NewPart(u, hw.W{"a": a, "b": b})
	require.NoError(t, err)
	assert.NotZero(t, n, "evaluated on creation")
	assert.Equal(t, "XOR", p.Name())
	assert.Regexp(t, `^XOR#\d+$`, p.String())
	assert.Equal(t, u, p.Updater())
	assert.Equal(t, []string{"a", "b"}, p.Inputs())
	assert.Equal(t, []string{"y"}, p.Outputs())

	y := p.Pin("y")
	assert.EqualValues(t, 6, y.Uint64())
	assert.Equal(t, map[string]hw.Signal{
		"a": hw.NewSignal(0xc, 4),
		"b": hw.NewSignal(0xa, 4),
		"y": hw.NewSignal(6, 4),
	}, p.State())

	bus, err := p.Bus("a")
	require.NoError(t, err)
	assert.Equal(t, a, bus)
	_, err = p.Bus("c")
	assert.Equal(t, hw.ErrUnknownPort, errors.Cause(err))
	assert.Panics(t, func() { p.Pin("c") })
	_, err = p.Terminal("c")
	assert.Equal(t, hw.ErrUnknownPort, errors.Cause(err))
}

func TestPart_connect(t *testing.T) {
	var n int
	u := hw.NewUpdater()
	a, b := u.BusValue(4, 3), u.NewBus(4)
	p, err := newXor(&n).NewPart(u, hw.W{"a": a})
	require.NoError(t, err)
	y := p.Pin("y")
	assert.EqualValues(t, 3, y.Uint64())

	require.NoError(t, p.Connect("b", b))
	require.NoError(t, b.WriteUint64(1))
	assert.EqualValues(t, 2, y.Uint64())

	c := u.NewBus(4)
	require.NoError(t, p.Connect("b", c))
	assert.EqualValues(t, 3, y.Uint64(), "re-evaluated on connect")
	// the old b bus is disconnected
	old := n
	require.NoError(t, b.WriteUint64(5))
	assert.Equal(t, old, n)
	assert.EqualValues(t, 3, y.Uint64())

	// outputs
	z := u.NewBus(4)
	require.NoError(t, p.Connect("y", z))
	assert.EqualValues(t, 3, z.Uint64())
	require.NoError(t, c.WriteUint64(3))
	assert.EqualValues(t, 0, z.Uint64())
	assert.EqualValues(t, 3, y.Uint64(), "old output bus no longer driven")

	err = p.Connect("a", u.NewBus(2))
	assert.Equal(t, hw.ErrWidthMismatch, errors.Cause(err))
	err = p.Connect("q", u.NewBus(4))
	assert.Equal(t, hw.ErrUnknownPort, errors.Cause(err))
	assert.Error(t, p.Connect("a", hw.NewUpdater().NewBus(4)))
}

func TestPart_tristate(t *testing.T) {
	var n int
	u := hw.NewUpdater()
	a, en := u.BusValue(4, 3), u.NewBus(1)
	p, err := newXor(&n).NewPart(u, hw.W{"a": a}, hw.Tristate("y", en))
	require.NoError(t, err)
	y := p.Pin("y")
	assert.EqualValues(t, 0, y.Uint64())
	require.NoError(t, en.Set())
	assert.EqualValues(t, 3, y.Uint64())
	require.NoError(t, en.Reset())
	require.NoError(t, a.WriteUint64(9))
	assert.EqualValues(t, 3, y.Uint64())

	require.NoError(t, p.SetTristate("y", hw.VDD(1)))
	assert.EqualValues(t, 9, y.Uint64())
	err = p.SetTristate("y", u.NewBus(2))
	assert.Equal(t, hw.ErrWidthMismatch, errors.Cause(err))

	_, err = newXor(&n).NewPart(u, hw.W{"a": a}, hw.Tristate("y", u.NewBus(4)))
	assert.Equal(t, hw.ErrWidthMismatch, errors.Cause(err))
	_, err = newXor(&n).NewPart(u, hw.W{"a": a}, hw.Bubble("x"))
	assert.Equal(t, hw.ErrUnknownPort, errors.Cause(err))
}

func TestPart_bubble(t *testing.T) {
	var n int
	u := hw.NewUpdater()
	a, b := u.BusValue(4, 0xc), u.BusValue(4, 0xa)
	p, err := newXor(&n).NewPart(u, hw.W{"a": a, "b": b}, hw.Bubble("a", "y"))
	require.NoError(t, err)
	// y = !(!a ^ b) = a ^ b
	assert.EqualValues(t, 6, p.Pin("y").Uint64())
	p, err = newXor(&n).NewPart(u, hw.W{"a": a, "b": b}, hw.Bubble("y"))
	require.NoError(t, err)
	assert.EqualValues(t, 9, p.Pin("y").Uint64())
}

func TestSocket_bubble(t *testing.T) {
	inv := &hw.PartSpec{
		Name:    "INV",
		Inputs:  []string{"a"},
		Outputs: []string{"y"},
		Make: func(s *hw.Socket) (hw.UpdateFn, error) {
			if err := s.Bubble("y"); err != nil {
				return nil, err
			}
			assert.Equal(t, hw.ErrUnknownPort, errors.Cause(s.Bubble("b")))
			a, y := s.Input("a"), s.Output("y")
			return func() error { return y.Write(a.Read()) }, nil
		},
	}
	u := hw.NewUpdater()
	a := u.BusValue(3, 5)
	p, err := inv.NewPart(u, hw.W{"a": a})
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.Pin("y").Uint64())
}

func TestPart_composite(t *testing.T) {
	var n int
	xor := newXor(&n)
	// y = a ^ b ^ c
	xor3 := &hw.PartSpec{
		Name:    "XOR3",
		Inputs:  []string{"a", "b", "c"},
		Outputs: []string{"y"},
		Make: func(s *hw.Socket) (hw.UpdateFn, error) {
			x0, err := s.Part(xor, hw.W{"a": s.Input("a"), "b": s.Input("b")})
			if err != nil {
				return nil, err
			}
			x1, err := s.Part(xor, hw.W{"a": x0.Pin("y"), "b": s.Input("c")})
			if err != nil {
				return nil, err
			}
			assert.Equal(t, 2, s.Width("a"))
			assert.Panics(t, func() { s.Input("y") })
			assert.Panics(t, func() { s.Output("a") })
			assert.Error(t, s.SetOutput("y", s.NewBus(3)))
			return nil, s.SetOutput("y", x1.Pin("y"))
		},
	}
	u := hw.NewUpdater()
	a, b, c := u.NewBus(2), u.NewBus(2), u.NewBus(2)
	p, err := xor3.NewPart(u, hw.W{"a": a, "b": b, "c": c})
	require.NoError(t, err)
	require.Len(t, p.Children(), 2)
	y := p.Pin("y")
	require.NoError(t, a.WriteUint64(1))
	require.NoError(t, b.WriteUint64(3))
	require.NoError(t, c.WriteUint64(3))
	assert.EqualValues(t, 1, y.Uint64())
}

func TestPart_rollback(t *testing.T) {
	var n int
	xor := newXor(&n)
	failing := &hw.PartSpec{
		Name:    "FAIL",
		Inputs:  []string{"a"},
		Outputs: []string{"y"},
		Make: func(s *hw.Socket) (hw.UpdateFn, error) {
			if _, err := s.Part(xor, hw.W{"a": s.Input("a"), "b": s.Input("a")}); err != nil {
				return nil, err
			}
			// width mismatch
			return nil, s.SetOutput("y", s.NewBus(1))
		},
	}
	u := hw.NewUpdater()
	a := u.NewBus(4)
	_, err := failing.NewPart(u, hw.W{"a": a})
	assert.Equal(t, hw.ErrWidthMismatch, errors.Cause(err))

	// neither the part nor its child react to a
	old := n
	require.NoError(t, a.WriteUint64(0xf))
	assert.Equal(t, old, n)
}
