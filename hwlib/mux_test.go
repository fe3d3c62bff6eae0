package hwlib_test

import (
	"testing"

	hw "github.com/db47h/evsim"
	hl "github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/hwtest"
	"github.com/stretchr/testify/assert"
)

type mux struct {
	S  *hw.Bus `hw:"in,s,1"`
	D0 *hw.Bus `hw:"in"`
	D1 *hw.Bus `hw:"in"`
	Y  *hw.Bus `hw:"out"`
}

func (m *mux) Update() error {
	if m.S.Uint64() == 0 {
		return m.Y.Write(m.D0.Read())
	}
	return m.Y.Write(m.D1.Read())
}

type mux4 struct {
	S  *hw.Bus `hw:"in,s,2"`
	D0 *hw.Bus `hw:"in"`
	D1 *hw.Bus `hw:"in"`
	D2 *hw.Bus `hw:"in"`
	D3 *hw.Bus `hw:"in"`
	Y  *hw.Bus `hw:"out"`
}

func (m *mux4) Update() error {
	return m.Y.Write([]*hw.Bus{m.D0, m.D1, m.D2, m.D3}[m.S.Uint64()].Read())
}

func TestMux(t *testing.T) {
	t.Parallel()
	hwtest.ComparePart(t, 1, hl.Mux, hw.MakePart((*mux)(nil)))
	hwtest.ComparePart(t, 4, hl.Mux, hw.MakePart((*mux)(nil)))
	hwtest.ComparePart(t, 16, hl.Mux, hw.MakePart((*mux)(nil)))
}

func TestMuxN(t *testing.T) {
	t.Parallel()
	m := hl.MuxN(2)
	assert.Equal(t, []string{"s", "d0", "d1", "d2", "d3"}, m.Inputs)
	hwtest.ComparePart(t, 2, m, hw.MakePart((*mux4)(nil)))
	hwtest.ComparePart(t, 8, m, hw.MakePart((*mux4)(nil)))

	assert.Panics(t, func() { hl.MuxN(0) })
}

func TestDecoder(t *testing.T) {
	t.Parallel()
	u := hw.NewUpdater()
	d := newPart(t, u, hl.Decoder(2), nil)
	assert.Equal(t, []string{"y0", "y1", "y2", "y3"}, d.Outputs())
	rows := hwtest.Sweep(t, d, "e", "a")
	for i, r := range rows {
		e, a := i>>2, i&3
		for y := 0; y < 4; y++ {
			var want uint64
			if e == 1 && a == y {
				want = 1
			}
			assert.Equal(t, want, r["y"+string(rune('0'+y))], "e=%d a=%d y%d", e, a, y)
		}
	}

	assert.Panics(t, func() { hl.Decoder(17) })
}
