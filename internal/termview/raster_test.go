package termview

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sysmon-gui/internal/graph"
)

func flatGraph(value float64, samples int) *graph.Shared {
	g := graph.New(samples, graph.WithMaxOverride(1))
	h := g.Register("line", graph.Color(0), nil)
	for i := 0; i < samples; i++ {
		g.Record(h, value)
		g.Invalidate()
	}
	return graph.Share(g)
}

func runes(cells [][]Cell) []string {
	out := make([]string, len(cells))
	for r, row := range cells {
		var b strings.Builder
		for _, c := range row {
			if c.Rune == 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteRune(c.Rune)
		}
		out[r] = b.String()
	}
	return out
}

func TestDotSize(t *testing.T) {
	w, h := DotSize(10, 3)
	assert.Equal(t, float64(19), w)
	assert.Equal(t, float64(11), h)
}

func TestRasterize(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		cols  int
		rows  int
		want  []string
	}{
		{
			name:  "full scale runs along the top dots",
			value: 1,
			cols:  2,
			rows:  1,
			want:  []string{"⠉⠉"},
		},
		{
			name:  "zero runs along the bottom dots",
			value: 0,
			cols:  2,
			rows:  2,
			want:  []string{"  ", "⣀⣀"},
		},
		{
			name:  "half scale on a two row canvas",
			value: 0.5,
			cols:  1,
			rows:  2,
			// y = 7 * 0.5 = 3.5 rounds to 4, the top dot row of the second cell
			want: []string{" ", "⠉"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := flatGraph(test.value, test.cols*2)
			w, h := DotSize(test.cols, test.rows)
			cells := Rasterize(g.Render(w, h), test.cols, test.rows)
			assert.Equal(t, test.want, runes(cells))
		})
	}
}

func TestRasterize_Diagonal(t *testing.T) {
	g := graph.New(2, graph.WithMaxOverride(1))
	h := g.Register("ramp", graph.Color(1), nil)
	g.Record(h, 0)
	g.Invalidate()
	g.Record(h, 1)

	w, ht := DotSize(1, 1)
	cells := Rasterize(g.Render(w, ht), 1, 1)

	// (0,3) to (1,0): every dot row is touched once.
	require.Len(t, cells, 1)
	r := cells[0][0].Rune - brailleBase
	assert.NotZero(t, r&brailleBits[3][0], "bottom left")
	assert.NotZero(t, r&brailleBits[0][1], "top right")
	assert.Equal(t, graph.Color(1), cells[0][0].Color)
}

func TestRasterize_EmptyGeometry(t *testing.T) {
	cells := Rasterize(graph.Geometry{}, 3, 2)
	assert.Equal(t, []string{"   ", "   "}, runes(cells))
}

func TestRasterize_ClipsOutOfRange(t *testing.T) {
	geom := graph.Geometry{Series: []graph.Polyline{{
		Points: []graph.Point{{X: -5, Y: -5}, {X: 50, Y: 50}},
	}}}
	assert.NotPanics(t, func() { Rasterize(geom, 2, 1) })
}

func TestPlot(t *testing.T) {
	out, geom := Plot(flatGraph(1, 4), 2, 1)
	require.Len(t, geom.Series, 1)
	assert.Contains(t, out, "⠉")
	assert.Equal(t, float64(3), geom.Width)
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#ff8000", hex(color.NRGBA{R: 255, G: 128, A: 255}))
}
