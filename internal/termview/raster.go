package termview

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sysmon-gui/internal/graph"
)

// brailleBits maps a dot inside a 2x4 braille cell to its bit.
var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

const brailleBase = 0x2800

// Cell is one terminal character of a plotted graph.
type Cell struct {
	Rune  rune
	Color color.Color
}

// DotSize returns the canvas size, in braille dots, that maps a graph onto
// cols x rows terminal cells. Coordinates run from 0 to the returned values
// inclusive.
func DotSize(cols, rows int) (width, height float64) {
	return float64(cols*2 - 1), float64(rows*4 - 1)
}

// Rasterize draws the polylines of geom, which must have been rendered at
// DotSize(cols, rows), onto a grid of braille cells. Later series are drawn
// over earlier ones.
func Rasterize(geom graph.Geometry, cols, rows int) [][]Cell {
	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, cols)
	}
	dotW, dotH := cols*2, rows*4

	set := func(x, y int, c color.Color) {
		if x < 0 || y < 0 || x >= dotW || y >= dotH {
			return
		}
		cell := &cells[y/4][x/2]
		if cell.Rune == 0 {
			cell.Rune = brailleBase
		}
		cell.Rune |= brailleBits[y%4][x%2]
		cell.Color = c
	}

	for _, line := range geom.Series {
		for i := 1; i < len(line.Points); i++ {
			a, b := line.Points[i-1], line.Points[i]
			bresenham(round(a.X), round(a.Y), round(b.X), round(b.Y), func(x, y int) {
				set(x, y, line.Color)
			})
		}
		if len(line.Points) == 1 {
			p := line.Points[0]
			set(round(p.X), round(p.Y), line.Color)
		}
	}
	return cells
}

// Render turns cells into colored text, one line per row.
func Render(cells [][]Cell) string {
	lines := make([]string, len(cells))
	for r, row := range cells {
		var b strings.Builder
		for _, c := range row {
			if c.Rune == 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(styleFor(c.Color).Render(string(c.Rune)))
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

// Plot renders the graph at the braille resolution of cols x rows cells.
func Plot(g *graph.Shared, cols, rows int) (string, graph.Geometry) {
	w, h := DotSize(cols, rows)
	geom := g.Render(w, h)
	return Render(Rasterize(geom, cols, rows)), geom
}

func styleFor(c color.Color) lipgloss.Style {
	if c == nil {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex(c)))
}

func hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

func round(v float64) int {
	return int(math.Round(v))
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
