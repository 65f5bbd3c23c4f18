package graph

import "image/color"

// Point is a position in canvas pixel space, origin top-left.
type Point struct {
	X, Y float64
}

// Polyline is the rendered form of one series.
type Polyline struct {
	Label string
	Color color.Color
	// Scale is the value mapped to the top of the canvas.
	Scale float64
	// Latest is the newest raw sample, for legends.
	Latest float64
	// Points holds one point per sample, oldest (leftmost) first.
	Points []Point
}

// Geometry is everything a 2D surface needs to draw a graph.
type Geometry struct {
	Width, Height float64
	// Series follow registration order, which is also legend order.
	Series []Polyline
}

// Empty reports whether there is nothing to draw.
func (g Geometry) Empty() bool {
	return len(g.Series) == 0
}

func (g Geometry) clone() Geometry {
	c := g
	c.Series = make([]Polyline, len(g.Series))
	for i, line := range g.Series {
		line.Points = append([]Point(nil), line.Points...)
		c.Series[i] = line
	}
	return c
}
