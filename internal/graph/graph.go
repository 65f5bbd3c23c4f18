// Package graph turns a set of rolling sample buffers into canvas geometry.
//
// A Graph owns an ordered list of series sharing one window length. Samples
// are recorded per series on every tick; Render scales them (global override,
// per-series fixed max, or the window's own maximum) and maps them to pixel
// coordinates with the origin at the top-left corner.
package graph

import (
	"fmt"
	"image/color"
	"math"

	"sysmon-gui/internal/history"
)

// Option configures a Graph at construction.
type Option func(*Graph)

// WithMaxOverride forces every series of the graph onto the 0..max axis,
// ignoring per-series fixed maxima and observed values.
func WithMaxOverride(limit float64) Option {
	return func(g *Graph) {
		g.maxOverride = &limit
	}
}

// Handle identifies a series registered on a Graph.
type Handle struct {
	g   *Graph
	idx int
}

type series struct {
	label    string
	color    color.Color
	fixedMax *float64
	buf      *history.Buffer
}

// Graph is a set of named series rendered onto one canvas.
//
// Graph is not safe for concurrent use; see Shared.
type Graph struct {
	window      int
	series      []*series
	maxOverride *float64

	dirty    bool
	rendered bool
	cache    Geometry
}

// New creates a graph whose series all retain window samples. The graph
// starts dirty so the first Render always computes geometry.
func New(window int, opts ...Option) *Graph {
	if window < 1 {
		panic(fmt.Sprintf("graph: invalid window length %d", window))
	}
	g := &Graph{
		window: window,
		dirty:  true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register appends a series. fixedMax, when non-nil, replaces the dynamic
// scale of this series. Registering after the first Render panics.
func (g *Graph) Register(label string, c color.Color, fixedMax *float64) Handle {
	if g.rendered {
		panic(fmt.Sprintf("graph: series %q registered after first render", label))
	}
	s := &series{
		label: label,
		color: c,
		buf:   history.NewBuffer(g.window),
	}
	if fixedMax != nil {
		m := *fixedMax
		s.fixedMax = &m
	}
	g.series = append(g.series, s)
	return Handle{g: g, idx: len(g.series) - 1}
}

// Record advances the series window and stores v as its newest sample. It
// does not invalidate the graph: update every series of a tick first, then
// call Invalidate once.
func (g *Graph) Record(h Handle, v float64) {
	s := g.lookup(h)
	s.buf.Advance()
	s.buf.Write(0, v)
}

// Invalidate marks the cached geometry stale.
func (g *Graph) Invalidate() {
	g.dirty = true
}

// Dirty reports whether the next Render recomputes geometry.
func (g *Graph) Dirty() bool {
	return g.dirty
}

// Render returns the geometry of every series for a width x height canvas.
// A clean graph asked for the same canvas size returns a copy of its cached
// geometry, so callers may modify the result. Render panics when the window is shorter than two samples.
func (g *Graph) Render(width, height float64) Geometry {
	if g.window < 2 {
		panic(fmt.Sprintf("graph: cannot render a window of %d sample(s)", g.window))
	}
	if !g.dirty && g.rendered && g.cache.Width == width && g.cache.Height == height {
		return g.cache.clone()
	}

	geom := Geometry{
		Width:  width,
		Height: height,
		Series: make([]Polyline, 0, len(g.series)),
	}
	span := float64(g.window - 1)
	for _, s := range g.series {
		scale := g.scale(s)
		line := Polyline{
			Label:  s.label,
			Color:  s.color,
			Scale:  scale,
			Latest: s.buf.Read(0),
			Points: make([]Point, 0, g.window),
		}
		i := 0
		for v := range s.buf.Chronological() {
			line.Points = append(line.Points, Point{
				X: float64(i) * width / span,
				Y: height * (1 - fraction(v, scale)),
			})
			i++
		}
		geom.Series = append(geom.Series, line)
	}

	g.cache = geom
	g.dirty = false
	g.rendered = true
	return geom.clone()
}

func (g *Graph) lookup(h Handle) *series {
	if h.g != g || h.idx < 0 || h.idx >= len(g.series) {
		panic("graph: handle does not belong to this graph")
	}
	return g.series[h.idx]
}

func (g *Graph) scale(s *series) float64 {
	if g.maxOverride != nil {
		return guardScale(*g.maxOverride)
	}
	if s.fixedMax != nil {
		return guardScale(*s.fixedMax)
	}
	peak := 0.0
	for v := range s.buf.Chronological() {
		if v > peak {
			peak = v
		}
	}
	return guardScale(peak)
}

// guardScale keeps the divisor positive; an empty or all-zero window then
// maps to a fraction of 0.
func guardScale(limit float64) float64 {
	if limit <= 0 || math.IsNaN(limit) {
		return 1
	}
	return limit
}

func fraction(v, scale float64) float64 {
	f := v / scale
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
