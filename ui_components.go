package main

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"sysmon-gui/internal/graph"
	"sysmon-gui/internal/panel"
)

const (
	graphStroke    = 1.5
	legendSwatch   = 10
	legendGap      = 12
	legendPadding  = 4
	minGraphWidth  = 200
	minGraphHeight = 120
)

var graphBackground = color.NRGBA{R: 30, G: 30, B: 30, A: 255}

// GraphWidget draws the history graph of a panel section with a legend
// below it. legend formats the legend entry of a series; nil shows the bare
// label.
type GraphWidget struct {
	widget.BaseWidget
	graph  *graph.Shared
	legend func(graph.Polyline) string
}

func NewGraphWidget(g *graph.Shared, legend func(graph.Polyline) string) *GraphWidget {
	w := &GraphWidget{graph: g, legend: legend}
	w.ExtendBaseWidget(w)
	return w
}

func (w *GraphWidget) legendText(line graph.Polyline) string {
	if w.legend == nil {
		return line.Label
	}
	return w.legend(line)
}

func (w *GraphWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &graphRenderer{
		w:  w,
		bg: canvas.NewRectangle(graphBackground),
	}
	r.objects = []fyne.CanvasObject{r.bg}
	return r
}

// graphRenderer is laid out by the UI thread and refreshed from the snapshot
// consumer, so its fields are guarded by mu.
type graphRenderer struct {
	w  *GraphWidget
	bg *canvas.Rectangle

	mu      sync.Mutex
	size    fyne.Size
	lines   []fyne.CanvasObject
	legend  []fyne.CanvasObject
	objects []fyne.CanvasObject
}

func (r *graphRenderer) MinSize() fyne.Size {
	return fyne.NewSize(minGraphWidth, minGraphHeight)
}

func (r *graphRenderer) Layout(s fyne.Size) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bg.Resize(s)
	if s != r.size {
		r.size = s
		r.rebuild()
	}
}

// Refresh rebuilds the line segments only when new samples arrived.
func (r *graphRenderer) Refresh() {
	r.mu.Lock()
	if r.w.graph.Dirty() {
		r.rebuild()
	}
	r.mu.Unlock()
	canvas.Refresh(r.w)
}

func (r *graphRenderer) Objects() []fyne.CanvasObject {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.objects
}

func (r *graphRenderer) Destroy() {}

// rebuild must be called with mu held.
func (r *graphRenderer) rebuild() {
	if r.size.Width <= 0 || r.size.Height <= 0 {
		return
	}
	legendH := legendHeight()
	plotH := r.size.Height - legendH
	if plotH < 1 {
		plotH = 1
	}

	geom := r.w.graph.Render(float64(r.size.Width), float64(plotH))
	if geom.Empty() {
		r.lines, r.legend = r.lines[:0], r.legend[:0]
		r.objects = []fyne.CanvasObject{r.bg}
		return
	}

	r.lines = r.lines[:0]
	for _, pl := range geom.Series {
		for i := 1; i < len(pl.Points); i++ {
			a, b := pl.Points[i-1], pl.Points[i]
			line := canvas.NewLine(pl.Color)
			line.StrokeWidth = graphStroke
			line.Position1 = fyne.NewPos(float32(a.X), float32(a.Y))
			line.Position2 = fyne.NewPos(float32(b.X), float32(b.Y))
			r.lines = append(r.lines, line)
		}
	}

	r.legend = r.legend[:0]
	x := float32(legendPadding)
	y := plotH + legendPadding
	for _, pl := range geom.Series {
		swatch := canvas.NewRectangle(pl.Color)
		swatch.Resize(fyne.NewSize(legendSwatch, legendSwatch))
		swatch.Move(fyne.NewPos(x, y+(legendH-2*legendPadding-legendSwatch)/2))
		x += legendSwatch + legendPadding

		text := canvas.NewText(r.w.legendText(pl), theme.ForegroundColor())
		text.TextSize = theme.CaptionTextSize()
		text.Move(fyne.NewPos(x, y))
		x += text.MinSize().Width + legendGap

		r.legend = append(r.legend, swatch, text)
	}

	objects := make([]fyne.CanvasObject, 0, 1+len(r.lines)+len(r.legend))
	objects = append(objects, r.bg)
	objects = append(objects, r.lines...)
	objects = append(objects, r.legend...)
	r.objects = objects
}

func legendHeight() float32 {
	return theme.CaptionTextSize() + 2*legendPadding + theme.Padding()
}

// barRow is a labelled progress bar showing a formatted value.
type barRow struct {
	label *widget.Label
	bar   *widget.ProgressBar

	mu   sync.Mutex
	text string
}

func newBarRow(b panel.Bar) *barRow {
	row := &barRow{
		label: widget.NewLabel(b.Label),
		bar:   widget.NewProgressBar(),
		text:  b.Text,
	}
	row.bar.TextFormatter = row.formatted
	row.bar.SetValue(b.Fraction)
	return row
}

func (r *barRow) formatted() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.text
}

func (r *barRow) set(b panel.Bar) {
	r.mu.Lock()
	r.text = b.Text
	r.mu.Unlock()
	r.bar.SetValue(b.Fraction)
}

func (r *barRow) object() fyne.CanvasObject {
	return container.New(&labelledRowLayout{}, r.label, r.bar)
}

// readingRow is a label with a trailing value.
type readingRow struct {
	label *widget.Label
	value *widget.Label
}

func newReadingRow(r panel.Reading) *readingRow {
	value := widget.NewLabel(r.Text)
	value.Alignment = fyne.TextAlignTrailing
	return &readingRow{label: widget.NewLabel(r.Label), value: value}
}

func (r *readingRow) set(reading panel.Reading) {
	r.value.SetText(reading.Text)
}

func (r *readingRow) object() fyne.CanvasObject {
	return container.New(&labelledRowLayout{}, r.label, r.value)
}

// labelledRowLayout gives the first object a fixed column and the second the
// remaining width.
type labelledRowLayout struct{}

const labelColumn = 160

func (l *labelledRowLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) != 2 {
		return
	}
	h := l.MinSize(objects).Height
	objects[0].Move(fyne.NewPos(0, 0))
	objects[0].Resize(fyne.NewSize(labelColumn, h))
	objects[1].Move(fyne.NewPos(labelColumn, 0))
	objects[1].Resize(fyne.NewSize(max(size.Width-labelColumn, 0), h))
}

func (l *labelledRowLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var h, w float32
	for _, o := range objects {
		m := o.MinSize()
		h = max(h, m.Height)
		w += m.Width
	}
	return fyne.NewSize(max(w, labelColumn), h)
}
