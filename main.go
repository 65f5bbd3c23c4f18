package main

import (
	"context"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"sysmon-gui/internal/config"
	"sysmon-gui/internal/graph"
	"sysmon-gui/internal/panel"
	"sysmon-gui/internal/sysinfo"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Fatal("sysmon-gui crashed")
		}
	}()
	Execute()
}

// sectionView is the desktop rendering of one panel section: a header with
// the "Graph view" toggle above either the numeric rows or the graph.
type sectionView struct {
	// mu guards section.GraphView, which the check writes on the UI thread
	// and the snapshot consumer reads.
	mu      sync.Mutex
	section *panel.Section
	check   *widget.Check
	numeric fyne.CanvasObject
	graph   *GraphWidget
	body    *fyne.Container
}

func newSectionView(s *panel.Section, numeric fyne.CanvasObject, legend func(graph.Polyline) string) *sectionView {
	v := &sectionView{
		section: s,
		numeric: numeric,
		graph:   NewGraphWidget(s.Graph, legend),
		body:    container.NewStack(),
	}
	on := s.GraphView
	v.check = widget.NewCheck("Graph view", v.setGraphView)
	v.check.SetChecked(on)
	v.show(on)
	return v
}

func (v *sectionView) setGraphView(on bool) {
	v.mu.Lock()
	v.section.GraphView = on
	v.mu.Unlock()
	v.show(on)
}

func (v *sectionView) graphView() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.section.GraphView
}

func (v *sectionView) show(graphView bool) {
	if graphView {
		v.body.Objects = []fyne.CanvasObject{v.graph}
	} else {
		v.body.Objects = []fyne.CanvasObject{v.numeric}
	}
	v.body.Refresh()
}

func (v *sectionView) object() fyne.CanvasObject {
	header := container.NewBorder(nil, nil,
		widget.NewLabelWithStyle(v.section.Kind.Title(), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		v.check,
	)
	return container.NewVBox(header, v.body, widget.NewSeparator())
}

// desktop holds the widgets of the "System usage" tab.
type desktop struct {
	panel    *panel.Panel
	total    *barRow
	cpus     []*barRow
	ram      *barRow
	swap     *barRow
	temps    []*readingRow
	netIn    *readingRow
	netOut   *readingRow
	sections []*sectionView
}

func newDesktop(p *panel.Panel) *desktop {
	r := p.Readouts()
	d := &desktop{
		panel:  p,
		total:  newBarRow(r.CPUTotal),
		ram:    newBarRow(r.RAM),
		swap:   newBarRow(r.Swap),
		netIn:  newReadingRow(r.NetIn),
		netOut: newReadingRow(r.NetOut),
	}
	for _, b := range r.CPUs {
		d.cpus = append(d.cpus, newBarRow(b))
	}
	for _, t := range r.Temperatures {
		d.temps = append(d.temps, newReadingRow(t))
	}

	for _, s := range p.Sections() {
		kind := s.Kind
		legend := func(line graph.Polyline) string { return p.Legend(kind, line) }
		d.sections = append(d.sections, newSectionView(s, d.numeric(kind), legend))
	}
	return d
}

func (d *desktop) numeric(kind panel.Kind) fyne.CanvasObject {
	box := container.NewVBox()
	switch kind {
	case panel.CPU:
		for _, row := range d.cpus {
			box.Add(row.object())
		}
	case panel.Memory:
		box.Add(d.ram.object())
		box.Add(d.swap.object())
	case panel.Temperature:
		for _, row := range d.temps {
			box.Add(row.object())
		}
	case panel.Network:
		box.Add(d.netIn.object())
		box.Add(d.netOut.object())
	}
	return box
}

func (d *desktop) content() fyne.CanvasObject {
	usage := container.NewVBox(d.total.object(), widget.NewSeparator())
	for _, v := range d.sections {
		usage.Add(v.object())
	}
	return container.NewAppTabs(
		container.NewTabItem("System usage", container.NewVScroll(usage)),
	)
}

// update pushes readouts into the widgets and repaints the graphs.
func (d *desktop) update(r panel.Readouts) {
	d.total.set(r.CPUTotal)
	for i := 0; i < len(d.cpus) && i < len(r.CPUs); i++ {
		d.cpus[i].set(r.CPUs[i])
	}
	d.ram.set(r.RAM)
	d.swap.set(r.Swap)
	for i := 0; i < len(d.temps) && i < len(r.Temperatures); i++ {
		d.temps[i].set(r.Temperatures[i])
	}
	d.netIn.set(r.NetIn)
	d.netOut.set(r.NetOut)

	for _, v := range d.sections {
		if v.graphView() {
			v.graph.Refresh()
		}
	}
}

// consume applies snapshots until the channel is closed.
func (d *desktop) consume(snaps <-chan *sysinfo.Snapshot) {
	for snap := range snaps {
		d.update(d.panel.Apply(snap))
	}
}

func runDesktop(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := log.StandardLogger()
	sampler := sysinfo.NewSampler(logger)
	p := panel.New(cfg, sampler.Cores(ctx), sampler.Sensors(ctx), logger)

	a := app.NewWithID("com.sysmon.gui")
	a.Settings().SetTheme(newPanelTheme(cfg.Display.Theme))
	w := a.NewWindow("System usage")
	w.Resize(fyne.NewSize(cfg.Display.Width, cfg.Display.Height))

	d := newDesktop(p)
	w.SetContent(d.content())

	go d.consume(sysinfo.NewPoller(sampler, logger).Run(ctx))

	w.SetOnClosed(cancel)
	log.WithField("sections", len(p.Sections())).Info("desktop panel started")
	w.ShowAndRun()
	return nil
}
