// Package panel wires sampled metrics into the four history graphs of the
// system usage view and formats the numeric readouts shown next to them.
// It is shared by the desktop and the terminal front-ends.
package panel

import (
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"sysmon-gui/internal/config"
	"sysmon-gui/internal/graph"
	"sysmon-gui/internal/sysinfo"
)

// Window is the number of samples kept per series: sixty ticks of history
// plus the current one.
const Window = 61

// Kind identifies a section of the panel.
type Kind int

const (
	CPU Kind = iota
	Memory
	Temperature
	Network
)

func (k Kind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case Memory:
		return "memory"
	case Temperature:
		return "temperature"
	case Network:
		return "network"
	}
	return "unknown"
}

// Title is the section header.
func (k Kind) Title() string {
	switch k {
	case CPU:
		return "Process usage"
	case Memory:
		return "Memory usage"
	case Temperature:
		return "Components' temperature"
	case Network:
		return "Network usage"
	}
	return ""
}

// DynamicScale reports whether the section's graph scales to its own window
// maximum rather than a fixed axis.
func (k Kind) DynamicScale() bool {
	return k == Temperature || k == Network
}

// Section is one block of the panel: a history graph plus the host-owned
// choice between the graph and the numeric rows.
type Section struct {
	Kind  Kind
	Graph *graph.Shared
	// GraphView is toggled by the host; Panel never reads it.
	GraphView bool
}

// Bar is a progress-bar style readout.
type Bar struct {
	Label    string
	Fraction float64
	Text     string
}

// Reading is a label/value readout.
type Reading struct {
	Label string
	Text  string
}

// Readouts are the numeric views of the latest snapshot.
type Readouts struct {
	CPUTotal     Bar
	CPUs         []Bar
	RAM          Bar
	Swap         Bar
	Temperatures []Reading
	NetIn        Reading
	NetOut       Reading
}

// Panel owns the graphs of the system usage view.
type Panel struct {
	unit     string
	sections []*Section
	logger   log.FieldLogger

	cpus     []graph.Handle
	ram      graph.Handle
	swap     graph.Handle
	temps    []graph.Handle
	netIn    graph.Handle
	netOut   graph.Handle
	readouts Readouts

	cpuGraph, memGraph, tempGraph, netGraph *graph.Shared
}

// New builds the panel for a machine with the given number of cores and the
// sensor labels enumerated at startup. Disabled sections get no graph; the
// temperature section is also dropped when there are no sensors.
func New(cfg *config.Config, cores int, sensors []string, logger log.FieldLogger) *Panel {
	if logger == nil {
		logger = log.StandardLogger()
	}
	p := &Panel{
		unit:   cfg.Display.TemperatureUnit,
		logger: logger.WithField("component", "panel"),
	}

	if cfg.Sections.CPU.Enabled {
		g := graph.New(Window, graph.WithMaxOverride(1))
		for i := 0; i < cores; i++ {
			p.cpus = append(p.cpus, g.Register(fmt.Sprintf("process %d", i+1), graph.Color(i), nil))
		}
		p.cpuGraph = p.add(CPU, g, cfg.Sections.CPU)
	}

	if cfg.Sections.Memory.Enabled {
		g := graph.New(Window, graph.WithMaxOverride(1))
		p.ram = g.Register("RAM", graph.Color(4), nil)
		p.swap = g.Register("Swap", graph.Color(2), nil)
		p.memGraph = p.add(Memory, g, cfg.Sections.Memory)
	}

	if cfg.Sections.Temperature.Enabled && len(sensors) > 0 {
		g := graph.New(Window)
		for i, label := range sensors {
			p.temps = append(p.temps, g.Register(label, graph.Color(i), nil))
		}
		p.tempGraph = p.add(Temperature, g, cfg.Sections.Temperature)
	}

	if cfg.Sections.Network.Enabled {
		g := graph.New(Window)
		p.netIn = g.Register("Input data", graph.Color(1), nil)
		p.netOut = g.Register("Output data", graph.Color(2), nil)
		p.netGraph = p.add(Network, g, cfg.Sections.Network)
	}

	p.readouts = p.format(&sysinfo.Snapshot{
		CPUs:         make([]float64, cores),
		Temperatures: placeholderTemperatures(sensors),
	})
	return p
}

func (p *Panel) add(kind Kind, g *graph.Graph, cfg config.SectionConfig) *graph.Shared {
	shared := graph.Share(g)
	p.sections = append(p.sections, &Section{Kind: kind, Graph: shared, GraphView: cfg.GraphView})
	return shared
}

// Sections returns the enabled sections in display order.
func (p *Panel) Sections() []*Section {
	return p.sections
}

// Section returns the section of the given kind, if enabled.
func (p *Panel) Section(kind Kind) (*Section, bool) {
	for _, s := range p.sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return nil, false
}

// Readouts returns the readouts of the last applied snapshot.
func (p *Panel) Readouts() Readouts {
	return p.readouts
}

// Apply records one sample per series and invalidates each graph once, so
// the next paint reflects a complete tick.
func (p *Panel) Apply(s *sysinfo.Snapshot) Readouts {
	if p.cpuGraph != nil {
		if len(s.CPUs) != len(p.cpus) {
			p.logger.WithFields(log.Fields{
				"expected": len(p.cpus),
				"got":      len(s.CPUs),
			}).Debug("core count mismatch")
		}
		p.cpuGraph.Update(func(g *graph.Graph) {
			for i, h := range p.cpus {
				g.Record(h, at(s.CPUs, i))
			}
			g.Invalidate()
		})
	}

	if p.memGraph != nil {
		p.memGraph.Update(func(g *graph.Graph) {
			g.Record(p.ram, s.RAMFraction())
			g.Record(p.swap, s.SwapFraction())
			g.Invalidate()
		})
	}

	if p.tempGraph != nil {
		p.tempGraph.Update(func(g *graph.Graph) {
			for i, h := range p.temps {
				var c float64
				if i < len(s.Temperatures) {
					c = s.Temperatures[i].Celsius
				}
				g.Record(h, c)
			}
			g.Invalidate()
		})
	}

	if p.netGraph != nil {
		p.netGraph.Update(func(g *graph.Graph) {
			g.Record(p.netIn, float64(s.NetIn))
			g.Record(p.netOut, float64(s.NetOut))
			g.Invalidate()
		})
	}

	p.readouts = p.format(s)
	return p.readouts
}

func (p *Panel) format(s *sysinfo.Snapshot) Readouts {
	r := Readouts{
		CPUTotal: percentBar("Total CPU usage", s.CPUTotal),
		CPUs:     make([]Bar, len(s.CPUs)),
		RAM: Bar{
			Label:    "RAM",
			Fraction: s.RAMFraction(),
			Text:     usedOfTotal(s.RAMUsed, s.RAMTotal),
		},
		Swap: Bar{
			Label:    "Swap",
			Fraction: s.SwapFraction(),
			Text:     usedOfTotal(s.SwapUsed, s.SwapTotal),
		},
		NetIn:  Reading{Label: "Input data", Text: bytes(s.NetIn)},
		NetOut: Reading{Label: "Output data", Text: bytes(s.NetOut)},
	}
	for i, f := range s.CPUs {
		r.CPUs[i] = percentBar(strconv.Itoa(i+1), f)
	}
	for _, t := range s.Temperatures {
		r.Temperatures = append(r.Temperatures, Reading{Label: t.Label, Text: p.temperature(t.Celsius)})
	}
	return r
}

// Format renders a raw series value of the given section the way the
// readouts do: fractions as percent, temperatures in the configured unit,
// network counts in bytes.
func (p *Panel) Format(kind Kind, v float64) string {
	switch kind {
	case CPU, Memory:
		return percent(v)
	case Temperature:
		return p.temperature(v)
	case Network:
		return bytes(uint64(max(v, 0)))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Legend is the legend entry of a rendered series: its label and newest
// value, plus the top of the axis for dynamically scaled sections.
func (p *Panel) Legend(kind Kind, line graph.Polyline) string {
	text := line.Label + ": " + p.Format(kind, line.Latest)
	if kind.DynamicScale() {
		text += " (max " + p.Format(kind, line.Scale) + ")"
	}
	return text
}

func (p *Panel) temperature(celsius float64) string {
	if p.unit == config.Fahrenheit {
		return fmt.Sprintf("%.1f °F", celsius*1.8+32)
	}
	return fmt.Sprintf("%.1f °C", celsius)
}

func percentBar(label string, f float64) Bar {
	return Bar{Label: label, Fraction: f, Text: percent(f)}
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f %%", f*100)
}

func usedOfTotal(used, total uint64) string {
	return fmt.Sprintf("%d / %d B", used, total)
}

func bytes(n uint64) string {
	return fmt.Sprintf("%d B", n)
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func placeholderTemperatures(sensors []string) []sysinfo.Temperature {
	temps := make([]sysinfo.Temperature, len(sensors))
	for i, label := range sensors {
		temps[i].Label = label
	}
	return temps
}
