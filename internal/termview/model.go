// Package termview is the terminal front-end of the system usage panel: a
// bubbletea program that shows numeric readouts or braille history graphs
// for each section.
package termview

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sysmon-gui/internal/panel"
	"sysmon-gui/internal/sysinfo"
)

const (
	defaultWidth  = 80
	graphRows     = 6
	minGraphCols  = 10
	labelWidth    = 16
	readoutWidth  = 24
	accentColor   = "#00ff41"
	mutedColor    = "#6c6c6c"
	warningsColor = "#ffaf00"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	focusStyle   = headerStyle.Foreground(lipgloss.Color(accentColor))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(mutedColor))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(warningsColor))
	labelStyle   = lipgloss.NewStyle().Width(labelWidth)
)

// SnapshotMsg delivers a new snapshot to the model.
type SnapshotMsg struct {
	Snapshot *sysinfo.Snapshot
}

// WaitForSnapshot returns a tea.Cmd that waits for the next snapshot.
// It quits the program when the channel is closed.
func WaitForSnapshot(ch <-chan *sysinfo.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return tea.Quit()
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// Model is the root bubbletea model.
type Model struct {
	panel    *panel.Panel
	snapCh   <-chan *sysinfo.Snapshot
	readouts panel.Readouts
	warnings []string

	width  int
	height int
	focus  int

	help help.Model
	bar  progress.Model
}

// New creates a model that renders p and feeds it from snapCh.
func New(p *panel.Panel, snapCh <-chan *sysinfo.Snapshot) Model {
	return Model{
		panel:    p,
		snapCh:   snapCh,
		readouts: p.Readouts(),
		width:    defaultWidth,
		help:     help.New(),
		bar:      newBar(defaultWidth),
	}
}

func newBar(width int) progress.Model {
	return progress.New(
		progress.WithSolidFill(accentColor),
		progress.WithoutPercentage(),
		progress.WithWidth(barWidth(width)),
	)
}

func barWidth(width int) int {
	return max(width-labelWidth-readoutWidth, minGraphCols)
}

func (m Model) Init() tea.Cmd {
	return WaitForSnapshot(m.snapCh)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = barWidth(msg.Width)
		return m, nil

	case SnapshotMsg:
		m.readouts = m.panel.Apply(msg.Snapshot)
		m.warnings = msg.Snapshot.Warnings
		return m, WaitForSnapshot(m.snapCh)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sections := m.panel.Sections()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case len(sections) == 0:
		return m, nil
	case key.Matches(msg, keys.Next):
		m.focus = (m.focus + 1) % len(sections)
	case key.Matches(msg, keys.Prev):
		m.focus = (m.focus - 1 + len(sections)) % len(sections)
	case key.Matches(msg, keys.Toggle):
		s := sections[m.focus]
		s.GraphView = !s.GraphView
	case key.Matches(msg, keys.ToggleAll):
		on := false
		for _, s := range sections {
			if !s.GraphView {
				on = true
			}
		}
		for _, s := range sections {
			s.GraphView = on
		}
	}
	return m, nil
}

// Focus returns the index of the focused section.
func (m Model) Focus() int {
	return m.focus
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("System usage"))
	b.WriteString("\n")
	b.WriteString(m.barRow(m.readouts.CPUTotal))
	b.WriteString("\n\n")

	for i, s := range m.panel.Sections() {
		b.WriteString(m.header(s, i == m.focus))
		b.WriteString("\n")
		if s.GraphView {
			b.WriteString(m.graphView(s))
		} else {
			b.WriteString(m.numericView(s.Kind))
		}
		b.WriteString("\n\n")
	}

	if len(m.warnings) > 0 {
		b.WriteString(warningStyle.Render("! " + strings.Join(m.warnings, "; ")))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) header(s *panel.Section, focused bool) string {
	mode := "[ ] Graph view"
	if s.GraphView {
		mode = "[x] Graph view"
	}
	if focused {
		return focusStyle.Render("▶ "+s.Kind.Title()) + "  " + mutedStyle.Render(mode)
	}
	return headerStyle.Render("  "+s.Kind.Title()) + "  " + mutedStyle.Render(mode)
}

func (m Model) numericView(kind panel.Kind) string {
	var rows []string
	switch kind {
	case panel.CPU:
		for _, bar := range m.readouts.CPUs {
			rows = append(rows, m.barRow(bar))
		}
	case panel.Memory:
		rows = append(rows, m.barRow(m.readouts.RAM), m.barRow(m.readouts.Swap))
	case panel.Temperature:
		for _, r := range m.readouts.Temperatures {
			rows = append(rows, readingRow(r))
		}
	case panel.Network:
		rows = append(rows, readingRow(m.readouts.NetIn), readingRow(m.readouts.NetOut))
	}
	return strings.Join(rows, "\n")
}

func (m Model) barRow(bar panel.Bar) string {
	return labelStyle.Render(bar.Label) + m.bar.ViewAs(bar.Fraction) + " " + bar.Text
}

func readingRow(r panel.Reading) string {
	return labelStyle.Render(r.Label) + r.Text
}

func (m Model) graphView(s *panel.Section) string {
	cols := max(m.width-2, minGraphCols)
	plot, geom := Plot(s.Graph, cols, graphRows)
	if geom.Empty() {
		return mutedStyle.Render("no series")
	}

	legend := make([]string, 0, len(geom.Series))
	for _, line := range geom.Series {
		legend = append(legend, styleFor(line.Color).Render("■")+" "+m.panel.Legend(s.Kind, line))
	}
	return plot + "\n" + legendLines(legend, m.width)
}

func legendLines(entries []string, width int) string {
	var (
		lines []string
		line  string
	)
	for _, e := range entries {
		switch {
		case line == "":
			line = e
		case lipgloss.Width(line)+3+lipgloss.Width(e) > width:
			lines = append(lines, line)
			line = e
		default:
			line += "   " + e
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
