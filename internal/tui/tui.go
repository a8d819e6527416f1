// Package tui is the interactive operator console: one reactor, keyboard
// control of the five inputs, live charts, and an alarm feed.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/reactorsim/internal/reactor"
)

const (
	historyCap = 120
	graphWidth = 60
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	label   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	panel   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	banner  = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("124")).Bold(true).Padding(0, 2)
	helpTxt = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type TickMsg time.Time

func tickCmd(rate int) tea.Cmd {
	interval := time.Second / time.Duration(rate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type Model struct {
	r      *reactor.Reactor
	dt     float64
	rate   int
	paused bool

	tempHist  []float64
	powerHist []float64
	events    []string

	width, height int
}

func NewModel(r *reactor.Reactor, rate int) *Model {
	m := &Model{
		r:         r,
		dt:        r.Config().Dt,
		rate:      rate,
		tempHist:  make([]float64, 0, historyCap),
		powerHist: make([]float64, 0, historyCap),
	}
	record := func(ev reactor.Event) {
		line := fmt.Sprintf("t=%-7.1f %-6s %s", ev.State.Time, ev.Topic, ev.Message)
		m.events = append(m.events, line)
		if len(m.events) > 6 {
			m.events = m.events[len(m.events)-6:]
		}
	}
	r.On(reactor.TopicAlarm, record)
	r.On(reactor.TopicTrip, record)
	return m
}

func (m *Model) Init() tea.Cmd { return tickCmd(m.rate) }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case TickMsg:
		if !m.paused {
			m.r.Tick(m.dt)
			s := m.r.Snapshot()
			m.tempHist = push(m.tempHist, s.CoreTemp)
			m.powerHist = push(m.powerHist, s.ReactorPower)
		}
		return m, tickCmd(m.rate)

	case tea.KeyMsg:
		s := m.r.Snapshot()
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "r":
			m.r.SetControlRods(s.ControlRods - 5)
		case "R":
			m.r.SetControlRods(s.ControlRods + 5)
		case "p":
			m.r.SetPumpPower(s.PumpPower - 5)
		case "P":
			m.r.SetPumpPower(s.PumpPower + 5)
		case "t":
			m.r.SetTurbinePitch(s.TurbinePitch - 5)
		case "T":
			m.r.SetTurbinePitch(s.TurbinePitch + 5)
		case "g":
			m.r.SetGeneratorLoad(s.GeneratorLoad - 5)
		case "G":
			m.r.SetGeneratorLoad(s.GeneratorLoad + 5)
		case "d":
			m.r.SetGridLoad(s.GridLoad - 100)
		case "D":
			m.r.SetGridLoad(s.GridLoad + 100)
		case "s":
			m.r.Scram()
		case "x":
			m.r.ResetTrip()
		}
		return m, nil
	}
	return m, nil
}

func push(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCap {
		hist = hist[len(hist)-historyCap:]
	}
	return hist
}

func (m *Model) View() string {
	s := m.r.Snapshot()
	cfg := m.r.Config()

	var b strings.Builder
	b.WriteString(cyan.Render("reactorsim"))
	b.WriteString(dim.Render(fmt.Sprintf("  t=%.1fs", s.Time)))
	if m.paused {
		b.WriteString(yellow.Render("  [paused]"))
	}
	b.WriteString("\n")

	switch {
	case s.Meltdown:
		b.WriteString(banner.Render("MELTDOWN"))
		b.WriteString("\n")
	case s.Scrammed:
		b.WriteString(red.Render("SCRAMMED — x to reset trip"))
		b.WriteString("\n")
	}

	stats := strings.Join([]string{
		row("core temp", fmt.Sprintf("%8.2f / %.0f", s.CoreTemp, cfg.MeltdownTemp), tempStyle(s, cfg)),
		row("power", fmt.Sprintf("%8.0f", s.ReactorPower), white),
		row("pressure", fmt.Sprintf("%8.2f / %.0f", s.Pressure, cfg.PressureSafe), pressureStyle(s, cfg)),
		row("rods", gauge(s.ControlRods), white),
		row("pump", gauge(s.PumpPower), white),
		row("pitch", gauge(s.TurbinePitch), white),
		row("gen load", gauge(s.GeneratorLoad), white),
		row("water", fmt.Sprintf("%8.0f / %.0f", s.Water, cfg.WaterCapacity), white),
		row("steam", fmt.Sprintf("%8.0f / %.0f", s.Steam, cfg.SteamCapacity), white),
		row("turbine", fmt.Sprintf("%8.0f rpm", s.TurbineRPM), white),
		row("grid", fmt.Sprintf("%8.0f @ %.0fV", s.GridLoad, s.GridVoltage), voltStyle(s, cfg)),
	}, "\n")
	b.WriteString(panel.Render(stats))
	b.WriteString("\n")

	if len(m.tempHist) > 1 {
		b.WriteString(green.Render(asciigraph.Plot(m.tempHist,
			asciigraph.Height(6), asciigraph.Width(graphWidth),
			asciigraph.Caption("core temp"))))
		b.WriteString("\n")
		b.WriteString(cyan.Render(asciigraph.Plot(m.powerHist,
			asciigraph.Height(6), asciigraph.Width(graphWidth),
			asciigraph.Caption("reactor power"))))
		b.WriteString("\n")
	}

	if len(m.events) > 0 {
		b.WriteString(yellow.Render(strings.Join(m.events, "\n")))
		b.WriteString("\n")
	}

	b.WriteString(helpTxt.Render("r/R rods  p/P pump  t/T pitch  g/G gen  d/D demand  s scram  x reset  space pause  q quit"))
	return b.String()
}

func row(name, value string, style lipgloss.Style) string {
	return label.Render(name) + style.Render(value)
}

func gauge(pct float64) string {
	filled := int(pct / 10)
	return fmt.Sprintf("%s%s %5.1f%%",
		strings.Repeat("█", filled), strings.Repeat("░", 10-filled), pct)
}

func tempStyle(s reactor.State, cfg reactor.Config) lipgloss.Style {
	switch {
	case s.CoreTemp >= cfg.MaxCoreTemp:
		return red
	case s.CoreTemp >= cfg.MaxCoreTemp*0.7:
		return yellow
	}
	return green
}

func pressureStyle(s reactor.State, cfg reactor.Config) lipgloss.Style {
	switch {
	case s.Pressure >= cfg.PressureSafe*0.9:
		return red
	case s.Pressure >= cfg.PressureSafe*0.7:
		return yellow
	}
	return green
}

func voltStyle(s reactor.State, cfg reactor.Config) lipgloss.Style {
	if s.GridVoltage < cfg.GridNominalVoltage {
		return yellow
	}
	return green
}

// Run blocks until the operator quits.
func Run(r *reactor.Reactor, rate int) error {
	p := tea.NewProgram(NewModel(r, rate), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
