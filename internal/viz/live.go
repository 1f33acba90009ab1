package viz

import (
	"fmt"
	"math/cmplx"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gwecho/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(48)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	mergerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	divider     = "─────────────────────"
)

type TickMsg time.Time

// EngineFactory builds a fresh engine, used at startup and on reset.
type EngineFactory func() (*sim.Engine, error)

// Model runs the simulation engine inside a Bubble Tea program, rendering a
// mid-plane slice of |δΦ| alongside strain and energy traces.
type Model struct {
	factory EngineFactory
	engine  *sim.Engine

	canvas *Canvas
	slice  int

	running       bool
	stepsPerFrame int
	showHelp      bool
	err           error

	last       sim.Snapshot
	strainHist []float64
	energyHist []float64
}

// NewModel builds the initial engine and visualization state.
func NewModel(factory EngineFactory) (Model, error) {
	engine, err := factory()
	if err != nil {
		return Model{}, fmt.Errorf("build engine: %w", err)
	}
	return Model{
		factory:       factory,
		engine:        engine,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		slice:         engine.Field().Config().NZ / 2,
		running:       true,
		stepsPerFrame: 1,
		strainHist:    make([]float64, 0, historyCapacity),
		energyHist:    make([]float64, 0, historyCapacity),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the engine.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "[":
			m.moveSlice(-1)
		case "]":
			m.moveSlice(1)
		case "+", "=":
			if m.stepsPerFrame < 64 {
				m.stepsPerFrame *= 2
			}
		case "-", "_":
			if m.stepsPerFrame > 1 {
				m.stepsPerFrame /= 2
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.advance()
		}
		m.draw()
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		snap, err := m.engine.Step()
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.last = snap
	}
	m.strainHist = appendBounded(m.strainHist, m.last.Strain.Amplitude)
	m.energyHist = appendBounded(m.energyHist, m.last.Stats.TotalEnergy)
}

func appendBounded(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m *Model) moveSlice(dir int) {
	nz := m.engine.Field().Config().NZ
	m.slice += dir
	if m.slice < 0 {
		m.slice = 0
	}
	if m.slice >= nz {
		m.slice = nz - 1
	}
}

// reset rebuilds the engine from the factory, discarding all history.
func (m *Model) reset() {
	engine, err := m.factory()
	if err != nil {
		m.err = err
		return
	}
	m.engine = engine
	m.err = nil
	m.last = sim.Snapshot{}
	m.strainHist = m.strainHist[:0]
	m.energyHist = m.energyHist[:0]
	m.slice = engine.Field().Config().NZ / 2
	m.running = true
}

// draw renders the z-slice amplitude map and overlays the binary positions.
func (m *Model) draw() {
	m.canvas.Clear()

	f := m.engine.Field()
	cfg := f.Config()
	phi := f.Phi()

	peak := 0.0
	base := cfg.NX * cfg.NY * m.slice
	for idx := base; idx < base+cfg.NX*cfg.NY; idx++ {
		if a := cmplx.Abs(phi[idx]); a > peak {
			peak = a
		}
	}

	for row := 0; row < m.canvas.Height; row++ {
		for col := 0; col < m.canvas.Width; col++ {
			i := col * cfg.NX / m.canvas.Width
			j := row * cfg.NY / m.canvas.Height
			if peak <= 0 {
				continue
			}
			a := cmplx.Abs(phi[base+i+cfg.NX*j])
			m.canvas.Shade(col, row, a/peak)
		}
	}

	merger := m.engine.Merger()
	if !merger.HasMerged() {
		for _, pos := range []struct{ x, y float64 }{
			{merger.Position1().X, merger.Position1().Y},
			{merger.Position2().X, merger.Position2().Y},
		} {
			px := int(pos.x / cfg.DX * float64(m.canvas.Width*2) / float64(cfg.NX))
			py := int(pos.y / cfg.DY * float64(m.canvas.Height*4) / float64(cfg.NY))
			m.canvas.DrawMarker(px, py, 1)
		}
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("FRACTIONAL WAVE ENGINE") + "\n")

	status := "RUNNING"
	if m.err != nil {
		status = errorStyle.Render("ERROR: " + m.err.Error())
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n\n")

	if len(m.strainHist) > 1 {
		chart := asciigraph.Plot(m.strainHist, asciigraph.Height(4), asciigraph.Width(32), asciigraph.Caption("Strain |h|"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.energyHist) > 1 {
		chart := asciigraph.Plot(m.energyHist, asciigraph.Height(4), asciigraph.Width(32), asciigraph.Caption("Field energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.4fs", m.last.Time)) + "\n")
	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d (x%d/frame)", m.last.Step, m.stepsPerFrame)) + "\n")
	s.WriteString(labelStyle.Render("Slice z") + valueStyle.Render(fmt.Sprintf("%d", m.slice)) + "\n")
	s.WriteString("\nBINARY\n")
	if m.last.Merged {
		s.WriteString(mergerStyle.Render("  MERGED") + "\n")
		s.WriteString(labelStyle.Render("E radiated") + valueStyle.Render(fmt.Sprintf("%.3e J", m.last.EnergyRadiated)) + "\n")
	} else {
		s.WriteString(labelStyle.Render("Separation") + valueStyle.Render(fmt.Sprintf("%.1f km", m.last.Separation/1e3)) + "\n")
		s.WriteString(labelStyle.Render("Orbital f") + valueStyle.Render(fmt.Sprintf("%.2f rad/s", m.last.OrbitalFrequency)) + "\n")
		s.WriteString(labelStyle.Render("Phase") + valueStyle.Render(fmt.Sprintf("%.3f rad", m.last.OrbitalPhase)) + "\n")
	}
	s.WriteString("\nECHOES\n")
	if m.last.MergerDetected {
		echoes := m.engine.Echoes()
		s.WriteString(labelStyle.Render("Merger at") + valueStyle.Render(fmt.Sprintf("%.4fs", echoes.MergerTime())) + "\n")
		s.WriteString(labelStyle.Render("Active") + valueStyle.Render(fmt.Sprintf("%d", m.last.ActiveEchoes)) + "\n")
		if next, ok := echoes.NextEcho(m.last.Time); ok {
			s.WriteString(labelStyle.Render("Next") + valueStyle.Render(fmt.Sprintf("#%d @ %.4fs (gap %d)", next.EchoNumber, next.Time, next.PrimeGap)) + "\n")
		} else {
			s.WriteString(labelStyle.Render("Next") + valueStyle.Render("train complete") + "\n")
		}
	} else {
		s.WriteString(labelStyle.Render("Status") + valueStyle.Render("waiting for merger") + "\n")
	}

	s.WriteString(helpStyle.Render("\n" + divider + "\nSP:Pause R:Reset Q:Quit\n[ ]:Slice +/-:Speed ?:Help"))

	canvasView := canvasStyle.Render(m.canvas.String())
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)

	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  [        - Lower z-slice            ║
║  ]        - Raise z-slice            ║
║  +        - Double steps per frame   ║
║  -        - Halve steps per frame    ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the interactive view and blocks until the user quits.
func Run(factory EngineFactory) error {
	model, err := NewModel(factory)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model)
	_, err = p.Run()
	return err
}
