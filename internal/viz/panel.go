package viz

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/reactorsim/internal/automation"
	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/sim"
)

const (
	DefaultFPS      = 30
	RodStep         = 0.05
	historyCapacity = 300
	coreWidth       = 24
	coreHeight      = 10
)

type TickMsg time.Time

// Model is the live control panel. Each frame advances the clock by
// stepsPerFrame ticks and records the result.
type Model struct {
	clock         *reactor.Clock
	rec           *sim.Recorder
	fps           int
	stepsPerFrame int
	steps         int
	schedule      *automation.Schedule
	hold          int
	canvas        *Canvas
	power         []float64
	temperature   []float64
	reactivity    []float64
	done          bool
	err           error
}

// NewModel wires rec to the clock's engine and records the starting state.
func NewModel(clock *reactor.Clock, rec *sim.Recorder, fps, stepsPerFrame int) Model {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if stepsPerFrame <= 0 {
		stepsPerFrame = 1
	}
	clock.Engine().Subscribe(rec.OnEvent)

	m := Model{
		clock:         clock,
		rec:           rec,
		fps:           fps,
		stepsPerFrame: stepsPerFrame,
		canvas:        NewCanvas(coreWidth, coreHeight),
		power:         make([]float64, 0, historyCapacity),
		temperature:   make([]float64, 0, historyCapacity),
		reactivity:    make([]float64, 0, historyCapacity),
	}
	m.record(clock.Engine().Snapshot())
	return m
}

// WithSchedule returns a copy of m that applies the scenario actions as
// simulated time reaches them, alongside the keyboard controls.
func (m Model) WithSchedule(s *automation.Schedule) Model {
	m.schedule = s
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.clock.TogglePause()
			m.hold = 0
		case "up":
			m.clock.SpeedUp()
		case "down":
			m.clock.SpeedDown()
		case "[":
			m.moveRods(-RodStep)
		case "]":
			m.moveRods(RodStep)
		case "s":
			m.clock.Engine().RequestStop()
			m.done = true
		}
	case TickMsg:
		if m.done {
			return m, nil
		}
		m.advance()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		if err := m.applyDue(); err != nil {
			m.err = err
			m.done = true
			return
		}
		snap, err := m.clock.Tick()
		if err != nil {
			if !errors.Is(err, reactor.ErrNotRunning) && !errors.Is(err, reactor.ErrStopped) {
				m.err = err
			}
			m.done = true
			return
		}
		m.steps++
		if m.clock.Paused() {
			// a scripted pause resumes on its own, a key pause does not
			if m.hold > 0 {
				m.hold--
				if m.hold == 0 {
					m.clock.Resume()
				}
			}
			m.rec.Observe(snap)
			return
		}
		m.record(snap)
		if !snap.Running {
			m.done = true
			return
		}
	}
}

func (m *Model) applyDue() error {
	if m.schedule == nil {
		return nil
	}
	for _, a := range m.schedule.Due(m.clock.Elapsed()) {
		if err := a.Apply(m.clock); err != nil {
			return err
		}
		if a.Pause > m.hold {
			m.hold = a.Pause
		}
	}
	return nil
}

func (m *Model) moveRods(delta float64) {
	cur := m.clock.Engine().Snapshot().Controls.RodInsertion
	next := math.Round((cur+delta)*100) / 100
	next = math.Max(0, math.Min(1, next))
	if err := m.clock.Engine().SetControlRodInsertion(next); err != nil {
		m.err = err
	}
}

func (m *Model) record(s reactor.Snapshot) {
	m.rec.Observe(s)
	m.power = appendCapped(m.power, s.ThermalPower/1e6)
	m.temperature = appendCapped(m.temperature, s.Temperature)
	m.reactivity = appendCapped(m.reactivity, s.Reactivity)
}

func appendCapped(vs []float64, v float64) []float64 {
	vs = append(vs, v)
	if len(vs) > historyCapacity {
		vs = vs[1:]
	}
	return vs
}

// Done reports whether the run has ended by collapse, stop or error.
func (m Model) Done() bool { return m.done }

func (m Model) Err() error { return m.err }

// Result closes the recording of the session.
func (m Model) Result() *sim.Result {
	outcome := sim.OutcomeStopped
	if !m.rec.Last().Running {
		outcome = sim.OutcomeCollapsed
	}
	return m.rec.Result(outcome, m.steps)
}

func (m Model) View() string {
	s := m.clock.Engine().Snapshot()

	left := []string{
		line("temperature", fmt.Sprintf("%.1f °C", s.Temperature)),
		line("pressure", fmt.Sprintf("%.2f MPa", s.Pressure/1e6)),
		line("vapor fraction", fmt.Sprintf("%.2f", s.VaporFraction)),
		line("steam quality", fmt.Sprintf("%.2f", s.SteamQuality)),
		line("power", fmt.Sprintf("%.1f MW", s.ThermalPower/1e6)),
		line("reactivity", fmt.Sprintf("%.4f", s.Reactivity)),
		line("control rods", fmt.Sprintf("%d (%.1f%%)", s.Design.ControlRods, s.Controls.RodInsertion*100)),
		line("", ProgressBar(s.Controls.RodInsertion, 20)),
		line("flow rate", fmt.Sprintf("%.1f kg/s", s.FlowRate)),
	}

	right := []string{
		line("xenon", fmt.Sprintf("%.2f", s.Xenon)),
		line("iodine", fmt.Sprintf("%.2f", s.Iodine)),
		line("samarium", fmt.Sprintf("%.2f", s.Samarium)),
		line("radiation", fmt.Sprintf("%.2f Sv/h", s.RadiationLevel)),
		line("release", fmt.Sprintf("%.2f Sv/h", s.ReleaseRate)),
		line("containment", fmt.Sprintf("%.1f%%", s.ContainmentIntegrity)),
		line("", ProgressBar(s.ContainmentIntegrity/100, 20)),
		line("fission products", fmt.Sprintf("%.2e", s.FissionProducts)),
		line("reactivity trend", Sparkline(m.reactivity, 20)),
	}

	state := "running"
	if m.clock.Paused() {
		state = "paused"
	}
	if m.done {
		state = "ended"
	}
	status := []string{
		line("status", state),
		line("speed", fmt.Sprintf("%.1fx", m.clock.Speed())),
		line("time", fmt.Sprintf("%.1f s", s.Time)),
		statusLine("cooling system", s.CoolingEfficiency > 0),
		statusLine("power system", s.PowerStatus == reactor.PowerActive),
	}

	coreStyle := CoreCool
	if DrawCore(m.canvas, s) {
		coreStyle = CoreHot
	}

	var b strings.Builder
	b.WriteString(Title.Render("RBMK REACTOR SIMULATION") + "\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		Panel.Render(strings.Join(left, "\n")),
		Panel.Render(coreStyle.Render(m.canvas.String())),
		Panel.Render(strings.Join(right, "\n")),
	))
	b.WriteString("\n")

	charts := []string{Panel.Render(strings.Join(status, "\n"))}
	if len(m.power) > 1 {
		charts = append(charts, Panel.Render(asciigraph.Plot(m.power,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("power (MW)"))))
	}
	if len(m.temperature) > 1 {
		charts = append(charts, Panel.Render(asciigraph.Plot(m.temperature,
			asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("temperature (°C)"))))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, charts...))
	b.WriteString("\n")

	if !s.Running {
		b.WriteString(AlarmPanel.Render(AccidentReport(s)) + "\n")
	}
	if m.err != nil {
		b.WriteString(StatusFailed.Render("error: "+m.err.Error()) + "\n")
	}

	b.WriteString(Separator(60) + "\n")
	b.WriteString(KeyHint.Render("space: pause/resume  ↑/↓: speed  [/]: rods  s: stop  esc/q: exit"))
	return b.String()
}

func line(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value)
}

func statusLine(label string, active bool) string {
	if active {
		return MetricLabel.Render(label) + StatusActive.Render("active")
	}
	return MetricLabel.Render(label) + StatusFailed.Render("failed")
}

// Run opens the panel on the terminal and blocks until the operator quits.
// The returned model holds the recorded session.
func Run(m Model) (Model, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return m, err
	}
	return final.(Model), nil
}
