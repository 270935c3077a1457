package viz

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/reactorsim/internal/automation"
	"github.com/san-kum/reactorsim/internal/reactor"
	"github.com/san-kum/reactorsim/internal/sim"
)

func newTestModel(s reactor.State) Model {
	eng := reactor.NewEngine(s, reactor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	clk := reactor.NewClock(eng, reactor.DefaultDt, reactor.DefaultSpeed)
	return NewModel(clk, sim.NewRecorder(10), 0, 1)
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestTickAdvancesEngine(t *testing.T) {
	m := newTestModel(reactor.NominalState())
	m, cmd := update(t, m, TickMsg(time.Now()))
	if cmd == nil {
		t.Error("expected next tick to be scheduled")
	}

	snap := m.clock.Engine().Snapshot()
	if snap.Tick != 1 {
		t.Errorf("expected tick 1, got %d", snap.Tick)
	}
	if len(m.power) != 2 {
		t.Errorf("expected 2 power points, got %d", len(m.power))
	}
}

func TestPauseKey(t *testing.T) {
	m := newTestModel(reactor.NominalState())
	m, _ = update(t, m, key(" "))
	if !m.clock.Paused() {
		t.Fatal("expected paused after space")
	}

	before := m.clock.Engine().Snapshot()
	for i := 0; i < 5; i++ {
		m, _ = update(t, m, TickMsg(time.Now()))
	}
	after := m.clock.Engine().Snapshot()
	if after.Tick != before.Tick || after.Time != before.Time {
		t.Errorf("paused panel advanced from tick %d to %d", before.Tick, after.Tick)
	}
	if len(m.power) != 1 {
		t.Errorf("paused frames added history: %d points", len(m.power))
	}

	m, _ = update(t, m, key(" "))
	if m.clock.Paused() {
		t.Error("expected running after second space")
	}
}

func TestSpeedKeys(t *testing.T) {
	m := newTestModel(reactor.NominalState())
	m, _ = update(t, m, key("up"))
	m, _ = update(t, m, key("up"))
	if m.clock.Speed() != 0.3 {
		t.Errorf("expected speed 0.3, got %v", m.clock.Speed())
	}

	for i := 0; i < 10; i++ {
		m, _ = update(t, m, key("down"))
	}
	if m.clock.Speed() != reactor.MinSpeed {
		t.Errorf("expected speed clamped to %v, got %v", reactor.MinSpeed, m.clock.Speed())
	}
}

func TestRodKeys(t *testing.T) {
	m := newTestModel(reactor.NominalState())
	m, _ = update(t, m, key("["))
	if got := m.clock.Engine().Snapshot().Controls.RodInsertion; got != 0.65 {
		t.Errorf("expected rods 0.65, got %v", got)
	}

	for i := 0; i < 20; i++ {
		m, _ = update(t, m, key("]"))
	}
	if got := m.clock.Engine().Snapshot().Controls.RodInsertion; got != 1 {
		t.Errorf("expected rods clamped to 1, got %v", got)
	}
	if m.Err() != nil {
		t.Errorf("unexpected error %v", m.Err())
	}
}

func TestStopKey(t *testing.T) {
	m := newTestModel(reactor.NominalState())
	m, _ = update(t, m, TickMsg(time.Now()))
	m, _ = update(t, m, key("s"))
	if !m.Done() {
		t.Fatal("expected done after stop")
	}

	m, cmd := update(t, m, TickMsg(time.Now()))
	if cmd != nil {
		t.Error("expected ticking to stop")
	}
	if m.clock.Engine().Snapshot().Tick != 1 {
		t.Error("engine advanced after stop")
	}
	if res := m.Result(); res.Outcome != sim.OutcomeStopped || res.Ticks != 1 {
		t.Errorf("unexpected result %s ticks=%d", res.Outcome, res.Ticks)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		_, cmd := update(t, newTestModel(reactor.NominalState()), key(k))
		if cmd == nil {
			t.Errorf("%s: expected quit command", k)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestCollapseShowsReport(t *testing.T) {
	s := reactor.NominalState()
	s.VaporFraction = 1
	s.Controls.RodInsertion = 0

	eng := reactor.NewEngine(s, reactor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	m := NewModel(reactor.NewClock(eng, reactor.DefaultDt, reactor.DefaultSpeed), sim.NewRecorder(100), 0, 1000)

	for i := 0; i < 500 && !m.Done(); i++ {
		m, _ = update(t, m, TickMsg(time.Now()))
	}
	if !m.Done() {
		t.Fatal("expected the core to collapse")
	}

	view := m.View()
	if !strings.Contains(view, "CONTAINMENT COLLAPSED") {
		t.Error("view missing accident report")
	}
	res := m.Result()
	if res.Outcome != sim.OutcomeCollapsed {
		t.Errorf("expected collapsed outcome, got %s", res.Outcome)
	}
	if len(res.Events) == 0 {
		t.Error("expected recorded events")
	}
}

func TestViewShowsPanels(t *testing.T) {
	view := newTestModel(reactor.NominalState()).View()
	for _, want := range []string{"temperature", "xenon", "cooling system", "270.0 °C", "0.1x"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestScheduleDrivesPanel(t *testing.T) {
	rods := 0.25
	sc := &automation.Scenario{Actions: []automation.Action{
		{At: 0, Rods: &rods, Pause: 3},
		{At: 0.00045, Stop: true},
	}}
	m := newTestModel(reactor.NominalState()).WithSchedule(automation.NewSchedule(sc))

	m, _ = update(t, m, TickMsg(time.Now()))
	if got := m.clock.Engine().Snapshot().Controls.RodInsertion; got != rods {
		t.Errorf("rod insertion = %v, want %v", got, rods)
	}
	if !m.clock.Paused() {
		t.Fatal("expected scripted pause")
	}

	for i := 0; i < 2; i++ {
		m, _ = update(t, m, TickMsg(time.Now()))
	}
	if m.clock.Paused() {
		t.Error("scripted pause should end after 3 steps")
	}
	if tick := m.clock.Engine().Snapshot().Tick; tick != 0 {
		t.Errorf("engine advanced while paused: tick %d", tick)
	}

	for i := 0; i < 20 && !m.Done(); i++ {
		m, _ = update(t, m, TickMsg(time.Now()))
	}
	if !m.Done() {
		t.Fatal("scripted stop did not end the session")
	}
	if m.Err() != nil {
		t.Errorf("unexpected error: %v", m.Err())
	}
	if snap := m.clock.Engine().Snapshot(); snap.Tick != 5 {
		t.Errorf("expected stop after tick 5, got tick %d at t=%v", snap.Tick, snap.Time)
	}
}

func TestKeyPauseIsNotResumedBySchedule(t *testing.T) {
	m := newTestModel(reactor.NominalState()).WithSchedule(automation.NewSchedule(nil))
	m, _ = update(t, m, key(" "))
	for i := 0; i < 5; i++ {
		m, _ = update(t, m, TickMsg(time.Now()))
	}
	if !m.clock.Paused() {
		t.Error("key pause should hold until toggled")
	}
}
