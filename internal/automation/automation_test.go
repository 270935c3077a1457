package automation

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/reactorsim/internal/reactor"
)

func ptr(v float64) *float64 { return &v }

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "withdraw.yaml")
	data := []byte(`
name: withdraw
description: pull every rod after 50ms
actions:
  - at: 0.05
    rods: 0
  - at: 0.01
    speed: 0.5
  - at: 0.2
    stop: true
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sc.Name != "withdraw" || len(sc.Actions) != 3 {
		t.Fatalf("unexpected scenario: %+v", sc)
	}
	if sc.Actions[0].Rods == nil || *sc.Actions[0].Rods != 0 {
		t.Errorf("rods action not parsed: %+v", sc.Actions[0])
	}
	if sc.Actions[1].Rods != nil {
		t.Error("unset rods should stay nil")
	}
}

func TestLoadScenarioInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"rods out of range", "actions:\n  - at: 1\n    rods: 2\n"},
		{"negative time", "actions:\n  - at: -1\n    stop: true\n"},
		{"negative pause", "actions:\n  - at: 1\n    pause: -3\n"},
		{"speed not a number", "actions:\n  - at: 1\n    speed: .nan\n"},
		{"action does nothing", "actions:\n  - at: 1.0\n"},
		{"no-op among valid actions", "actions:\n  - at: 0\n    rods: 0.5\n  - at: 2\n    pause: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if sc, err := LoadScenario(path); err == nil {
				t.Errorf("expected error, got scenario %+v", sc)
			}
		})
	}
}

func TestScheduleDue(t *testing.T) {
	sch := NewSchedule(&Scenario{Actions: []Action{
		{At: 0.3, Stop: true},
		{At: 0.1, Rods: ptr(0.5)},
		{At: 0.1, Speed: ptr(1)},
		{At: 0.2, Pause: 10},
	}})

	if got := sch.Due(0.05); len(got) != 0 {
		t.Errorf("expected nothing due at 0.05, got %v", got)
	}

	got := sch.Due(0.1)
	if len(got) != 2 || got[0].Rods == nil || got[1].Speed == nil {
		t.Fatalf("expected rods then speed at 0.1, got %v", got)
	}
	if again := sch.Due(0.1); len(again) != 0 {
		t.Errorf("actions returned twice: %v", again)
	}

	got = sch.Due(1.0)
	if len(got) != 2 || got[0].Pause != 10 || !got[1].Stop {
		t.Errorf("expected pause then stop, got %v", got)
	}
	if sch.Remaining() != 0 {
		t.Errorf("expected empty schedule, %d remaining", sch.Remaining())
	}
}

func TestNilScenarioSchedule(t *testing.T) {
	sch := NewSchedule(nil)
	if got := sch.Due(100); len(got) != 0 {
		t.Errorf("expected no actions, got %v", got)
	}
}

func TestActionApply(t *testing.T) {
	eng := reactor.NewEngine(reactor.NominalState(),
		reactor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	clk := reactor.NewClock(eng, reactor.DefaultDt, reactor.DefaultSpeed)

	a := Action{Rods: ptr(0.25), Speed: ptr(5), Pause: 3}
	if err := a.Apply(clk); err != nil {
		t.Fatal(err)
	}
	if got := eng.Snapshot().Controls.RodInsertion; got != 0.25 {
		t.Errorf("rods = %v, want 0.25", got)
	}
	if clk.Speed() != reactor.MaxSpeed {
		t.Errorf("speed = %v, want clamp to %v", clk.Speed(), reactor.MaxSpeed)
	}
	if !clk.Paused() {
		t.Error("expected clock paused")
	}

	if err := (Action{Stop: true}).Apply(clk); err != nil {
		t.Fatal(err)
	}
	if _, err := clk.Tick(); !errors.Is(err, reactor.ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestActionApplyRejectsBadRods(t *testing.T) {
	eng := reactor.NewEngine(reactor.NominalState(),
		reactor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	clk := reactor.NewClock(eng, reactor.DefaultDt, reactor.DefaultSpeed)

	err := Action{Rods: ptr(-0.1)}.Apply(clk)
	if !errors.Is(err, reactor.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSweepValues(t *testing.T) {
	tests := []struct {
		name  string
		sweep Sweep
		want  []float64
	}{
		{"grid", Sweep{Min: 0, Max: 1, Steps: 5}, []float64{0, 0.25, 0.5, 0.75, 1}},
		{"single", Sweep{Min: 0.3, Max: 1, Steps: 1}, []float64{0.3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sweep.Values()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("value %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSweepStates(t *testing.T) {
	base := reactor.NominalState()
	states, err := Sweep{Param: "rods", Min: 0, Max: 1, Steps: 3}.States(base)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{0, 0.5, 1} {
		if states[i].Controls.RodInsertion != want {
			t.Errorf("state %d rods = %v, want %v", i, states[i].Controls.RodInsertion, want)
		}
	}
	if base.Controls.RodInsertion != 0.7 {
		t.Error("base state modified")
	}

	if _, err := (Sweep{Param: "vapor_fraction", Min: 0, Max: 2, Steps: 3}).States(base); err == nil {
		t.Error("expected error for vapor fraction above 1")
	}
	if _, err := (Sweep{Param: "flux", Min: 0, Max: 1, Steps: 2}).States(base); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
