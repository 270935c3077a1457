package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/reactorsim/internal/reactor"
)

func TestAccidentReport(t *testing.T) {
	s := reactor.NominalState()
	s.Time = 0.812
	s.Temperature = 1234.5
	s.Pressure = 9.5e6
	s.Running = false
	s.ContainmentIntegrity = 0

	report := AccidentReport(s.Snapshot())
	for _, want := range []string{"0.812 s", "1234.5 °C", "9.50 MPa", "3200.0 MW"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestStandardPanels(t *testing.T) {
	cols := map[string][]float64{
		"temperature_c": {270, 280, 290},
		"pressure_pa":   {7e6, 7.5e6, 8e6},
		"power_w":       {3.2e9, 3.3e9, 3.4e9},
	}
	panels := StandardPanels(func(name string) []float64 { return cols[name] })
	if len(panels) != 4 {
		t.Fatalf("expected 4 panels, got %d", len(panels))
	}
	if got := panels[0].Series[1]; got[2] != 8 {
		t.Errorf("pressure not scaled to MPa: %v", got)
	}
	if got := panels[1].Series[0]; got[0] != 3200 {
		t.Errorf("power not scaled to MW: %v", got)
	}

	out := RenderPanels(panels, 40, 5)
	if !strings.Contains(out, "temperature (°C) / pressure (MPa)") {
		t.Error("missing first caption")
	}
	if strings.Contains(out, "xenon / vapor fraction") {
		t.Error("empty panel should be skipped")
	}
}

func TestDrawCore(t *testing.T) {
	c := NewCanvas(coreWidth, coreHeight)
	s := reactor.NominalState()
	if DrawCore(c, s.Snapshot()) {
		t.Error("nominal core should not be hot")
	}
	if strings.Trim(c.String(), string(rune(brailleBlank))+"\n") == "" {
		t.Error("expected something drawn")
	}

	s.Temperature = 350
	if !DrawCore(c, s.Snapshot()) {
		t.Error("expected hot core above 300 °C")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 7, 0}, 8); got != "▁█▁" {
		t.Errorf("Sparkline = %q", got)
	}
	if got := []rune(Sparkline([]float64{1, 2, 3, 4}, 2)); len(got) != 2 {
		t.Errorf("expected 2 runes, got %d", len(got))
	}
}

func TestProgressThrottles(t *testing.T) {
	var buf strings.Builder
	p := NewProgress(&buf, 1, 1)
	s := reactor.NominalState()
	for i := 0; i < 100; i++ {
		s.Time = float64(i) * 0.01
		p.OnStep(s.Snapshot())
	}
	p.Done()

	if got := strings.Count(buf.String(), "\r"); got != 1 {
		t.Errorf("expected a single frame within one second, got %d", got)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("Done should end the line")
	}
}
