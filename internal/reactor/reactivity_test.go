package reactor

import (
	"math"
	"testing"
)

func TestComputeReactivity(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(s *State)
		expected float64
	}{
		{"nominal", func(s *State) {}, 0.94 - 0.03},
		{"rods fully inserted", func(s *State) { s.Controls.RodInsertion = 1 }, 0.94},
		{"rods fully withdrawn", func(s *State) { s.Controls.RodInsertion = 0 }, 0.94 - 0.1},
		{"xenon poisoned", func(s *State) { s.Xenon = 1 }, 0.91 - 0.1},
		{"hot fuel", func(s *State) { s.Temperature = 370 }, 0.91 - 0.01},
		{"double power", func(s *State) { s.ThermalPower = 6400e6 }, 0.91 - 0.1},
		{"no voids", func(s *State) { s.VaporFraction = 0 }, -0.03},
		{"full voids", func(s *State) { s.VaporFraction = 1 }, 4.7 - 0.03},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NominalState()
			tt.mutate(&s)
			if got := ComputeReactivity(s); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("ComputeReactivity() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReactivityFeedbackTerms(t *testing.T) {
	s := NominalState()
	s.VaporFraction = 0.5
	s.Xenon = 0.2
	s.Temperature = 300

	f := ReactivityFeedback(s)
	if math.Abs(f.Void-2.35) > 1e-12 {
		t.Errorf("void term = %v, want 2.35", f.Void)
	}
	if math.Abs(f.Xenon+0.02) > 1e-12 {
		t.Errorf("xenon term = %v, want -0.02", f.Xenon)
	}
	if math.Abs(f.Temperature+0.003) > 1e-12 {
		t.Errorf("temperature term = %v, want -0.003", f.Temperature)
	}
	if f.Total() != ComputeReactivity(s) {
		t.Errorf("Total() = %v, ComputeReactivity() = %v", f.Total(), ComputeReactivity(s))
	}
}

func TestComputeReactivityUnclamped(t *testing.T) {
	s := NominalState()
	s.Controls.RodInsertion = 1
	s.VaporFraction = 0
	s.Xenon = 50

	if got := ComputeReactivity(s); got > -4.9 {
		t.Errorf("expected strongly negative reactivity, got %v", got)
	}
}
