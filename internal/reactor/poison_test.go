package reactor

import (
	"math"
	"testing"
)

func TestAdvancePoisonsFromClean(t *testing.T) {
	s := NominalState()
	AdvancePoisons(&s, 0.001, 0.1)

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"xenon", s.Xenon, 0.1 * 1e-4},
		{"iodine", s.Iodine, 0.05 * 1e-4},
		{"samarium", s.Samarium, 0.01 * 1e-4},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.expected) > 1e-15 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
		}
	}
}

func TestAdvancePoisonsEquilibrium(t *testing.T) {
	s := NominalState()
	s.Xenon = 1
	s.Iodine = 1

	AdvancePoisons(&s, 0.01, 1)

	if s.Xenon != 1 {
		t.Errorf("xenon left equilibrium: %v", s.Xenon)
	}
	if s.Iodine != 1 {
		t.Errorf("iodine left equilibrium: %v", s.Iodine)
	}
}

func TestAdvancePoisonsDecayAfterShutdown(t *testing.T) {
	s := NominalState()
	s.ThermalPower = 0
	s.Xenon = 2
	s.Iodine = 2
	s.Samarium = 0.3

	for i := 0; i < 100; i++ {
		AdvancePoisons(&s, 0.01, 1)
	}

	if s.Xenon >= 2 || s.Iodine >= 2 {
		t.Errorf("xenon/iodine should decay without production: %v, %v", s.Xenon, s.Iodine)
	}
	if s.Xenon >= s.Iodine {
		t.Errorf("xenon decays faster than iodine: xenon %v, iodine %v", s.Xenon, s.Iodine)
	}
	if s.Samarium != 0.3 {
		t.Errorf("samarium has no decay path, got %v", s.Samarium)
	}
}

func TestSamariumMonotonic(t *testing.T) {
	s := NominalState()
	prev := s.Samarium
	for i := 0; i < 1000; i++ {
		AdvancePoisons(&s, 0.001, 2)
		if s.Samarium < prev {
			t.Fatalf("samarium decreased at step %d", i)
		}
		prev = s.Samarium
	}
}

func TestAdvancePoisonsPaused(t *testing.T) {
	s := NominalState()
	s.Controls.Paused = true
	AdvancePoisons(&s, 0.001, 0.1)
	if s.Xenon != 0 || s.Iodine != 0 || s.Samarium != 0 {
		t.Error("poisons changed while paused")
	}
}
