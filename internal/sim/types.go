package sim

import (
	"github.com/san-kum/reactorsim/internal/automation"
	"github.com/san-kum/reactorsim/internal/reactor"
)

// Outcome says why a run ended.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeCollapsed
	OutcomeStopped
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCollapsed:
		return "collapsed"
	case OutcomeStopped:
		return "stopped"
	case OutcomeCanceled:
		return "canceled"
	}
	return "unknown"
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) Outcome {
	for o := OutcomeCompleted; o <= OutcomeCanceled; o++ {
		if o.String() == s {
			return o
		}
	}
	return OutcomeCompleted
}

type Observer interface {
	OnStep(s reactor.Snapshot)
}

// Config bounds a headless run. The run ends after Duration simulated
// seconds or MaxTicks ticks, whichever comes first; zero disables a bound.
type Config struct {
	Dt          float64
	Speed       float64
	Duration    float64
	MaxTicks    int
	SampleEvery int
	Scenario    *automation.Scenario
}

func DefaultConfig() Config {
	return Config{
		Dt:          reactor.DefaultDt,
		Speed:       reactor.DefaultSpeed,
		Duration:    10.0,
		SampleEvery: 100,
	}
}

type Result struct {
	Samples []reactor.Snapshot
	Events  []reactor.Event
	Metrics map[string]float64
	Outcome Outcome
	Final   reactor.Snapshot
	// Ticks counts physics ticks; Steps also counts paused ones.
	Ticks int
	Steps int
}
