package automation

import (
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/reactorsim/internal/reactor"
)

// Scenario is a scripted sequence of operator actions.
type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Actions     []Action `yaml:"actions"`
}

// Action is applied once the simulated clock reaches At. Unset fields are
// left alone.
type Action struct {
	At    float64  `yaml:"at"`
	Rods  *float64 `yaml:"rods,omitempty"`
	Speed *float64 `yaml:"speed,omitempty"`
	// Pause holds the clock for this many ticks. Simulated time is frozen
	// while paused, so the hold is counted in ticks.
	Pause int  `yaml:"pause,omitempty"`
	Stop  bool `yaml:"stop,omitempty"`
}

func (a Action) String() string {
	s := fmt.Sprintf("t=%.3fs", a.At)
	if a.Rods != nil {
		s += fmt.Sprintf(" rods=%.2f", *a.Rods)
	}
	if a.Speed != nil {
		s += fmt.Sprintf(" speed=%.1f", *a.Speed)
	}
	if a.Pause > 0 {
		s += fmt.Sprintf(" pause=%d", a.Pause)
	}
	if a.Stop {
		s += " stop"
	}
	return s
}

// Apply performs the action on the clock and its engine.
func (a Action) Apply(c *reactor.Clock) error {
	if a.Rods != nil {
		if err := c.Engine().SetControlRodInsertion(*a.Rods); err != nil {
			return fmt.Errorf("action %s: %w", a, err)
		}
	}
	if a.Speed != nil {
		c.SetSpeed(*a.Speed)
	}
	if a.Pause > 0 {
		c.Pause()
	}
	if a.Stop {
		c.Engine().RequestStop()
	}
	return nil
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return &scenario, nil
}

func (s *Scenario) Validate() error {
	for i, a := range s.Actions {
		switch {
		case math.IsNaN(a.At) || a.At < 0:
			return fmt.Errorf("action %d: at must be non-negative, got %v", i+1, a.At)
		case a.Rods != nil && (math.IsNaN(*a.Rods) || *a.Rods < 0 || *a.Rods > 1):
			return fmt.Errorf("action %d: rods must be within [0,1], got %v", i+1, *a.Rods)
		case a.Speed != nil && math.IsNaN(*a.Speed):
			return fmt.Errorf("action %d: speed is not a number", i+1)
		case a.Pause < 0:
			return fmt.Errorf("action %d: pause must be non-negative, got %d", i+1, a.Pause)
		case a.Rods == nil && a.Speed == nil && a.Pause == 0 && !a.Stop:
			return fmt.Errorf("action %d at t=%gs does nothing", i+1, a.At)
		}
	}
	return nil
}

// Schedule releases a scenario's actions in time order.
type Schedule struct {
	actions []Action
	next    int
}

// NewSchedule orders the actions of s by time. A nil scenario yields an
// empty schedule.
func NewSchedule(s *Scenario) *Schedule {
	sch := &Schedule{}
	if s == nil {
		return sch
	}
	sch.actions = append([]Action(nil), s.Actions...)
	sort.SliceStable(sch.actions, func(i, j int) bool {
		return sch.actions[i].At < sch.actions[j].At
	})
	return sch
}

// Due returns the actions with At <= t that have not been returned before.
func (s *Schedule) Due(t float64) []Action {
	start := s.next
	for s.next < len(s.actions) && s.actions[s.next].At <= t {
		s.next++
	}
	return s.actions[start:s.next]
}

func (s *Schedule) Remaining() int {
	return len(s.actions) - s.next
}
