package automation

import (
	"fmt"

	"github.com/san-kum/reactorsim/internal/reactor"
)

// SweepParams lists the parameters a Sweep can vary.
var SweepParams = []string{
	"rods",
	"void_coefficient",
	"power_coefficient",
	"vapor_fraction",
	"cooling_efficiency",
}

// Sweep varies one parameter of the initial state over an even grid.
type Sweep struct {
	Param string
	Min   float64
	Max   float64
	Steps int
}

func (s Sweep) Values() []float64 {
	if s.Steps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.Steps-1)
	vals := make([]float64, s.Steps)
	for i := range vals {
		vals[i] = s.Min + float64(i)*step
	}
	vals[len(vals)-1] = s.Max
	return vals
}

// States returns one copy of base per sweep value with the parameter set.
func (s Sweep) States(base reactor.State) ([]reactor.State, error) {
	set, err := sweepSetter(s.Param)
	if err != nil {
		return nil, err
	}
	if s.Steps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", s.Steps)
	}

	vals := s.Values()
	states := make([]reactor.State, len(vals))
	for i, v := range vals {
		st := base
		if err := set(&st, v); err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", s.Param, v, err)
		}
		states[i] = st
	}
	return states, nil
}

func unit(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be within [0,1]", name)
	}
	return nil
}

func sweepSetter(param string) (func(*reactor.State, float64) error, error) {
	switch param {
	case "rods":
		return func(s *reactor.State, v float64) error {
			s.Controls.RodInsertion = v
			return unit(param, v)
		}, nil
	case "void_coefficient":
		return func(s *reactor.State, v float64) error {
			s.Design.VoidCoefficient = v
			return nil
		}, nil
	case "power_coefficient":
		return func(s *reactor.State, v float64) error {
			s.Design.PowerCoefficient = v
			return nil
		}, nil
	case "vapor_fraction":
		return func(s *reactor.State, v float64) error {
			s.VaporFraction = v
			return unit(param, v)
		}, nil
	case "cooling_efficiency":
		return func(s *reactor.State, v float64) error {
			s.CoolingEfficiency = v
			return unit(param, v)
		}, nil
	}
	return nil, fmt.Errorf("unknown sweep parameter %q (valid: %v)", param, SweepParams)
}
