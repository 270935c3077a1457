package reactor

// Feedback breaks net reactivity into its contributions.
type Feedback struct {
	Void        float64
	Power       float64
	Xenon       float64
	Control     float64
	Temperature float64
}

// Total sums the contributions.
func (f Feedback) Total() float64 {
	return f.Void + f.Power + f.Xenon + f.Control + f.Temperature
}

// ReactivityFeedback evaluates each feedback term for the given state.
func ReactivityFeedback(s State) Feedback {
	d := s.Design
	return Feedback{
		Void:        d.VoidCoefficient * s.VaporFraction,
		Power:       d.PowerCoefficient * (s.ThermalPower/d.RatedPower - 1),
		Xenon:       xenonWorth * s.Xenon,
		Control:     rodWorth * (1 - s.Controls.RodInsertion),
		Temperature: fuelTempFeedback * (s.Temperature - NominalTemperature),
	}
}

// ComputeReactivity returns the net reactivity of s. The result is unbounded
// in both directions; the void term dominates and drives the excursion.
func ComputeReactivity(s State) float64 {
	return ReactivityFeedback(s).Total()
}
