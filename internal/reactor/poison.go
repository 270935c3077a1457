package reactor

// AdvancePoisons integrates the fission-product poisons with explicit Euler.
// Xenon and iodine relax toward the relative power level; samarium has no
// decay path and only accumulates. The new values feed reactivity on the
// next tick.
func AdvancePoisons(s *State, dt, speed float64) {
	if s.Controls.Paused {
		return
	}
	h := dt * speed
	relPower := s.ThermalPower / s.Design.RatedPower

	s.Xenon += (xenonRate*relPower - xenonRate*s.Xenon) * h
	s.Iodine += (iodineRate*relPower - iodineRate*s.Iodine) * h
	s.Samarium += samariumRate * relPower * h
}
