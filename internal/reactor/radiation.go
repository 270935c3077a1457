package reactor

// AdvanceRadiation accumulates fission products and recomputes the radiation
// level and the release rate from the just-updated thermal state.
//
// The level is scaled relative to the nominal operating point, so it goes
// negative when temperature or pressure fall far enough below nominal. It is
// reported as computed.
func AdvanceRadiation(s *State, dt, speed float64) {
	if s.Controls.Paused {
		return
	}
	s.FissionProducts += s.ThermalPower / energyPerFissionUnit * dt * speed

	tempFactor := 1 + (s.Temperature-NominalTemperature)/temperatureSpan
	pressureFactor := 1 + (s.Pressure-NominalPressure)/pressureSpan
	s.RadiationLevel = s.FissionProducts * radiationScale * tempFactor * pressureFactor

	s.ReleaseRate = ReleaseRate(s.RadiationLevel, s.ContainmentIntegrity)
}

// ReleaseRate is the share of the radiation level escaping through a
// containment at the given integrity. An intact containment releases nothing.
func ReleaseRate(level, integrity float64) float64 {
	if integrity >= 100 {
		return 0
	}
	return level * ((100 - integrity) / 100)
}
