package reactor

import "math"

// AdvanceThermal moves power, temperature, phase and pressure forward by one
// tick of dt·speed seconds and runs the containment check. It returns the
// containment transitions that happened during the tick.
func AdvanceThermal(s *State, dt, speed float64) []EventKind {
	if s.Controls.Paused {
		return nil
	}
	d := s.Design
	h := dt * speed

	s.Reactivity = ComputeReactivity(*s)
	s.ThermalPower *= 1 + s.Reactivity*h

	heatGenerated := s.ThermalPower * h
	heatRemoved := s.CoolingEfficiency * heatGenerated
	deltaEnergy := heatGenerated - heatRemoved

	var deltaTemp float64
	if s.Temperature < BoilingPoint {
		deltaTemp = deltaEnergy / (d.CoolantMass * SpecificHeatWater)
	} else {
		if deltaEnergy > 0 {
			deltaEnergy -= vaporize(s, deltaEnergy)
		}
		mix := s.VaporFraction*SpecificHeatVapor + (1-s.VaporFraction)*SpecificHeatWater
		deltaTemp = deltaEnergy / (d.CoolantMass * mix)
	}
	s.Temperature += deltaTemp

	if s.Temperature >= BoilingPoint {
		vaporMass := d.CoolantMass * s.VaporFraction
		s.Pressure = vaporMass * GasConstant * (s.Temperature + KelvinOffset) / d.Volume
	}
	s.SteamQuality = math.Min(1, s.VaporFraction*1.2)

	return checkContainment(s)
}

// vaporize boils off as much liquid as energy allows and returns the latent
// energy consumed. Vapor fraction only ever grows; condensation is not modeled.
func vaporize(s *State, energy float64) float64 {
	liquid := s.Design.CoolantMass * (1 - s.VaporFraction)
	mass := math.Min(energy/LatentHeat, liquid)
	if mass >= liquid {
		s.VaporFraction = 1
	} else {
		s.VaporFraction += mass / s.Design.CoolantMass
	}
	return mass * LatentHeat
}

// checkContainment takes 10 points of integrity on every tick the breach
// condition holds, however far past the threshold the plant is.
func checkContainment(s *State) []EventKind {
	d := s.Design
	if s.Pressure <= d.MaxPressure*breachPressureFactor && s.Temperature <= d.MaxTemperature {
		return nil
	}

	var events []EventKind
	if !s.ExplosionOccurred {
		s.ExplosionOccurred = true
		events = append(events, EventContainmentBreached)
	}
	s.ContainmentIntegrity = math.Max(0, s.ContainmentIntegrity-breachDecrement)
	if s.ContainmentIntegrity <= 0 {
		s.Running = false
		events = append(events, EventContainmentCollapsed)
	}
	return events
}
