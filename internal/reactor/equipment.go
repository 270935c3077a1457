package reactor

import "math"

// AdvanceEquipment runs the emergency cooling and emergency power state
// machines against the current simulated time. Both only move forward:
//
//	cooling: active -> degrading -> failed (efficiency drains 0.0001/tick after 100s)
//	power:   active -> failed (at the first tick after 150s)
func AdvanceEquipment(s *State) []EventKind {
	if s.Controls.Paused {
		return nil
	}
	var events []EventKind
	events = append(events, advanceCooling(s)...)
	events = append(events, advancePower(s)...)
	return events
}

func advanceCooling(s *State) []EventKind {
	if !s.Design.EmergencyCoolingEnabled || s.Time <= coolingFailureAfter || s.CoolingStatus == CoolingFailed {
		return nil
	}

	var events []EventKind
	if s.CoolingStatus == CoolingActive {
		s.CoolingStatus = CoolingDegrading
		events = append(events, EventCoolingDegrading)
	}
	s.CoolingEfficiency = math.Max(0, s.CoolingEfficiency-coolingDecayPerTick)
	if s.CoolingEfficiency == 0 {
		s.CoolingStatus = CoolingFailed
		events = append(events, EventCoolingFailed)
	}
	return events
}

func advancePower(s *State) []EventKind {
	if !s.Design.EmergencyPowerEnabled || s.Time <= powerFailureAfter || s.PowerStatus == PowerFailed {
		return nil
	}
	s.PowerStatus = PowerFailed
	return []EventKind{EventPowerFailed}
}
