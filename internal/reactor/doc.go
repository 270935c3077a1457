// Package reactor implements a lumped-parameter boiling-water reactor core
// driven into a positive-void-coefficient excursion.
//
// One call to [Engine.Step] advances the core by one tick, always in the same
// order:
//
//   - [ComputeReactivity]: net reactivity from the previous tick's state
//   - [AdvanceThermal]: power, heat, vaporization, pressure, containment
//   - [AdvanceEquipment]: emergency cooling and emergency power failures
//   - [AdvancePoisons]: xenon, iodine and samarium
//   - [AdvanceRadiation]: fission products, radiation level, release rate
//
// The engine is driven by a [Clock], which owns the step size, the pause flag
// and the speed multiplier.
//
// # Usage
//
//	eng := reactor.NewEngine(reactor.NominalState())
//	clk := reactor.NewClock(eng, 0.001, 0.1)
//	for {
//	    snap, err := clk.Tick()
//	    if err != nil {
//	        break
//	    }
//	    render(snap)
//	}
//
// # Thread Safety
//
// Engine and Clock are NOT thread-safe. A single driver owns the engine and
// must never re-enter Step.
package reactor
