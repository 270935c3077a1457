package reactor

import (
	"log/slog"
	"math"
)

// Engine owns a State and advances it one tick per Step. It is not safe for
// concurrent use.
type Engine struct {
	state       State
	stopped     bool
	final       *Snapshot
	subscribers []func(Event)
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for status-change reports.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine takes ownership of initial.
func NewEngine(initial State, opts ...Option) *Engine {
	e := &Engine{
		state:  initial,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe registers fn to receive every status-change event.
func (e *Engine) Subscribe(fn func(Event)) {
	e.subscribers = append(e.subscribers, fn)
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	return e.state.Snapshot()
}

// Running reports whether Step may still be called.
func (e *Engine) Running() bool {
	return e.state.Running && !e.stopped
}

// Final returns the state at the tick containment collapsed.
func (e *Engine) Final() (Snapshot, bool) {
	if e.final == nil {
		return Snapshot{}, false
	}
	return *e.final, true
}

// SetControlRodInsertion sets the rod insertion fraction read on the next tick.
func (e *Engine) SetControlRodInsertion(fraction float64) error {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return invalidInput("rod insertion %v outside [0,1]", fraction)
	}
	e.state.Controls.RodInsertion = fraction
	return nil
}

// RequestStop ends the run. Further Step calls fail with ErrStopped.
func (e *Engine) RequestStop() {
	if !e.stopped {
		e.stopped = true
		e.logger.Info("stop requested", "tick", e.state.Tick, "time", e.state.Time)
	}
}

// Step advances the simulation by one tick of dt·speed simulated seconds, or
// by nothing when paused, and returns the resulting state.
func (e *Engine) Step(dt, speed float64, paused bool) (Snapshot, error) {
	s := &e.state
	if err := e.checkStep(dt, speed); err != nil {
		return s.Snapshot(), &StepError{Tick: s.Tick, Time: s.Time, Wrapped: err}
	}

	s.Controls.Paused = paused
	s.Controls.Speed = speed
	if paused {
		return s.Snapshot(), nil
	}

	s.Dt = dt
	s.Time += dt * speed
	s.Tick++

	kinds := AdvanceThermal(s, dt, speed)
	kinds = append(kinds, AdvanceEquipment(s)...)
	AdvancePoisons(s, dt, speed)
	AdvanceRadiation(s, dt, speed)

	snap := s.Snapshot()
	if !s.Running {
		e.final = &snap
	}
	for _, k := range kinds {
		e.emit(Event{Kind: k, Tick: s.Tick, Time: s.Time, Snapshot: snap})
	}
	return snap, nil
}

func (e *Engine) checkStep(dt, speed float64) error {
	switch {
	case !e.state.Running:
		return ErrNotRunning
	case e.stopped:
		return ErrStopped
	case math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0:
		return invalidInput("step size %v must be positive and finite", dt)
	case math.IsNaN(speed) || speed < MinSpeed || speed > MaxSpeed:
		return invalidInput("speed %v outside [%.1f,%.1f]", speed, MinSpeed, MaxSpeed)
	}
	return nil
}

func (e *Engine) emit(ev Event) {
	switch ev.Kind {
	case EventContainmentCollapsed:
		snap := ev.Snapshot
		e.logger.Error("reactor explosion: containment collapsed",
			"time", ev.Time,
			"temperature_c", snap.Temperature,
			"pressure_mpa", snap.Pressure/1e6,
			"power_mw", snap.ThermalPower/1e6,
			"radiation_sv_h", snap.RadiationLevel,
		)
	case EventContainmentBreached:
		e.logger.Warn("containment breach: explosion occurred",
			"time", ev.Time,
			"temperature_c", ev.Snapshot.Temperature,
			"pressure_mpa", ev.Snapshot.Pressure/1e6,
		)
	default:
		e.logger.Warn("equipment status changed", "event", ev.Kind.String(), "time", ev.Time)
	}
	for _, fn := range e.subscribers {
		fn(ev)
	}
}
