package reactor

import "math"

// Clock owns the step size, pause flag and speed multiplier, and drives one
// Engine.Step per external tick.
type Clock struct {
	engine *Engine
	dt     float64
	speed  float64
	paused bool
}

// NewClock creates a clock for e. speed is clamped to [MinSpeed, MaxSpeed].
func NewClock(e *Engine, dt, speed float64) *Clock {
	c := &Clock{engine: e, dt: dt, speed: DefaultSpeed}
	c.SetSpeed(speed)
	return c
}

// Tick advances the engine by one step.
func (c *Clock) Tick() (Snapshot, error) {
	return c.engine.Step(c.dt, c.speed, c.paused)
}

func (c *Clock) Engine() *Engine { return c.engine }
func (c *Clock) Dt() float64     { return c.dt }
func (c *Clock) Speed() float64  { return c.speed }
func (c *Clock) Paused() bool    { return c.paused }

// Elapsed returns the simulated time reached so far.
func (c *Clock) Elapsed() float64 { return c.engine.state.Time }

func (c *Clock) Pause()  { c.paused = true }
func (c *Clock) Resume() { c.paused = false }

// TogglePause flips the pause flag and returns the new value.
func (c *Clock) TogglePause() bool {
	c.paused = !c.paused
	return c.paused
}

// SetSpeed clamps v to [MinSpeed, MaxSpeed] and returns the applied value.
// NaN leaves the speed unchanged.
func (c *Clock) SetSpeed(v float64) float64 {
	if math.IsNaN(v) {
		return c.speed
	}
	c.speed = math.Max(MinSpeed, math.Min(MaxSpeed, v))
	return c.speed
}

// SpeedUp raises the speed by one SpeedStep.
func (c *Clock) SpeedUp() float64 {
	return c.SetSpeed(roundTenth(c.speed + SpeedStep))
}

// SpeedDown lowers the speed by one SpeedStep.
func (c *Clock) SpeedDown() float64 {
	return c.SetSpeed(roundTenth(c.speed - SpeedStep))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
