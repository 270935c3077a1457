package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/reactorsim/internal/automation"
	"github.com/san-kum/reactorsim/internal/metrics"
	"github.com/san-kum/reactorsim/internal/reactor"
)

// durationEps absorbs rounding in the accumulated simulated time.
const durationEps = 1e-9

// Runner drives an engine headless until the configured bound, a collapse,
// a scripted stop or context cancellation.
type Runner struct {
	metrics   []metrics.Metric
	observers []Observer
	logger    *slog.Logger
}

func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

func (r *Runner) AddMetric(m metrics.Metric) { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer)     { r.observers = append(r.observers, o) }

func (r *Runner) Run(ctx context.Context, initial reactor.State, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Scenario != nil {
		if err := cfg.Scenario.Validate(); err != nil {
			return nil, err
		}
	}

	eng := reactor.NewEngine(initial, reactor.WithLogger(r.logger))
	clock := reactor.NewClock(eng, cfg.Dt, cfg.Speed)
	rec := NewRecorder(cfg.SampleEvery, r.metrics...)
	eng.Subscribe(rec.OnEvent)
	schedule := automation.NewSchedule(cfg.Scenario)

	start := eng.Snapshot()
	r.observe(rec, start)
	r.logger.Info("run started",
		"dt", cfg.Dt,
		"speed", cfg.Speed,
		"duration", cfg.Duration,
		"max_ticks", cfg.MaxTicks,
		"actions", schedule.Remaining(),
	)

	steps := 0
	holdTicks := 0
	outcome := OutcomeCompleted

loop:
	for {
		select {
		case <-ctx.Done():
			res := rec.Result(OutcomeCanceled, steps)
			r.logFinished(res)
			return res, ctx.Err()
		default:
		}

		snap := rec.Last()
		if !snap.Running {
			outcome = OutcomeCollapsed
			break
		}
		if cfg.MaxTicks > 0 && steps >= cfg.MaxTicks {
			break
		}
		if cfg.Duration > 0 && snap.Time-start.Time >= cfg.Duration-durationEps {
			break
		}

		for _, a := range schedule.Due(snap.Time) {
			if err := a.Apply(clock); err != nil {
				return rec.Result(OutcomeStopped, steps), err
			}
			if a.Pause > holdTicks {
				holdTicks = a.Pause
			}
			r.logger.Debug("scenario action applied", "action", a.String())
		}
		if !eng.Running() {
			outcome = OutcomeStopped
			break loop
		}

		next, err := clock.Tick()
		if err != nil {
			return rec.Result(OutcomeStopped, steps), fmt.Errorf("step %d: %w", steps, err)
		}
		steps++
		if clock.Paused() {
			holdTicks--
			if holdTicks <= 0 {
				holdTicks = 0
				clock.Resume()
			}
		}
		r.observe(rec, next)
	}

	res := rec.Result(outcome, steps)
	r.logFinished(res)
	return res, nil
}

func (r *Runner) observe(rec *Recorder, s reactor.Snapshot) {
	rec.Observe(s)
	for _, obs := range r.observers {
		obs.OnStep(s)
	}
}

func (r *Runner) logFinished(res *Result) {
	r.logger.Info("run finished",
		"outcome", res.Outcome.String(),
		"ticks", res.Ticks,
		"time", res.Final.Time,
		"events", len(res.Events),
	)
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if math.IsNaN(cfg.Speed) || cfg.Speed < reactor.MinSpeed || cfg.Speed > reactor.MaxSpeed {
		return fmt.Errorf("speed must be within [%.1f,%.1f], got %f", reactor.MinSpeed, reactor.MaxSpeed, cfg.Speed)
	}
	if cfg.Duration <= 0 && cfg.MaxTicks <= 0 {
		return fmt.Errorf("duration or max ticks must be positive")
	}
	if cfg.SampleEvery < 0 {
		return fmt.Errorf("sample interval must be non-negative, got %d", cfg.SampleEvery)
	}
	return nil
}
