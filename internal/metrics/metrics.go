package metrics

import (
	"math"

	"github.com/san-kum/reactorsim/internal/reactor"
)

// Metric accumulates a scalar over the snapshots of one run.
type Metric interface {
	Name() string
	Observe(s reactor.Snapshot)
	Value() float64
	Reset()
}

// Standard returns a fresh set of the run summary metrics.
func Standard() []Metric {
	return []Metric{
		NewPeakPower(),
		NewPeakTemperature(),
		NewPeakPressure(),
		NewMaxReactivity(),
		NewTotalRelease(),
		NewTimeToBreach(),
	}
}

type peak struct {
	name    string
	field   func(reactor.Snapshot) float64
	max     float64
	samples int
}

func (p *peak) Name() string { return p.name }

func (p *peak) Observe(s reactor.Snapshot) {
	v := p.field(s)
	if p.samples == 0 || v > p.max {
		p.max = v
	}
	p.samples++
}

func (p *peak) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.max
}

func (p *peak) Reset() {
	p.max = 0
	p.samples = 0
}

func NewPeakPower() Metric {
	return &peak{name: "peak_power_w", field: func(s reactor.Snapshot) float64 { return s.ThermalPower }}
}

func NewPeakTemperature() Metric {
	return &peak{name: "peak_temperature_c", field: func(s reactor.Snapshot) float64 { return s.Temperature }}
}

func NewPeakPressure() Metric {
	return &peak{name: "peak_pressure_pa", field: func(s reactor.Snapshot) float64 { return s.Pressure }}
}

func NewMaxReactivity() Metric {
	return &peak{name: "max_reactivity", field: func(s reactor.Snapshot) float64 { return s.Reactivity }}
}

// TotalRelease integrates the release rate over simulated time, in Sv.
type TotalRelease struct {
	name     string
	total    float64
	lastTime float64
	samples  int
}

func NewTotalRelease() *TotalRelease {
	return &TotalRelease{name: "total_release_sv"}
}

func (r *TotalRelease) Name() string { return r.name }

func (r *TotalRelease) Observe(s reactor.Snapshot) {
	if r.samples > 0 {
		if elapsed := s.Time - r.lastTime; elapsed > 0 {
			r.total += s.ReleaseRate * elapsed / 3600
		}
	}
	r.lastTime = s.Time
	r.samples++
}

func (r *TotalRelease) Value() float64 { return r.total }

func (r *TotalRelease) Reset() {
	r.total = 0
	r.lastTime = 0
	r.samples = 0
}

// TimeToBreach records the simulated time of the first snapshot with the
// explosion flag set, or -1 if containment held.
type TimeToBreach struct {
	name string
	at   float64
}

func NewTimeToBreach() *TimeToBreach {
	return &TimeToBreach{name: "time_to_breach_s", at: -1}
}

func (b *TimeToBreach) Name() string { return b.name }

func (b *TimeToBreach) Observe(s reactor.Snapshot) {
	if b.at < 0 && s.ExplosionOccurred {
		b.at = s.Time
	}
}

func (b *TimeToBreach) Value() float64 { return b.at }

func (b *TimeToBreach) Reset() { b.at = -1 }

// Collect returns the current value of every metric keyed by name. NaN
// values are dropped.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		if v := m.Value(); !math.IsNaN(v) {
			out[m.Name()] = v
		}
	}
	return out
}
