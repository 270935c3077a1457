package sim

import (
	"github.com/san-kum/reactorsim/internal/metrics"
	"github.com/san-kum/reactorsim/internal/reactor"
)

// Recorder keeps every n-th snapshot of a run, the events it produced and
// the summary metrics. Paused repeats of a tick are not recorded twice.
type Recorder struct {
	every   int
	metrics []metrics.Metric
	samples []reactor.Snapshot
	events  []reactor.Event
	last    reactor.Snapshot
	first   reactor.Snapshot
	seen    bool
}

func NewRecorder(every int, ms ...metrics.Metric) *Recorder {
	if every < 1 {
		every = 1
	}
	for _, m := range ms {
		m.Reset()
	}
	return &Recorder{every: every, metrics: ms}
}

func (r *Recorder) Observe(s reactor.Snapshot) {
	if r.seen && s.Tick == r.last.Tick {
		r.last = s
		return
	}
	if !r.seen {
		r.first = s
	}
	r.seen = true
	r.last = s
	for _, m := range r.metrics {
		m.Observe(s)
	}
	if s.Tick%uint64(r.every) == 0 || !s.Running || len(r.samples) == 0 {
		r.samples = append(r.samples, s)
	}
}

// OnEvent can be passed to Engine.Subscribe.
func (r *Recorder) OnEvent(ev reactor.Event) {
	r.events = append(r.events, ev)
}

func (r *Recorder) Last() reactor.Snapshot { return r.last }

func (r *Recorder) Samples() []reactor.Snapshot { return r.samples }

func (r *Recorder) Events() []reactor.Event { return r.events }

// Result closes the recording. The last observed snapshot is always
// included in the samples.
func (r *Recorder) Result(outcome Outcome, steps int) *Result {
	samples := append([]reactor.Snapshot(nil), r.samples...)
	if r.seen && (len(samples) == 0 || samples[len(samples)-1].Tick != r.last.Tick) {
		samples = append(samples, r.last)
	}
	return &Result{
		Samples: samples,
		Events:  append([]reactor.Event(nil), r.events...),
		Metrics: metrics.Collect(r.metrics),
		Outcome: outcome,
		Final:   r.last,
		Ticks:   int(r.last.Tick - r.first.Tick),
		Steps:   steps,
	}
}
