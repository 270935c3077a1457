package viz

import (
	"fmt"
	"io"
	"time"

	"github.com/san-kum/reactorsim/internal/reactor"
)

// Progress is a sim.Observer that redraws a one-line status on w at most
// frameRate times per second.
type Progress struct {
	w         io.Writer
	frameRate int
	duration  float64
	start     float64
	started   bool
	lastFrame time.Time
}

func NewProgress(w io.Writer, frameRate int, duration float64) *Progress {
	if frameRate <= 0 {
		frameRate = 10
	}
	return &Progress{w: w, frameRate: frameRate, duration: duration}
}

func (p *Progress) OnStep(s reactor.Snapshot) {
	if !p.started {
		p.start = s.Time
		p.started = true
	}
	if time.Since(p.lastFrame) < time.Second/time.Duration(p.frameRate) && s.Running {
		return
	}
	p.lastFrame = time.Now()

	frac := 0.0
	if p.duration > 0 {
		frac = (s.Time - p.start) / p.duration
	}
	fmt.Fprintf(p.w, "\r%s t=%7.3fs  P=%8.1f MW  T=%7.1f °C  ρ=%+.3f  containment %5.1f%%",
		ProgressBar(frac, 20), s.Time, s.ThermalPower/1e6, s.Temperature, s.Reactivity, s.ContainmentIntegrity)
}

// Done ends the status line.
func (p *Progress) Done() {
	fmt.Fprintln(p.w)
}
