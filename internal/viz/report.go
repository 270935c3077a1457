package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/reactorsim/internal/reactor"
)

// AccidentReport summarises the state at the tick containment collapsed.
func AccidentReport(s reactor.Snapshot) string {
	var b strings.Builder
	b.WriteString("REACTOR EXPLOSION: CONTAINMENT COLLAPSED\n\n")
	fmt.Fprintf(&b, "time:        %.3f s\n", s.Time)
	fmt.Fprintf(&b, "temperature: %.1f °C\n", s.Temperature)
	fmt.Fprintf(&b, "pressure:    %.2f MPa\n", s.Pressure/1e6)
	fmt.Fprintf(&b, "power:       %.1f MW\n", s.ThermalPower/1e6)
	fmt.Fprintf(&b, "radiation:   %.2f Sv/h\n", s.RadiationLevel)
	fmt.Fprintf(&b, "release:     %.2f Sv/h", s.ReleaseRate)
	return b.String()
}

// ChartPanel is one chart of up to a few series sharing an axis.
type ChartPanel struct {
	Caption string
	Legends []string
	Series  [][]float64
}

var seriesColors = []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Blue, asciigraph.Green, asciigraph.Yellow}

// StandardPanels builds the four post-run charts from a column lookup such
// as store.Series.Column.
func StandardPanels(column func(name string) []float64) []ChartPanel {
	return []ChartPanel{
		{
			Caption: "temperature (°C) / pressure (MPa)",
			Legends: []string{"temperature", "pressure"},
			Series:  [][]float64{column("temperature_c"), scale(column("pressure_pa"), 1e-6)},
		},
		{
			Caption: "power (MW) / reactivity",
			Legends: []string{"power", "reactivity"},
			Series:  [][]float64{scale(column("power_w"), 1e-6), column("reactivity")},
		},
		{
			Caption: "radiation (Sv/h) / containment integrity (%)",
			Legends: []string{"radiation", "containment"},
			Series:  [][]float64{column("radiation_sv_h"), column("containment_integrity")},
		},
		{
			Caption: "xenon / vapor fraction",
			Legends: []string{"xenon", "vapor fraction"},
			Series:  [][]float64{column("xenon"), column("vapor_fraction")},
		},
	}
}

// RenderPanels plots each panel with asciigraph. Panels with fewer than two
// points are skipped.
func RenderPanels(panels []ChartPanel, width, height int) string {
	var out []string
	for _, p := range panels {
		series := make([][]float64, 0, len(p.Series))
		legends := make([]string, 0, len(p.Series))
		for i, s := range p.Series {
			if len(s) < 2 {
				continue
			}
			series = append(series, s)
			if i < len(p.Legends) {
				legends = append(legends, p.Legends[i])
			}
		}
		if len(series) == 0 {
			continue
		}

		opts := []asciigraph.Option{
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(p.Caption),
			asciigraph.SeriesColors(seriesColors[:len(series)]...),
		}
		if len(legends) == len(series) {
			opts = append(opts, asciigraph.SeriesLegends(legends...))
		}
		out = append(out, asciigraph.PlotMany(series, opts...))
	}
	return strings.Join(out, "\n\n")
}

func scale(vs []float64, k float64) []float64 {
	if vs == nil {
		return nil
	}
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v * k
	}
	return out
}
