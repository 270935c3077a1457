package sim

import (
	"context"
	"log/slog"
	"sync"

	"github.com/san-kum/reactorsim/internal/metrics"
	"github.com/san-kum/reactorsim/internal/reactor"
)

// Ensemble runs independent engines concurrently, one per initial state.
// Each run gets its own Runner and a fresh set of standard metrics.
type Ensemble struct {
	logger *slog.Logger
}

func NewEnsemble(logger *slog.Logger) *Ensemble {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ensemble{logger: logger}
}

func (e *Ensemble) Run(ctx context.Context, initials []reactor.State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(initials))
	errs := make([]error, len(initials))

	var wg sync.WaitGroup
	for i := range initials {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			r := New(e.logger.With("member", idx))
			for _, m := range metrics.Standard() {
				r.AddMetric(m)
			}
			results[idx], errs[idx] = r.Run(ctx, initials[idx], cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
