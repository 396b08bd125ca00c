package describe

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/cvickery/rule-descriptions/internal/rules"
)

// All describes every rule, fanning Describe calls across at most workers
// goroutines. Each description is a pure function of (rule, catalog), so
// results are written into a slice indexed by input position and come back
// in input order. workers <= 0 means one worker per CPU.
//
// The only error All can return is context cancellation; individual bad
// references never abort the run.
func All(ctx context.Context, s *Synthesizer, all []rules.Rule, workers int) ([]rules.Description, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	s.logger.Debug("describing rules", slog.Int("count", len(all)), slog.Int("workers", workers))

	descriptions := make([]rules.Description, len(all))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range all {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			descriptions[i] = s.Describe(all[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return descriptions, nil
}
