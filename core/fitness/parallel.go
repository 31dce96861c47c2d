package fitness

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/relplan/core/model"
)

// ScoreAll scores every solution. With parallelism above one the solutions
// are scored concurrently; each goroutine writes only its own slot.
func ScoreAll(ctx context.Context, e *Evaluator, sols []*model.Solution, parallelism int) ([]float64, error) {
	scores := make([]float64, len(sols))
	if parallelism <= 1 {
		for i, s := range sols {
			if err := ctx.Err(); err != nil {
				return scores, err
			}
			scores[i] = e.Score(s)
		}
		return scores, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, s := range sols {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = e.Score(s)
			return nil
		})
	}
	return scores, g.Wait()
}
