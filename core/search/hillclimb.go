package search

import (
	"context"

	"github.com/kilianp07/relplan/core/construct"
	"github.com/kilianp07/relplan/core/fitness"
	"github.com/kilianp07/relplan/core/model"
)

// HillClimbing improves a single candidate by sampling swap and move
// neighbors and stepping to the best one while it strictly improves.
type HillClimbing struct {
	cfg Config
}

// NewHillClimbing returns the hill climbing strategy.
func NewHillClimbing(cfg Config) *HillClimbing { return &HillClimbing{cfg: cfg} }

func (h *HillClimbing) Name() string   { return AlgHillClimb }
func (h *HillClimbing) Config() Config { return h.cfg }

// Search implements Algorithm.
func (h *HillClimbing) Search(ctx context.Context, p Problem, opts ...Option) (Result, error) {
	env := newRunEnv(h.Name(), h.cfg, opts)
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	start, err := construct.Build(construct.Strategy(h.cfg.Init), p.Workers, p.Graph, env.rng)
	if err != nil {
		return Result{}, err
	}
	eval := fitness.NewEvaluator(p.Graph, p.Releases, h.cfg.Penalties)
	best, iterations, evaluations, err := h.climb(ctx, env, eval, start)
	return env.finish(eval, best, iterations, evaluations, err)
}

// climb runs from start until a local optimum or the iteration cap. It never
// returns a solution scoring below start.
func (h *HillClimbing) climb(ctx context.Context, env *runEnv, eval *fitness.Evaluator, start *model.Solution) (*model.Solution, int, int, error) {
	current := start
	currentFit := eval.Score(current)
	evaluations := 1
	env.log.Debugf("hill climbing starts at fitness %.2f", currentFit)

	neighbors := make([]*model.Solution, 0, h.cfg.SwapTries+h.cfg.MoveTries)
	iterations := 0
	for iterations < h.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return current, iterations, evaluations, err
		}
		neighbors = neighbors[:0]
		for i := 0; i < h.cfg.SwapTries; i++ {
			neighbors = append(neighbors, swapNeighbor(current, env.rng))
		}
		for i := 0; i < h.cfg.MoveTries; i++ {
			neighbors = append(neighbors, moveNeighbor(current, env.rng))
		}
		scores, err := fitness.ScoreAll(ctx, eval, neighbors, h.cfg.Parallelism)
		if err != nil {
			return current, iterations, evaluations, err
		}
		evaluations += len(neighbors)

		bestIdx := -1
		for i, s := range scores {
			if bestIdx < 0 || s > scores[bestIdx] {
				bestIdx = i
			}
		}
		if bestIdx < 0 || scores[bestIdx] <= currentFit {
			env.log.Debugf("hill climbing reached a local optimum after %d iterations", iterations)
			break
		}
		current, currentFit = neighbors[bestIdx], scores[bestIdx]
		iterations++
		env.log.Debugw("hill climbing improved", map[string]any{"iteration": iterations, "fitness": currentFit})
		env.progress(0, iterations, currentFit, evaluations)
	}
	return current, iterations, evaluations, nil
}
