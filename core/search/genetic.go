package search

import (
	"context"
	"math"

	"github.com/kilianp07/relplan/core/construct"
	"github.com/kilianp07/relplan/core/fitness"
	"github.com/kilianp07/relplan/core/model"
)

// Genetic evolves a population with tournament selection, segment crossover
// and swap/move mutation. The best candidate ever seen is tracked outside the
// population; generations do not overlap.
type Genetic struct {
	cfg Config
}

// NewGenetic returns the genetic strategy.
func NewGenetic(cfg Config) *Genetic { return &Genetic{cfg: cfg} }

func (g *Genetic) Name() string   { return AlgGenetic }
func (g *Genetic) Config() Config { return g.cfg }

// Search implements Algorithm.
func (g *Genetic) Search(ctx context.Context, p Problem, opts ...Option) (Result, error) {
	env := newRunEnv(g.Name(), g.cfg, opts)
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	population, err := seedPopulation(construct.Strategy(g.cfg.Init), g.cfg.PopulationSize, p, env)
	if err != nil {
		return Result{}, err
	}
	eval := fitness.NewEvaluator(p.Graph, p.Releases, g.cfg.Penalties)
	ev, err := evolve(ctx, env, g.cfg, eval, nil, 0, population)
	return env.finish(eval, ev.best, ev.generations, ev.evaluations, err)
}

func seedPopulation(strategy construct.Strategy, size int, p Problem, env *runEnv) ([]*model.Solution, error) {
	population := make([]*model.Solution, size)
	for i := range population {
		sol, err := construct.Build(strategy, p.Workers, p.Graph, env.rng)
		if err != nil {
			return nil, err
		}
		population[i] = sol
	}
	return population, nil
}

// evolution accumulates the outcome of one evolve call.
type evolution struct {
	best        *model.Solution
	fitness     float64
	generations int
	evaluations int
}

func (ev *evolution) track(env *runEnv, population []*model.Solution, scores []float64) {
	for i, s := range scores {
		if ev.best == nil || s > ev.fitness {
			ev.best, ev.fitness = population[i].Clone(), s
			env.log.Debugw("new best", map[string]any{"generation": ev.generations, "fitness": s})
		}
	}
}

// evolve runs cfg.Generations generations from population. Frozen tasks are
// never moved by crossover or mutation.
func evolve(ctx context.Context, env *runEnv, cfg Config, eval *fitness.Evaluator, frozen taskSet, stage int, population []*model.Solution) (evolution, error) {
	ev := evolution{fitness: math.Inf(-1)}
	scores, err := fitness.ScoreAll(ctx, eval, population, cfg.Parallelism)
	if err != nil {
		return ev, err
	}
	ev.evaluations += len(population)
	ev.track(env, population, scores)

	size := len(population)
	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return ev, err
		}
		next := make([]*model.Solution, 0, size+1)
		for len(next) < size {
			a := tournament(scores, cfg.TournamentSize, env.rng)
			b := tournament(scores, cfg.TournamentSize, env.rng)
			c1, c2 := crossover(population[a], population[b], cfg.CrossoverRate, frozen, env.rng)
			mutate(c1, cfg.MutationRate, frozen, env.rng)
			mutate(c2, cfg.MutationRate, frozen, env.rng)
			next = append(next, c1, c2)
		}
		population = next[:size]
		if scores, err = fitness.ScoreAll(ctx, eval, population, cfg.Parallelism); err != nil {
			return ev, err
		}
		ev.evaluations += size
		ev.generations++
		ev.track(env, population, scores)
		searchGenerations.WithLabelValues(env.alg).Inc()
		env.progress(stage, gen+1, ev.fitness, ev.evaluations)
		if gen%10 == 0 {
			env.log.Debugf("stage %d generation %d best fitness %.2f", stage, gen, ev.fitness)
		}
	}
	return ev, nil
}
