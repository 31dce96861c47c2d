package search

import (
	"context"
	"math"
	"math/rand"

	"github.com/kilianp07/relplan/core/construct"
	"github.com/kilianp07/relplan/core/fitness"
	"github.com/kilianp07/relplan/core/model"
)

// Incremental replans release by release. Tasks are split randomly over the
// releases; stage i scores only the tasks of splits 0..i and freezes every
// task the previous stage's best already completed before release i.
type Incremental struct {
	cfg Config
}

// NewIncremental returns the incremental genetic strategy.
func NewIncremental(cfg Config) *Incremental { return &Incremental{cfg: cfg} }

func (g *Incremental) Name() string   { return AlgIncremental }
func (g *Incremental) Config() Config { return g.cfg }

// Search implements Algorithm.
func (g *Incremental) Search(ctx context.Context, p Problem, opts ...Option) (Result, error) {
	env := newRunEnv(g.Name(), g.cfg, opts)
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	base := fitness.NewEvaluator(p.Graph, p.Releases, g.cfg.Penalties)
	stages := max(1, len(p.Releases))
	splits := splitTasks(p.Graph.Len(), stages, g.cfg.SplitDecay, env.rng)

	var (
		best        *model.Solution
		prevActive  model.ActiveSet
		active      = model.ActiveSet{}
		generations int
		evaluations int
	)
	for stage := 0; stage < stages; stage++ {
		for _, id := range splits[stage] {
			active[id] = struct{}{}
		}
		stageActive := copyActive(active)

		var frozen taskSet
		var population []*model.Solution
		if best == nil {
			var err error
			population, err = seedPopulation(construct.Strategy(g.cfg.Init), g.cfg.PopulationSize, p, env)
			if err != nil {
				return Result{}, err
			}
		} else {
			frozen = frozenTasks(best, p, prevActive, stage)
			population = make([]*model.Solution, g.cfg.PopulationSize)
			for i := range population {
				c := best.Clone()
				mutate(c, g.cfg.MutationRate, frozen, env.rng)
				population[i] = c
			}
		}
		env.log.Debugf("stage %d: %d active tasks, %d frozen", stage, len(stageActive), len(frozen))

		ev, err := evolve(ctx, env, g.cfg, base.WithActive(stageActive), frozen, stage, population)
		generations += ev.generations
		evaluations += ev.evaluations
		if ev.best != nil {
			best = ev.best
		}
		if err != nil {
			return env.finish(base, best, generations, evaluations, err)
		}
		prevActive = stageActive
	}
	return env.finish(base, best, generations, evaluations, nil)
}

// splitTasks assigns every task id to one of stages buckets, drawing bucket i
// with weight decay^i.
func splitTasks(n, stages int, decay float64, rng *rand.Rand) [][]int {
	cumulative := make([]float64, stages)
	var total float64
	for i := range cumulative {
		total += math.Pow(decay, float64(i))
		cumulative[i] = total
	}
	splits := make([][]int, stages)
	for id := 0; id < n; id++ {
		x := rng.Float64() * total
		bucket := stages - 1
		for i, c := range cumulative {
			if x < c {
				bucket = i
				break
			}
		}
		splits[bucket] = append(splits[bucket], id)
	}
	return splits
}

// frozenTasks simulates sol against the previous stage's active set and
// returns the tasks completed before release stage.
func frozenTasks(sol *model.Solution, p Problem, active model.ActiveSet, stage int) taskSet {
	frozen := taskSet{}
	for _, w := range sol.Workers {
		tr := fitness.Simulate(w, p.Graph, p.Releases, active)
		for id, r := range tr.TaskRelease {
			if r < stage {
				frozen[id] = struct{}{}
			}
		}
	}
	return frozen
}

func copyActive(s model.ActiveSet) model.ActiveSet {
	cp := make(model.ActiveSet, len(s))
	for id := range s {
		cp[id] = struct{}{}
	}
	return cp
}
