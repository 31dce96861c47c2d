package search

import (
	"context"
	"slices"

	"github.com/kilianp07/relplan/core/construct"
	"github.com/kilianp07/relplan/core/fitness"
	"github.com/kilianp07/relplan/core/model"
)

// finishEpsilon absorbs float drift when a finish time equals the capacity.
const finishEpsilon = 1e-9

// Greedy builds one solution in a single deterministic pass.
type Greedy struct {
	cfg Config
}

// NewGreedy returns the greedy strategy. Only the penalty weights of cfg are
// used.
func NewGreedy(cfg Config) *Greedy { return &Greedy{cfg: cfg} }

func (g *Greedy) Name() string   { return AlgGreedy }
func (g *Greedy) Config() Config { return g.cfg }

// Search implements Algorithm.
func (g *Greedy) Search(ctx context.Context, p Problem, opts ...Option) (Result, error) {
	env := newRunEnv(g.Name(), g.cfg, opts)
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	sol, dropped := GreedyAssign(p)
	if len(dropped) > 0 {
		env.log.Warnf("greedy dropped %d of %d tasks exceeding calendar capacity", len(dropped), p.Graph.Len())
	}
	eval := fitness.NewEvaluator(p.Graph, p.Releases, g.cfg.Penalties)
	return env.finish(eval, sol, 1, 1, nil)
}

// GreedyAssign orders tasks by (priority, cost), nudges dependencies ahead of
// their dependents and hands each task to the worker that would finish it
// first. Ties go to the lowest worker index. A task whose earliest finish
// lies beyond the total calendar capacity is dropped and its id returned.
func GreedyAssign(p Problem) (*model.Solution, []int) {
	order := construct.ByPriorityCost(p.Graph)
	StabilizeDependencies(p.Graph, order)

	sol := model.NewSolution(p.Workers)
	busy := make([]float64, len(sol.Workers))
	capacity := p.Releases.TotalCapacity()
	var dropped []int
	for _, id := range order {
		t := p.Graph.Task(id)
		best := -1
		var bestFinish float64
		for k, w := range sol.Workers {
			done := busy[k] + w.EffectiveCost(t)
			if best < 0 || done < bestFinish {
				best, bestFinish = k, done
			}
		}
		if best < 0 || bestFinish > capacity+finishEpsilon {
			dropped = append(dropped, id)
			continue
		}
		busy[best] = bestFinish
		sol.Workers[best].Plan = append(sol.Workers[best].Plan, id)
	}
	return sol, dropped
}

// StabilizeDependencies swaps adjacent tasks whenever the first depends on the
// second, until a pass makes no swap or len(order)² swaps were made. This is
// a best-effort ordering: a dependency sitting far behind its dependent, or a
// cycle, can survive.
func StabilizeDependencies(g *model.Graph, order []int) int {
	limit := len(order) * len(order)
	swaps := 0
	for changed := true; changed && swaps < limit; {
		changed = false
		for i := 0; i+1 < len(order) && swaps < limit; i++ {
			if slices.Contains(g.Task(order[i]).Dependencies, order[i+1]) {
				order[i], order[i+1] = order[i+1], order[i]
				swaps++
				changed = true
			}
		}
	}
	return swaps
}
