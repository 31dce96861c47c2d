// Package construct builds initial candidate solutions. Every strategy except
// Empty assigns each task to a uniformly random worker; balancing the load is
// left to the search.
package construct

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/kilianp07/relplan/core/model"
)

// Strategy names an initialization strategy.
type Strategy string

const (
	// Empty assigns no task.
	Empty Strategy = "empty"
	// Random shuffles the tasks before assigning them.
	Random Strategy = "random"
	// PriorityCost orders tasks by ascending (priority, cost).
	PriorityCost Strategy = "priority_cost"
	// PriorityDensity orders tasks by descending credit per effort-minute.
	PriorityDensity Strategy = "priority_density"
)

// Strategies lists every known strategy.
func Strategies() []Strategy {
	return []Strategy{Empty, Random, PriorityCost, PriorityDensity}
}

// Parse returns the strategy with the given name.
func Parse(name string) (Strategy, error) {
	for _, s := range Strategies() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown initialization strategy %q", model.ErrInvalidConfiguration, name)
}

// Build creates a solution with one worker per spec and distributes every
// task of g according to strategy.
func Build(strategy Strategy, specs []model.WorkerSpec, g *model.Graph, rng *rand.Rand) (*model.Solution, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no workers", model.ErrInvalidConfiguration)
	}
	sol := model.NewSolution(specs)
	var order []int
	switch strategy {
	case Empty:
		return sol, nil
	case Random:
		order = rng.Perm(g.Len())
	case PriorityCost:
		order = ByPriorityCost(g)
	case PriorityDensity:
		order = g.IDs()
		sort.SliceStable(order, func(i, j int) bool {
			return density(g, order[i]) > density(g, order[j])
		})
	default:
		return nil, fmt.Errorf("%w: unknown initialization strategy %q", model.ErrInvalidConfiguration, strategy)
	}
	for _, id := range order {
		k := rng.Intn(len(sol.Workers))
		sol.Workers[k].Plan = append(sol.Workers[k].Plan, id)
	}
	return sol, nil
}

// ByPriorityCost returns task ids sorted by ascending priority then cost:
// most urgent and cheapest first.
func ByPriorityCost(g *model.Graph) []int {
	order := g.IDs()
	sort.SliceStable(order, func(i, j int) bool {
		a, b := g.Task(order[i]), g.Task(order[j])
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Cost < b.Cost
	})
	return order
}

func density(g *model.Graph, id int) float64 {
	t := g.Task(id)
	return g.Credit(t) / t.Cost
}
