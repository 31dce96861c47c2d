package fitness

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/relplan/core/model"
)

// Weights tunes the penalties applied by the Evaluator.
type Weights struct {
	// Overflow is charged once per worker whose plan does not fit the calendar.
	Overflow float64 `json:"overflow" yaml:"overflow" validate:"gte=0"`
	// Dependency is charged per prerequisite finishing after its dependent.
	Dependency float64 `json:"dependency" yaml:"dependency" validate:"gte=0"`
	// Imbalance scales the standard deviation of worker workloads.
	Imbalance float64 `json:"imbalance_weight" yaml:"imbalance_weight" validate:"gte=0"`
}

// DefaultWeights returns the penalty weights used when none are configured.
func DefaultWeights() Weights {
	return Weights{Overflow: 10000, Dependency: 500, Imbalance: 1}
}

// Evaluator turns a Solution into a comparable score. Higher is better.
// It only reads the graph and calendar, so one Evaluator can score many
// solutions concurrently.
type Evaluator struct {
	Graph    *model.Graph
	Releases model.Calendar
	Weights  Weights
	// Active restricts scoring to a subset of tasks. Nil means all tasks.
	Active model.ActiveSet
}

// NewEvaluator returns an Evaluator scoring against every task.
func NewEvaluator(g *model.Graph, releases model.Calendar, w Weights) *Evaluator {
	return &Evaluator{Graph: g, Releases: releases, Weights: w}
}

// WithActive returns a copy of e restricted to active.
func (e *Evaluator) WithActive(active model.ActiveSet) *Evaluator {
	cp := *e
	cp.Active = active
	return &cp
}

// Breakdown details how a score was obtained.
type Breakdown struct {
	Credit               float64     `json:"credit"`
	OverflowingWorkers   int         `json:"overflowing_workers"`
	OverflowPenalty      float64     `json:"overflow_penalty"`
	DependencyViolations int         `json:"dependency_violations"`
	DependencyPenalty    float64     `json:"dependency_penalty"`
	Imbalance            float64     `json:"imbalance"`
	ImbalancePenalty     float64     `json:"imbalance_penalty"`
	Score                float64     `json:"score"`
	TaskRelease          map[int]int `json:"-"`
}

// Score returns the scalar fitness of s.
func (e *Evaluator) Score(s *model.Solution) float64 {
	return e.Breakdown(s).Score
}

// Breakdown simulates every worker and aggregates the traces. Release i of R
// weighs its credit by 2^(R-i) so that early completion dominates.
func (e *Evaluator) Breakdown(s *model.Solution) Breakdown {
	var b Breakdown
	numReleases := len(e.Releases)
	b.TaskRelease = make(map[int]int)
	workloads := make([]float64, len(s.Workers))
	for i, w := range s.Workers {
		tr := Simulate(w, e.Graph, e.Releases, e.Active)
		if tr.Overflowing {
			b.OverflowingWorkers++
		}
		for r, credit := range tr.PriorityPerRelease {
			b.Credit += math.Ldexp(credit, numReleases-r)
		}
		for id, r := range tr.TaskRelease {
			b.TaskRelease[id] = r
		}
		workloads[i] = w.Workload(e.Graph, e.Active)
	}
	b.OverflowPenalty = float64(b.OverflowingWorkers) * e.Weights.Overflow

	b.DependencyViolations = CountViolations(e.Graph, b.TaskRelease)
	b.DependencyPenalty = float64(b.DependencyViolations) * e.Weights.Dependency

	b.Imbalance = StdDev(workloads)
	b.ImbalancePenalty = b.Imbalance * e.Weights.Imbalance

	b.Score = b.Credit - b.OverflowPenalty - b.DependencyPenalty - b.ImbalancePenalty
	return b
}

// CountViolations counts prerequisites completed in a later release than a
// task depending on them. Tasks missing from taskRelease are ignored.
func CountViolations(g *model.Graph, taskRelease map[int]int) int {
	violations := 0
	for _, t := range g.Tasks {
		tr, ok := taskRelease[t.ID]
		if !ok {
			continue
		}
		for _, d := range t.Dependencies {
			dr, ok := taskRelease[d]
			if !ok {
				continue
			}
			if dr > tr {
				violations++
			}
		}
	}
	return violations
}

// StdDev returns the sample standard deviation of values, or 0 when fewer
// than two values are given.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}
