package model

import "fmt"

// WorkerSpec describes a roster member as loaded from external data.
type WorkerSpec struct {
	Name       string  `json:"name" yaml:"name"`
	Efficiency float64 `json:"efficiency" yaml:"efficiency"` // effort-minutes completed per real minute
}

// Validate checks that the efficiency multiplier is positive.
func (s WorkerSpec) Validate() error {
	if s.Efficiency <= 0 {
		return fmt.Errorf("%w: worker %q has efficiency %v", ErrInvalidInput, s.Name, s.Efficiency)
	}
	return nil
}

// Worker is a roster member together with its ordered work plan of task ids.
type Worker struct {
	Name       string  `json:"name"`
	Efficiency float64 `json:"efficiency"`
	Plan       []int   `json:"plan"`
}

// NewWorker returns a worker with an empty plan.
func NewWorker(spec WorkerSpec) Worker {
	return Worker{Name: spec.Name, Efficiency: spec.Efficiency}
}

// EffectiveCost returns the real minutes the worker spends on t.
func (w Worker) EffectiveCost(t Task) float64 {
	return t.Cost / w.Efficiency
}

// Workload returns the effective minutes of every task in the plan. When
// active is non-nil only tasks it contains are counted.
func (w Worker) Workload(g *Graph, active ActiveSet) float64 {
	var total float64
	for _, id := range w.Plan {
		if !active.Contains(id) {
			continue
		}
		total += w.EffectiveCost(g.Task(id))
	}
	return total
}

// Clone returns a worker owning its own copy of the plan.
func (w Worker) Clone() Worker {
	cp := w
	cp.Plan = append([]int(nil), w.Plan...)
	return cp
}

// Insert places id at index i of the plan, shifting later tasks right.
func (w *Worker) Insert(i, id int) {
	w.Plan = append(w.Plan, 0)
	copy(w.Plan[i+1:], w.Plan[i:])
	w.Plan[i] = id
}

// RemoveAt deletes and returns the task at index i.
func (w *Worker) RemoveAt(i int) int {
	id := w.Plan[i]
	w.Plan = append(w.Plan[:i], w.Plan[i+1:]...)
	return id
}

// ActiveSet restricts evaluation to a subset of task ids. A nil set means
// every task is active.
type ActiveSet map[int]struct{}

// NewActiveSet builds a set from ids.
func NewActiveSet(ids ...int) ActiveSet {
	s := make(ActiveSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is active.
func (s ActiveSet) Contains(id int) bool {
	if s == nil {
		return true
	}
	_, ok := s[id]
	return ok
}
