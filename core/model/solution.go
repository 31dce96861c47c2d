package model

import (
	"fmt"
	"slices"
)

// Solution is a full assignment: one ordered work plan per worker. Every
// task id must appear in exactly one plan, except for tasks a constructor
// deliberately drops.
type Solution struct {
	Workers []Worker `json:"workers"`
}

// NewSolution returns a solution with one empty worker per spec.
func NewSolution(specs []WorkerSpec) *Solution {
	s := &Solution{Workers: make([]Worker, len(specs))}
	for i, spec := range specs {
		s.Workers[i] = NewWorker(spec)
	}
	return s
}

// Clone returns a deep copy; no plan slice is shared with s.
func (s *Solution) Clone() *Solution {
	cp := &Solution{Workers: make([]Worker, len(s.Workers))}
	for i, w := range s.Workers {
		cp.Workers[i] = w.Clone()
	}
	return cp
}

// Flatten returns the concatenation of all work plans.
func (s *Solution) Flatten() []int {
	var n int
	for _, w := range s.Workers {
		n += len(w.Plan)
	}
	flat := make([]int, 0, n)
	for _, w := range s.Workers {
		flat = append(flat, w.Plan...)
	}
	return flat
}

// Assigned returns the number of task ids held by all plans.
func (s *Solution) Assigned() int {
	var n int
	for _, w := range s.Workers {
		n += len(w.Plan)
	}
	return n
}

// CheckPermutation verifies that the plans hold every id in [0, n) exactly
// once.
func (s *Solution) CheckPermutation(n int) error {
	seen := make([]bool, n)
	count := 0
	for _, w := range s.Workers {
		for _, id := range w.Plan {
			if id < 0 || id >= n {
				return fmt.Errorf("%w: unknown task %d in plan of %s", ErrInvariantViolation, id, w.Name)
			}
			if seen[id] {
				return fmt.Errorf("%w: task %d assigned twice", ErrInvariantViolation, id)
			}
			seen[id] = true
			count++
		}
	}
	if count != n {
		return fmt.Errorf("%w: %d of %d tasks assigned", ErrInvariantViolation, count, n)
	}
	return nil
}

// SameTasks reports whether s and other hold the same multiset of task ids.
func (s *Solution) SameTasks(other *Solution) bool {
	a := s.Flatten()
	b := other.Flatten()
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}
