package model

import "fmt"

// DefaultMaxPriority is the least urgent priority level produced by the
// dataset loaders (Blocker=1 .. Trivial=8).
const DefaultMaxPriority = 8

// Task is an immutable unit of work. IDs are dense: the task with ID i is
// stored at index i of its Graph.
type Task struct {
	ID           int     `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Cost         float64 `json:"cost" yaml:"cost"`         // effort-minutes
	Priority     int     `json:"priority" yaml:"priority"` // 1 = most urgent
	Dependencies []int   `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Graph holds every task of a planning run together with the dependency
// relation. It is read-only once built.
type Graph struct {
	Tasks       []Task
	MaxPriority int
}

// NewGraph validates tasks and returns the graph. Tasks must be sorted by ID
// with IDs forming the range [0, len(tasks)).
func NewGraph(tasks []Task) (*Graph, error) {
	maxPrio := DefaultMaxPriority
	for i, t := range tasks {
		if t.ID != i {
			return nil, fmt.Errorf("%w: task at index %d has id %d", ErrInvalidInput, i, t.ID)
		}
		if t.Cost <= 0 {
			return nil, fmt.Errorf("%w: task %d has non-positive cost %v", ErrInvalidInput, t.ID, t.Cost)
		}
		if t.Priority < 1 {
			return nil, fmt.Errorf("%w: task %d has priority %d", ErrInvalidInput, t.ID, t.Priority)
		}
		for _, d := range t.Dependencies {
			if d < 0 || d >= len(tasks) {
				return nil, fmt.Errorf("%w: task %d depends on unknown task %d", ErrInvalidInput, t.ID, d)
			}
		}
		if t.Priority > maxPrio {
			maxPrio = t.Priority
		}
	}
	return &Graph{Tasks: tasks, MaxPriority: maxPrio}, nil
}

// Len returns the number of tasks.
func (g *Graph) Len() int { return len(g.Tasks) }

// Task returns the task with the given id.
func (g *Graph) Task(id int) Task { return g.Tasks[id] }

// Credit is the priority credit earned for completing t: the most urgent
// level earns MaxPriority, the least urgent earns 1.
func (g *Graph) Credit(t Task) float64 {
	return float64(g.MaxPriority + 1 - t.Priority)
}

// IDs returns all task ids in ascending order.
func (g *Graph) IDs() []int {
	ids := make([]int, len(g.Tasks))
	for i := range ids {
		ids[i] = i
	}
	return ids
}
