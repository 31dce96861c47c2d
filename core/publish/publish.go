// Package publish describes how a finished plan leaves the process.
package publish

import (
	"context"
	"time"

	"github.com/kilianp07/relplan/core/model"
)

// Assignment is one task of a worker plan, in execution order.
type Assignment struct {
	Task     int    `json:"task"`
	Name     string `json:"name,omitempty"`
	Priority int    `json:"priority"`
	// Release is the index of the release the task completes in, or -1 when
	// the plan runs out of capacity before reaching it.
	Release int `json:"release"`
}

// WorkerPlan is the message sent for one worker.
type WorkerPlan struct {
	RunID     string       `json:"run_id"`
	Algorithm string       `json:"algorithm"`
	Worker    string       `json:"worker"`
	Tasks     []Assignment `json:"tasks"`
	Time      time.Time    `json:"timestamp"`
}

// Publisher delivers worker plans to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, plans []WorkerPlan) error
	Close()
}

// NopPublisher drops every plan.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, []WorkerPlan) error { return nil }
func (NopPublisher) Close()                                      {}

// PlansFrom builds one WorkerPlan per worker of sol. taskRelease maps task ids
// to the release they complete in; missing ids are reported as -1.
func PlansFrom(runID, algorithm string, sol *model.Solution, g *model.Graph, taskRelease map[int]int, now time.Time) []WorkerPlan {
	plans := make([]WorkerPlan, len(sol.Workers))
	for i, w := range sol.Workers {
		p := WorkerPlan{
			RunID:     runID,
			Algorithm: algorithm,
			Worker:    w.Name,
			Tasks:     make([]Assignment, 0, len(w.Plan)),
			Time:      now,
		}
		for _, id := range w.Plan {
			t := g.Task(id)
			r, ok := taskRelease[id]
			if !ok {
				r = -1
			}
			p.Tasks = append(p.Tasks, Assignment{Task: id, Name: t.Name, Priority: t.Priority, Release: r})
		}
		plans[i] = p
	}
	return plans
}
