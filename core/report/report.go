// Package report derives human oriented comparison metrics from a solution.
package report

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/relplan/core/fitness"
	"github.com/kilianp07/relplan/core/model"
)

// HighPriorityThreshold is the least urgent priority counted as high.
const HighPriorityThreshold = 3

// WorkerLoad is the effective workload of one worker.
type WorkerLoad struct {
	Name  string  `json:"name"`
	Tasks int     `json:"tasks"`
	Hours float64 `json:"hours"`
}

// Metrics summarizes a plan for side-by-side comparison of algorithms.
type Metrics struct {
	// PriorityCredit sums the credit of every assigned task.
	PriorityCredit    float64 `json:"priority_credit"`
	HighPriorityCount int     `json:"high_priority_count"`
	// HighPriorityRatio is the percentage of assigned tasks that are high
	// priority.
	HighPriorityRatio float64 `json:"high_priority_ratio"`
	TasksAssigned     int     `json:"tasks_assigned"`
	TasksDropped      int     `json:"tasks_dropped"`
	// TasksCompleted counts tasks the simulator fits into the calendar.
	TasksCompleted       int          `json:"tasks_completed"`
	TotalHours           float64      `json:"total_hours"`
	MaxWorkerHours       float64      `json:"max_worker_hours"`
	CapacityHours        float64      `json:"capacity_hours"`
	WorkloadVariance     float64      `json:"workload_variance"`
	WorkloadStdDev       float64      `json:"workload_std_dev"`
	EstimatedReleaseDays float64      `json:"estimated_release_days"`
	Workers              []WorkerLoad `json:"workers"`
}

// Compare computes the metrics of sol. Variance and standard deviation are
// sample statistics over worker hours and are zero for a single worker.
func Compare(sol *model.Solution, g *model.Graph, releases model.Calendar) Metrics {
	var m Metrics
	hours := make([]float64, len(sol.Workers))
	m.Workers = make([]WorkerLoad, len(sol.Workers))
	for k, w := range sol.Workers {
		for _, id := range w.Plan {
			t := g.Task(id)
			m.PriorityCredit += g.Credit(t)
			if t.Priority <= HighPriorityThreshold {
				m.HighPriorityCount++
			}
			m.TasksAssigned++
		}
		hours[k] = w.Workload(g, nil) / 60
		m.Workers[k] = WorkerLoad{Name: w.Name, Tasks: len(w.Plan), Hours: hours[k]}
		m.TotalHours += hours[k]
		m.MaxWorkerHours = math.Max(m.MaxWorkerHours, hours[k])
		m.TasksCompleted += len(fitness.Simulate(w, g, releases, nil).TaskRelease)
	}
	if m.TasksAssigned > 0 {
		m.HighPriorityRatio = float64(m.HighPriorityCount) / float64(m.TasksAssigned) * 100
	}
	m.TasksDropped = g.Len() - m.TasksAssigned
	m.CapacityHours = releases.TotalCapacity() / 60
	if len(hours) > 1 {
		m.WorkloadVariance = stat.Variance(hours, nil)
		m.WorkloadStdDev = math.Sqrt(m.WorkloadVariance)
	}
	m.EstimatedReleaseDays = m.MaxWorkerHours / model.ProductiveHoursPerDay
	return m
}
