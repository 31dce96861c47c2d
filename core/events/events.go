package events

import "time"

// Event is any value published on the planning bus.
type Event interface{}

// ProgressEvent is published by a search strategy whenever it completes a
// generation (genetic) or an iteration (hill climbing).
type ProgressEvent struct {
	RunID     string
	Algorithm string
	// Stage is the release stage of incremental search, 0 otherwise.
	Stage       int
	Step        int
	BestFitness float64
	Evaluations int
	Time        time.Time
}

// RunEvent is published once per run when the search returns.
type RunEvent struct {
	RunID                string
	Algorithm            string
	Fitness              float64
	Credit               float64
	OverflowingWorkers   int
	DependencyViolations int
	Imbalance            float64
	Evaluations          int
	Duration             time.Duration
	Err                  error
	Time                 time.Time
}
