package metrics

import "time"

// RunSummary is the outcome of one search run.
type RunSummary struct {
	RunID                string
	Algorithm            string
	Fitness              float64
	Credit               float64
	OverflowingWorkers   int
	DependencyViolations int
	Imbalance            float64
	Evaluations          int
	Duration             time.Duration
	Failed               bool
	Time                 time.Time
}

// SearchSink records finished runs.
type SearchSink interface {
	RecordRun(s RunSummary) error
}

// ProgressPoint is the best fitness known at a search step.
type ProgressPoint struct {
	RunID       string
	Algorithm   string
	Stage       int
	Step        int
	BestFitness float64
	Evaluations int
	Time        time.Time
}

// ProgressRecorder is implemented by sinks able to record per-step progress.
type ProgressRecorder interface {
	RecordProgress(p ProgressPoint) error
}

// NopSink implements SearchSink and ProgressRecorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunSummary) error         { return nil }
func (NopSink) RecordProgress(ProgressPoint) error { return nil }
