// Package runlog keeps the history of planning runs.
package runlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/relplan/core/fitness"
	"github.com/kilianp07/relplan/core/report"
	"github.com/kilianp07/relplan/core/search"
)

// Record captures one search run and the plan it produced.
type Record struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Algorithm   string            `json:"algorithm"`
	Seed        int64             `json:"seed"`
	Fitness     float64           `json:"fitness"`
	Breakdown   fitness.Breakdown `json:"breakdown"`
	Metrics     report.Metrics    `json:"metrics"`
	Iterations  int               `json:"iterations"`
	Evaluations int               `json:"evaluations"`
	DurationMS  int64             `json:"duration_ms"`
	Tasks       int               `json:"tasks"`
	Releases    int               `json:"releases"`
	// Plans maps each worker name to its ordered task ids.
	Plans map[string][]int `json:"plans,omitempty"`
	Error string           `json:"error,omitempty"`
}

// NewRecord builds a record from a search result. The result's run ID is
// kept when set, a fresh UUID is assigned otherwise.
func NewRecord(p search.Problem, res search.Result, m report.Metrics, runErr error) Record {
	rec := Record{
		ID:          res.RunID,
		Timestamp:   time.Now().UTC(),
		Algorithm:   res.Algorithm,
		Seed:        res.Seed,
		Fitness:     res.Fitness,
		Breakdown:   res.Breakdown,
		Metrics:     m,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		DurationMS:  res.Duration.Milliseconds(),
		Releases:    len(p.Releases),
	}
	if p.Graph != nil {
		rec.Tasks = p.Graph.Len()
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if res.Best != nil {
		rec.Plans = make(map[string][]int, len(res.Best.Workers))
		for i, w := range res.Best.Workers {
			name := w.Name
			if name == "" {
				name = fmt.Sprintf("worker-%d", i)
			}
			rec.Plans[name] = append([]int(nil), w.Plan...)
		}
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	return rec
}

// Query defines filters for retrieving records. Zero fields do not filter.
type Query struct {
	Start     time.Time
	End       time.Time
	Algorithm string
	// Limit keeps only the most recent records when positive.
	Limit int
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return q.Algorithm == "" || r.Algorithm == q.Algorithm
}

func (q Query) trim(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying. Query returns records in
// chronological order.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
