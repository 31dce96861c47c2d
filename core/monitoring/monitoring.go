// Package monitoring holds the process-wide error reporter. Failed planning
// runs and broken invariants are captured here; the default reporter drops
// everything.
package monitoring

import (
	"context"
	"errors"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards every report.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if current != nil {
		current.CaptureException(err, tags)
	}
}

// Recover captures panics in goroutines.
func Recover() {
	if current != nil {
		current.Recover()
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	if current != nil {
		current.Flush(d)
	}
}

// Run identifies the planning run a report is about. Empty fields are not
// tagged.
type Run struct {
	ID        string
	Algorithm string
	Worker    string
}

// Tags returns the tags of a report raised by module about r.
func (r Run) Tags(module string) map[string]string {
	tags := map[string]string{"module": module}
	if r.ID != "" {
		tags["run_id"] = r.ID
	}
	if r.Algorithm != "" {
		tags["algorithm"] = r.Algorithm
	}
	if r.Worker != "" {
		tags["worker"] = r.Worker
	}
	return tags
}

// CaptureRun reports err raised by module while handling r. A canceled run
// is not a failure and is not reported.
func CaptureRun(err error, module string, r Run) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	CaptureException(err, r.Tags(module))
}
