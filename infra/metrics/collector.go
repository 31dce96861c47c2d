package metrics

import (
	"context"
	"sync"

	"github.com/kilianp07/relplan/core/events"
	coremetrics "github.com/kilianp07/relplan/core/metrics"
	"github.com/kilianp07/relplan/infra/logger"
	"github.com/kilianp07/relplan/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards planning
// events to sink. It stops when ctx is canceled or the bus is closed; the
// returned WaitGroup completes once the last event was recorded.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.SearchSink, log logger.Logger) *sync.WaitGroup {
	var wg sync.WaitGroup
	if bus == nil || sink == nil {
		return &wg
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("metrics sink: %v", err)
				}
			}
		}
	}()
	return &wg
}

func record(sink coremetrics.SearchSink, ev events.Event) error {
	switch e := ev.(type) {
	case events.ProgressEvent:
		if r, ok := sink.(coremetrics.ProgressRecorder); ok {
			return r.RecordProgress(coremetrics.ProgressPoint{
				RunID:       e.RunID,
				Algorithm:   e.Algorithm,
				Stage:       e.Stage,
				Step:        e.Step,
				BestFitness: e.BestFitness,
				Evaluations: e.Evaluations,
				Time:        e.Time,
			})
		}
	case events.RunEvent:
		return sink.RecordRun(coremetrics.RunSummary{
			RunID:                e.RunID,
			Algorithm:            e.Algorithm,
			Fitness:              e.Fitness,
			Credit:               e.Credit,
			OverflowingWorkers:   e.OverflowingWorkers,
			DependencyViolations: e.DependencyViolations,
			Imbalance:            e.Imbalance,
			Evaluations:          e.Evaluations,
			Duration:             e.Duration,
			Failed:               e.Err != nil,
			Time:                 e.Time,
		})
	}
	return nil
}
