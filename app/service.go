// Package app wires the planning engine to its adapters.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/relplan/config"
	"github.com/kilianp07/relplan/core/events"
	coremetrics "github.com/kilianp07/relplan/core/metrics"
	coremon "github.com/kilianp07/relplan/core/monitoring"
	"github.com/kilianp07/relplan/core/publish"
	"github.com/kilianp07/relplan/core/report"
	"github.com/kilianp07/relplan/core/runlog"
	"github.com/kilianp07/relplan/core/search"
	"github.com/kilianp07/relplan/infra/logger"
	"github.com/kilianp07/relplan/infra/metrics"
	"github.com/kilianp07/relplan/infra/monitoring"
	"github.com/kilianp07/relplan/infra/mqtt"
	"github.com/kilianp07/relplan/internal/eventbus"
	"github.com/kilianp07/relplan/pkg/export"
)

// Outcome is everything a planning run produced.
type Outcome struct {
	Result  search.Result        `json:"-"`
	Metrics report.Metrics       `json:"metrics"`
	Record  runlog.Record        `json:"record"`
	Plans   []publish.WorkerPlan `json:"plans"`
}

// Deps are the collaborators of a Service. Nil fields get no-op defaults.
type Deps struct {
	Store     runlog.Store
	Sink      coremetrics.SearchSink
	Publisher publish.Publisher
	Export    export.Config
	Logger    logger.Logger
	// BusBuffer sizes the per-subscriber buffer of the progress bus.
	// Zero selects defaultBusBuffer.
	BusBuffer int
}

const defaultBusBuffer = 256

// Service runs searches and persists, exports and publishes their plans.
type Service struct {
	store     runlog.Store
	publisher publish.Publisher
	export    export.Config
	log       logger.Logger

	bus       *eventbus.Bus[events.Event]
	collector *sync.WaitGroup
	stop      context.CancelFunc

	promAddr string
}

// NewService assembles a Service from explicit dependencies.
func NewService(d Deps) *Service {
	if d.Store == nil {
		d.Store = runlog.NewMemoryStore()
	}
	if d.Sink == nil {
		d.Sink = coremetrics.NopSink{}
	}
	if d.Publisher == nil {
		d.Publisher = publish.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = logger.NopLogger{}
	}
	if d.BusBuffer == 0 {
		d.BusBuffer = defaultBusBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	bus := eventbus.New[events.Event](d.BusBuffer)
	return &Service{
		store:     d.Store,
		publisher: d.Publisher,
		export:    d.Export,
		log:       d.Logger,
		bus:       bus,
		collector: metrics.StartEventCollector(ctx, bus, d.Sink, d.Logger),
		stop:      cancel,
	}
}

// New creates a Service from the configuration: run log, metric sinks,
// MQTT publisher and Sentry monitor.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	store, err := runlog.Open(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run log: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	var pub publish.Publisher = publish.NopPublisher{}
	if cfg.MQTT.Enabled() {
		p, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = p
	}
	svc := NewService(Deps{Store: store, Sink: sink, Publisher: pub, Export: cfg.Export, Logger: log})
	svc.promAddr = cfg.Metrics.PrometheusAddr
	return svc, nil
}

// Serve runs the Prometheus endpoint, when configured, until ctx is done.
func (s *Service) Serve(ctx context.Context) {
	if s.promAddr == "" {
		return
	}
	go func() {
		defer coremon.Recover()
		if err := metrics.StartPromServer(ctx, s.promAddr, nil); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Plan runs alg on p. The plan is stored, exported and published even when
// the search was cut short by ctx; the context error is returned alongside
// the outcome in that case. A plan breaking the permutation invariant is
// recorded as failed and returned without a Best solution.
func (s *Service) Plan(ctx context.Context, p search.Problem, alg search.Algorithm) (Outcome, error) {
	runID := uuid.NewString()
	run := coremon.Run{ID: runID, Algorithm: alg.Name()}

	res, searchErr := alg.Search(ctx, p,
		search.WithLogger(logger.New(alg.Name())),
		search.WithBus(s.bus),
		search.WithRunID(runID),
	)
	if res.RunID == "" {
		res.RunID = runID
	}
	if res.Algorithm == "" {
		res.Algorithm = alg.Name()
	}
	if res.Best == nil {
		if searchErr == nil {
			searchErr = errors.New("search returned no solution")
		}
		rec := runlog.NewRecord(p, res, report.Metrics{}, searchErr)
		s.append(ctx, rec)
		coremon.CaptureRun(searchErr, "planner", run)
		return Outcome{Result: res, Record: rec}, searchErr
	}

	if alg.Name() != search.AlgGreedy {
		if err := res.Best.CheckPermutation(p.Graph.Len()); err != nil {
			coremon.CaptureRun(err, "planner", run)
			// the record keeps the broken plans for inspection; callers get none
			rec := runlog.NewRecord(p, res, report.Metrics{}, err)
			s.append(ctx, rec)
			res.Best = nil
			return Outcome{Result: res, Record: rec}, err
		}
	}

	out := Outcome{Result: res}
	out.Metrics = report.Compare(res.Best, p.Graph, p.Releases)
	out.Record = runlog.NewRecord(p, res, out.Metrics, searchErr)
	out.Plans = publish.PlansFrom(res.RunID, res.Algorithm, res.Best, p.Graph, res.Breakdown.TaskRelease, time.Now().UTC())
	s.append(ctx, out.Record)

	if s.export.Path != "" {
		if err := export.WriteFile(s.export, export.Entries(out.Plans)); err != nil {
			coremon.CaptureRun(err, "planner", run)
			return out, fmt.Errorf("export plan: %w", err)
		}
		s.log.Infof("plan %s exported to %s", res.RunID, s.export.Path)
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), out.Plans); err != nil {
		return out, fmt.Errorf("publish plan: %w", err)
	}
	return out, searchErr
}

// append stores rec; a failing store does not fail the run.
func (s *Service) append(ctx context.Context, rec runlog.Record) {
	if err := s.store.Append(context.WithoutCancel(ctx), rec); err != nil {
		s.log.Errorf("run log append: %v", err)
		coremon.CaptureRun(err, "runlog", coremon.Run{ID: rec.ID, Algorithm: rec.Algorithm})
	}
}

// Compare runs every algorithm on the same problem, one after another. A
// failing algorithm is reported in its Outcome record and does not stop the
// comparison; only a canceled context does.
func (s *Service) Compare(ctx context.Context, p search.Problem, algs []search.Algorithm) ([]Outcome, error) {
	outs := make([]Outcome, 0, len(algs))
	for _, alg := range algs {
		out, err := s.Plan(ctx, p, alg)
		outs = append(outs, out)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outs, ctxErr
		}
		if err != nil {
			s.log.Warnf("%s failed: %v", alg.Name(), err)
		}
	}
	return outs, nil
}

// Best returns the index of the outcome with the highest fitness, or -1 when
// none produced a plan.
func Best(outs []Outcome) int {
	best := -1
	for i, o := range outs {
		if o.Result.Best == nil {
			continue
		}
		if best < 0 || o.Result.Fitness > outs[best].Result.Fitness {
			best = i
		}
	}
	return best
}

// History returns stored runs matching q.
func (s *Service) History(ctx context.Context, q runlog.Query) ([]runlog.Record, error) {
	return s.store.Query(ctx, q)
}

// Bus exposes the progress bus so callers can follow running searches.
func (s *Service) Bus() *eventbus.Bus[events.Event] { return s.bus }

// Close stops the metrics collector and releases the adapters.
func (s *Service) Close() error {
	s.bus.Close()
	s.collector.Wait()
	s.stop()
	s.publisher.Close()
	coremon.Flush(2 * time.Second)
	return s.store.Close()
}
