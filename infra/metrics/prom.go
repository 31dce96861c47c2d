package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/relplan/core/metrics"
)

// PromSink exposes run summaries as Prometheus metrics.
type PromSink struct {
	runs       *prometheus.CounterVec
	fitness    *prometheus.GaugeVec
	violations *prometheus.GaugeVec
	overflow   *prometheus.GaugeVec
	imbalance  *prometheus.GaugeVec
	progress   *prometheus.GaugeVec
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relplan_plan_runs_total",
			Help: "Planning runs recorded, by algorithm and outcome",
		}, []string{"algorithm", "failed"}),
		fitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relplan_plan_fitness",
			Help: "Fitness of the last plan produced by each algorithm",
		}, []string{"algorithm"}),
		violations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relplan_plan_dependency_violations",
			Help: "Dependency violations in the last plan",
		}, []string{"algorithm"}),
		overflow: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relplan_plan_overflowing_workers",
			Help: "Workers whose plan exceeds the calendar in the last plan",
		}, []string{"algorithm"}),
		imbalance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relplan_plan_workload_stddev_minutes",
			Help: "Standard deviation of worker workloads in the last plan",
		}, []string{"algorithm"}),
		progress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "relplan_plan_progress_fitness",
			Help: "Best fitness reached so far by a running search",
		}, []string{"algorithm", "stage"}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.fitness, err = register(reg, s.fitness); err != nil {
		return nil, err
	}
	if s.violations, err = register(reg, s.violations); err != nil {
		return nil, err
	}
	if s.overflow, err = register(reg, s.overflow); err != nil {
		return nil, err
	}
	if s.imbalance, err = register(reg, s.imbalance); err != nil {
		return nil, err
	}
	if s.progress, err = register(reg, s.progress); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the run counter and last-plan gauges.
func (s *PromSink) RecordRun(r coremetrics.RunSummary) error {
	s.runs.WithLabelValues(r.Algorithm, strconv.FormatBool(r.Failed)).Inc()
	if r.Failed {
		return nil
	}
	s.fitness.WithLabelValues(r.Algorithm).Set(r.Fitness)
	s.violations.WithLabelValues(r.Algorithm).Set(float64(r.DependencyViolations))
	s.overflow.WithLabelValues(r.Algorithm).Set(float64(r.OverflowingWorkers))
	s.imbalance.WithLabelValues(r.Algorithm).Set(r.Imbalance)
	return nil
}

// RecordProgress sets the progress gauge of the run's stage.
func (s *PromSink) RecordProgress(p coremetrics.ProgressPoint) error {
	s.progress.WithLabelValues(p.Algorithm, strconv.Itoa(p.Stage)).Set(p.BestFitness)
	return nil
}
