package search

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	searchRuns        *prometheus.CounterVec
	searchGenerations *prometheus.CounterVec
	searchEvaluations *prometheus.CounterVec
	searchBestFitness *prometheus.GaugeVec
	searchDuration    *prometheus.HistogramVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.GaugeVec, *prometheus.HistogramVec) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relplan_search_runs_total",
			Help: "Number of search runs by outcome",
		},
		[]string{"algorithm", "outcome"},
	)
	gens := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relplan_search_generations_total",
			Help: "Generations evolved by genetic strategies",
		},
		[]string{"algorithm"},
	)
	evals := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relplan_search_evaluations_total",
			Help: "Fitness evaluations performed",
		},
		[]string{"algorithm"},
	)
	best := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relplan_search_best_fitness",
			Help: "Best fitness of the current or last run",
		},
		[]string{"algorithm"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relplan_search_duration_seconds",
			Help:    "Wall time of search runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
		[]string{"algorithm"},
	)
	return runs, gens, evals, best, dur
}

func init() {
	searchRuns, searchGenerations, searchEvaluations, searchBestFitness, searchDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers search metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(searchRuns, searchGenerations, searchEvaluations, searchBestFitness, searchDuration)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	searchRuns, searchGenerations, searchEvaluations, searchBestFitness, searchDuration = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func observeRun(res Result, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	searchRuns.WithLabelValues(res.Algorithm, outcome).Inc()
	searchEvaluations.WithLabelValues(res.Algorithm).Add(float64(res.Evaluations))
	searchDuration.WithLabelValues(res.Algorithm).Observe(res.Duration.Seconds())
	if res.Best != nil {
		searchBestFitness.WithLabelValues(res.Algorithm).Set(res.Fitness)
	}
}
