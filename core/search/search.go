package search

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/kilianp07/relplan/core/events"
	"github.com/kilianp07/relplan/core/fitness"
	"github.com/kilianp07/relplan/core/logger"
	"github.com/kilianp07/relplan/core/model"
	"github.com/kilianp07/relplan/internal/eventbus"
)

// Problem is the read-only input of a search run.
type Problem struct {
	Graph    *model.Graph
	Releases model.Calendar
	Workers  []model.WorkerSpec
}

// Validate checks that the problem can be searched.
func (p Problem) Validate() error {
	if p.Graph == nil {
		return fmt.Errorf("%w: no task graph", model.ErrInvalidInput)
	}
	if len(p.Workers) == 0 {
		return fmt.Errorf("%w: no workers", model.ErrInvalidConfiguration)
	}
	for _, w := range p.Workers {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	return p.Releases.Validate()
}

// Result is the outcome of a search run.
type Result struct {
	Algorithm string
	RunID     string
	Seed      int64
	Best      *model.Solution
	Fitness   float64
	Breakdown fitness.Breakdown
	// Iterations counts generations for genetic strategies and accepted
	// moves for hill climbing.
	Iterations  int
	Evaluations int
	Duration    time.Duration
}

// Algorithm is a planning strategy. Implementations are safe to reuse across
// runs; per-run state lives in Search.
type Algorithm interface {
	Name() string
	Config() Config
	// Search returns the best solution found. On cancellation the best
	// solution so far is returned together with the context error.
	Search(ctx context.Context, p Problem, opts ...Option) (Result, error)
}

// Option customizes a single run.
type Option func(*runEnv)

// WithLogger sets the logger used during the run.
func WithLogger(l logger.Logger) Option {
	return func(e *runEnv) { e.log = logger.OrNop(l) }
}

// WithBus publishes progress and run events on bus.
func WithBus(bus *eventbus.Bus[events.Event]) Option {
	return func(e *runEnv) { e.bus = bus }
}

// WithRunID tags events with id.
func WithRunID(id string) Option {
	return func(e *runEnv) { e.runID = id }
}

// WithRand overrides the generator otherwise seeded from Config.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(e *runEnv) { e.rng = rng }
}

type runEnv struct {
	alg   string
	log   logger.Logger
	bus   *eventbus.Bus[events.Event]
	runID string
	rng   *rand.Rand
	seed  int64
	start time.Time
}

func newRunEnv(alg string, cfg Config, opts []Option) *runEnv {
	env := &runEnv{alg: alg, log: logger.NopLogger{}, start: time.Now()}
	for _, o := range opts {
		o(env)
	}
	if env.rng == nil {
		env.seed = cfg.Seed
		if env.seed == 0 {
			env.seed = env.start.UnixNano()
		}
		env.rng = rand.New(rand.NewSource(env.seed))
	}
	return env
}

func (e *runEnv) progress(stage, step int, best float64, evaluations int) {
	searchBestFitness.WithLabelValues(e.alg).Set(best)
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.ProgressEvent{
		RunID:       e.runID,
		Algorithm:   e.alg,
		Stage:       stage,
		Step:        step,
		BestFitness: best,
		Evaluations: evaluations,
		Time:        time.Now(),
	})
}

// finish scores best with the unrestricted evaluator and reports the run.
func (e *runEnv) finish(eval *fitness.Evaluator, best *model.Solution, iterations, evaluations int, runErr error) (Result, error) {
	res := Result{
		Algorithm:   e.alg,
		RunID:       e.runID,
		Seed:        e.seed,
		Best:        best,
		Iterations:  iterations,
		Evaluations: evaluations,
		Duration:    time.Since(e.start),
	}
	if best != nil {
		res.Breakdown = eval.WithActive(nil).Breakdown(best)
		res.Fitness = res.Breakdown.Score
	}
	observeRun(res, runErr)
	if runErr != nil {
		e.log.Warnf("%s stopped after %d iterations: %v", e.alg, iterations, runErr)
	} else {
		e.log.Infof("%s finished: fitness %.2f after %d iterations, %d evaluations in %s",
			e.alg, res.Fitness, iterations, evaluations, res.Duration)
	}
	if e.bus != nil {
		e.bus.Publish(events.RunEvent{
			RunID:                e.runID,
			Algorithm:            e.alg,
			Fitness:              res.Fitness,
			Credit:               res.Breakdown.Credit,
			OverflowingWorkers:   res.Breakdown.OverflowingWorkers,
			DependencyViolations: res.Breakdown.DependencyViolations,
			Imbalance:            res.Breakdown.Imbalance,
			Evaluations:          evaluations,
			Duration:             res.Duration,
			Err:                  runErr,
			Time:                 time.Now(),
		})
	}
	return res, runErr
}
