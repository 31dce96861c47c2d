package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/relplan/core/metrics"
	coremon "github.com/kilianp07/relplan/core/monitoring"
	"github.com/kilianp07/relplan/core/model"
	"github.com/kilianp07/relplan/core/publish"
	"github.com/kilianp07/relplan/core/runlog"
	"github.com/kilianp07/relplan/core/search"
	"github.com/kilianp07/relplan/pkg/export"
)

type recordingPublisher struct {
	plans  []publish.WorkerPlan
	err    error
	closed bool
}

func (r *recordingPublisher) Publish(_ context.Context, plans []publish.WorkerPlan) error {
	r.plans = append(r.plans, plans...)
	return r.err
}

func (r *recordingPublisher) Close() { r.closed = true }

type runSink struct {
	mu   sync.Mutex
	runs []coremetrics.RunSummary
}

func (s *runSink) RecordRun(r coremetrics.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, r)
	return nil
}

func problem(t *testing.T) search.Problem {
	t.Helper()
	tasks := make([]model.Task, 12)
	for i := range tasks {
		tasks[i] = model.Task{ID: i, Name: "T", Cost: float64(60 + 30*i), Priority: 1 + i%5}
	}
	tasks[5].Dependencies = []int{2}
	g, err := model.NewGraph(tasks)
	require.NoError(t, err)
	return search.Problem{
		Graph:    g,
		Releases: model.Calendar{{WorkingDays: 2}, {WorkingDays: 3}},
		Workers:  []model.WorkerSpec{{Name: "ann", Efficiency: 1}, {Name: "bob", Efficiency: 0.8}},
	}
}

func mustAlg(t *testing.T, cfg search.Config) search.Algorithm {
	t.Helper()
	alg, err := search.New(cfg)
	require.NoError(t, err)
	return alg
}

func TestPlanStoresExportsAndPublishes(t *testing.T) {
	store := runlog.NewMemoryStore()
	pub := &recordingPublisher{}
	sink := &runSink{}
	path := filepath.Join(t.TempDir(), "plan.csv")
	svc := NewService(Deps{Store: store, Sink: sink, Publisher: pub, Export: export.Config{Path: path}})

	p := problem(t)
	out, err := svc.Plan(context.Background(), p, mustAlg(t, search.Config{Algorithm: search.AlgGenetic, Seed: 3, PopulationSize: 10, Generations: 5}))
	require.NoError(t, err)
	require.NotNil(t, out.Result.Best)
	require.NoError(t, out.Result.Best.CheckPermutation(p.Graph.Len()))

	assert.Equal(t, out.Result.RunID, out.Record.ID)
	assert.Equal(t, p.Graph.Len(), out.Metrics.TasksAssigned)
	assert.Len(t, out.Plans, 2)
	assert.Len(t, pub.plans, 2)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "worker,position,task")

	recs, err := svc.History(context.Background(), runlog.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, search.AlgGenetic, recs[0].Algorithm)

	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.runs, 1)
	assert.Equal(t, out.Result.RunID, sink.runs[0].RunID)
}

func TestPlanGreedyKeepsDroppedTasksOut(t *testing.T) {
	svc := NewService(Deps{})
	defer svc.Close()
	p := problem(t)
	p.Releases = model.Calendar{{WorkingDays: 1}}

	out, err := svc.Plan(context.Background(), p, mustAlg(t, search.Config{Algorithm: search.AlgGreedy}))
	require.NoError(t, err)
	assert.Greater(t, out.Metrics.TasksDropped, 0)
	assert.Equal(t, p.Graph.Len(), out.Metrics.TasksDropped+out.Metrics.TasksAssigned)
}

func TestPlanRecordsFailures(t *testing.T) {
	svc := NewService(Deps{})
	defer svc.Close()
	p := problem(t)
	p.Workers = nil

	out, err := svc.Plan(context.Background(), p, mustAlg(t, search.Config{Algorithm: search.AlgHillClimb}))
	require.ErrorIs(t, err, model.ErrInvalidConfiguration)
	assert.NotEmpty(t, out.Record.Error)

	recs, err := svc.History(context.Background(), runlog.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotEmpty(t, recs[0].Error)
}

// brokenSearch returns a plan holding task 0 twice.
type brokenSearch struct{}

func (brokenSearch) Name() string          { return search.AlgGenetic }
func (brokenSearch) Config() search.Config { return search.Config{Algorithm: search.AlgGenetic} }
func (brokenSearch) Search(_ context.Context, p search.Problem, _ ...search.Option) (search.Result, error) {
	sol := model.NewSolution(p.Workers)
	sol.Workers[0].Plan = p.Graph.IDs()
	sol.Workers[1].Plan = []int{0}
	return search.Result{Algorithm: search.AlgGenetic, Best: sol, Fitness: 1}, nil
}

type captureMonitor struct {
	errs []error
	tags []map[string]string
}

func (c *captureMonitor) CaptureException(err error, tags map[string]string) {
	c.errs = append(c.errs, err)
	c.tags = append(c.tags, tags)
}
func (c *captureMonitor) Recover()            {}
func (c *captureMonitor) Flush(time.Duration) {}

func TestPlanRejectsBrokenPermutation(t *testing.T) {
	mon := &captureMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})

	pub := &recordingPublisher{}
	path := filepath.Join(t.TempDir(), "plan.json")
	svc := NewService(Deps{Publisher: pub, Export: export.Config{Path: path}})
	defer svc.Close()

	out, err := svc.Plan(context.Background(), problem(t), brokenSearch{})
	require.ErrorIs(t, err, model.ErrInvariantViolation)
	assert.Nil(t, out.Result.Best)
	assert.Empty(t, out.Plans)
	assert.Empty(t, pub.plans)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "broken plan must not be exported")

	recs, err := svc.History(context.Background(), runlog.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, out.Record.ID, recs[0].ID)
	assert.Contains(t, recs[0].Error, "assigned twice")
	assert.Len(t, recs[0].Plans, 2)

	require.Len(t, mon.errs, 1)
	assert.Equal(t, "planner", mon.tags[0]["module"])
	assert.Equal(t, out.Result.RunID, mon.tags[0]["run_id"])
	assert.Equal(t, search.AlgGenetic, mon.tags[0]["algorithm"])
}

func TestPlanPublishError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(Deps{Publisher: pub})
	defer svc.Close()

	_, err := svc.Plan(context.Background(), problem(t), mustAlg(t, search.Config{Algorithm: search.AlgGreedy}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestCompare(t *testing.T) {
	svc := NewService(Deps{})
	defer svc.Close()
	algs := []search.Algorithm{
		mustAlg(t, search.Config{Algorithm: search.AlgGreedy}),
		mustAlg(t, search.Config{Algorithm: search.AlgHillClimb, Seed: 1, MaxIterations: 20}),
		mustAlg(t, search.Config{Algorithm: search.AlgGenetic, Seed: 1, PopulationSize: 8, Generations: 4}),
	}
	outs, err := svc.Compare(context.Background(), problem(t), algs)
	require.NoError(t, err)
	require.Len(t, outs, 3)

	best := Best(outs)
	require.GreaterOrEqual(t, best, 0)
	for _, o := range outs {
		assert.LessOrEqual(t, o.Result.Fitness, outs[best].Result.Fitness)
	}
	assert.Equal(t, -1, Best(nil))
}

func TestCompareStopsOnCancel(t *testing.T) {
	svc := NewService(Deps{})
	defer svc.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	algs := []search.Algorithm{
		mustAlg(t, search.Config{Algorithm: search.AlgGenetic, Seed: 1}),
		mustAlg(t, search.Config{Algorithm: search.AlgGreedy}),
	}
	outs, err := svc.Compare(ctx, problem(t), algs)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, outs, 1)
}
