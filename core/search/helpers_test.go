package search

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relplan/core/construct"
	"github.com/kilianp07/relplan/core/model"
)

func randomGraph(t *testing.T, n int, seed int64) *model.Graph {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	tasks := make([]model.Task, n)
	for i := range tasks {
		tasks[i] = model.Task{ID: i, Cost: float64(30 + rng.Intn(400)), Priority: 1 + rng.Intn(8)}
		if i > 0 && rng.Intn(4) == 0 {
			tasks[i].Dependencies = []int{rng.Intn(i)}
		}
	}
	g, err := model.NewGraph(tasks)
	require.NoError(t, err)
	return g
}

func days(n ...int) model.Calendar {
	cal := make(model.Calendar, len(n))
	for i, d := range n {
		cal[i] = model.Release{WorkingDays: d}
	}
	return cal
}

func team(n int) []model.WorkerSpec {
	specs := make([]model.WorkerSpec, n)
	for i := range specs {
		specs[i] = model.WorkerSpec{Name: string(rune('a' + i)), Efficiency: 0.8 + 0.1*float64(i)}
	}
	return specs
}

func randomSolution(t *testing.T, g *model.Graph, workers int, rng *rand.Rand) *model.Solution {
	t.Helper()
	sol, err := construct.Build(construct.Random, team(workers), g, rng)
	require.NoError(t, err)
	return sol
}

func sampleProblem(t *testing.T) Problem {
	t.Helper()
	return Problem{Graph: randomGraph(t, 30, 11), Releases: days(3, 3, 4), Workers: team(3)}
}
