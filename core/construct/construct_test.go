package construct

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relplan/core/model"
)

func sampleGraph(t *testing.T) *model.Graph {
	t.Helper()
	g, err := model.NewGraph([]model.Task{
		{ID: 0, Cost: 120, Priority: 3},
		{ID: 1, Cost: 60, Priority: 1},
		{ID: 2, Cost: 30, Priority: 3},
		{ID: 3, Cost: 240, Priority: 1},
		{ID: 4, Cost: 10, Priority: 8},
	})
	require.NoError(t, err)
	return g
}

var roster = []model.WorkerSpec{{Name: "a", Efficiency: 1}, {Name: "b", Efficiency: 1.2}, {Name: "c", Efficiency: 0.7}}

func TestBuildKeepsPermutation(t *testing.T) {
	g := sampleGraph(t)
	for _, s := range []Strategy{Random, PriorityCost, PriorityDensity} {
		for seed := int64(0); seed < 20; seed++ {
			sol, err := Build(s, roster, g, rand.New(rand.NewSource(seed)))
			require.NoError(t, err)
			require.Len(t, sol.Workers, 3)
			require.NoError(t, sol.CheckPermutation(g.Len()), "strategy %s seed %d", s, seed)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	sol, err := Build(Empty, roster, sampleGraph(t), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 0, sol.Assigned())
	assert.Equal(t, "b", sol.Workers[1].Name)
	assert.Equal(t, 1.2, sol.Workers[1].Efficiency)
}

func TestBuildSingleWorkerPreservesOrder(t *testing.T) {
	g := sampleGraph(t)
	one := []model.WorkerSpec{{Name: "solo", Efficiency: 1}}

	sol, err := Build(PriorityCost, one, g, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 2, 0, 4}, sol.Workers[0].Plan)

	// credit 8 for priority 1, 6 for priority 3, 1 for priority 8
	sol, err = Build(PriorityDensity, one, g, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 4, 0, 3}, sol.Workers[0].Plan)
}

func TestBuildUnknownStrategy(t *testing.T) {
	_, err := Build("round_robin", roster, sampleGraph(t), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)

	_, err = Parse("nope")
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)

	s, err := Parse("priority_density")
	require.NoError(t, err)
	assert.Equal(t, PriorityDensity, s)
}

func TestBuildNoWorkers(t *testing.T) {
	_, err := Build(Random, nil, sampleGraph(t), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
}
