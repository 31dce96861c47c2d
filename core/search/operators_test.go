package search

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/relplan/core/model"
)

func TestCrossoverKeepsPermutation(t *testing.T) {
	g := randomGraph(t, 40, 1)
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 500; i++ {
		a := randomSolution(t, g, 4, rng)
		b := randomSolution(t, g, 4, rng)
		a0, b0 := a.Clone(), b.Clone()

		c1, c2 := crossover(a, b, 1, nil, rng)
		require.NoError(t, c1.CheckPermutation(g.Len()), "iteration %d", i)
		require.NoError(t, c2.CheckPermutation(g.Len()), "iteration %d", i)
		require.Equal(t, a0, a, "parent a modified")
		require.Equal(t, b0, b, "parent b modified")
	}
}

func TestCrossoverBelowRateClones(t *testing.T) {
	g := randomGraph(t, 10, 1)
	rng := rand.New(rand.NewSource(3))
	a := randomSolution(t, g, 2, rng)
	b := randomSolution(t, g, 2, rng)
	c1, c2 := crossover(a, b, 0, nil, rng)
	assert.Equal(t, a, c1)
	assert.Equal(t, b, c2)
	c1.Workers[0].Plan = append(c1.Workers[0].Plan, 99)
	assert.NotEqual(t, a, c1)
}

func TestCrossoverRepairExample(t *testing.T) {
	// Segments [0 1] and [1 4]: 0 leaves the first child and 4 enters it,
	// so the old copy of 4 in the first child becomes 0.
	a := &model.Solution{Workers: []model.Worker{{Plan: []int{0, 1, 2}}, {Plan: []int{3, 4}}}}
	seg1, seg2 := []int{0, 1}, []int{1, 4}
	out, in := displaced(seg1, seg2)
	assert.Equal(t, []int{0}, out)
	assert.Equal(t, []int{4}, in)
	relabel(a, in, out)
	assert.Equal(t, []int{3, 0}, a.Workers[1].Plan)
}

func TestMutateKeepsPermutation(t *testing.T) {
	g := randomGraph(t, 25, 4)
	rng := rand.New(rand.NewSource(5))
	sol := randomSolution(t, g, 3, rng)
	for i := 0; i < 2000; i++ {
		mutate(sol, 1, nil, rng)
		require.NoError(t, sol.CheckPermutation(g.Len()), "iteration %d", i)
	}
}

func TestOperatorsNoOpOnDegenerateInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	single := &model.Solution{Workers: []model.Worker{{Plan: []int{0, 1}}}}
	assert.False(t, moveBetween(single, nil, rng))
	assert.Equal(t, []int{0, 1}, single.Workers[0].Plan)

	short := &model.Solution{Workers: []model.Worker{{Plan: []int{0}}, {}}}
	assert.False(t, swapWithin(short, nil, rng))

	empty := &model.Solution{Workers: []model.Worker{{}, {}}}
	assert.False(t, moveBetween(empty, nil, rng))
	n := swapNeighbor(empty, rng)
	assert.Equal(t, empty, n)

	c1, c2 := crossover(empty, empty, 1, nil, rng)
	assert.Equal(t, 0, c1.Assigned()+c2.Assigned())
}

// frozenLayout records, per worker, the frozen ids in plan order.
func frozenLayout(s *model.Solution, frozen taskSet) [][]int {
	layout := make([][]int, len(s.Workers))
	for k, w := range s.Workers {
		for _, id := range w.Plan {
			if frozen.has(id) {
				layout[k] = append(layout[k], id)
			}
		}
	}
	return layout
}

func frozenPositions(s *model.Solution, frozen taskSet) map[int][2]int {
	pos := map[int][2]int{}
	for k, w := range s.Workers {
		for i, id := range w.Plan {
			if frozen.has(id) {
				pos[id] = [2]int{k, i}
			}
		}
	}
	return pos
}

func TestOperatorsRespectFrozenTasks(t *testing.T) {
	g := randomGraph(t, 30, 6)
	rng := rand.New(rand.NewSource(7))
	frozen := taskSet{}
	for id := 0; id < 30; id += 3 {
		frozen[id] = struct{}{}
	}
	for i := 0; i < 300; i++ {
		a := randomSolution(t, g, 3, rng)
		b := randomSolution(t, g, 3, rng)

		c1, c2 := crossover(a, b, 1, frozen, rng)
		require.NoError(t, c1.CheckPermutation(g.Len()))
		require.NoError(t, c2.CheckPermutation(g.Len()))
		require.Equal(t, frozenPositions(a, frozen), frozenPositions(c1, frozen))
		require.Equal(t, frozenPositions(b, frozen), frozenPositions(c2, frozen))

		before := frozenLayout(c1, frozen)
		mutate(c1, 1, frozen, rng)
		require.NoError(t, c1.CheckPermutation(g.Len()))
		require.Equal(t, before, frozenLayout(c1, frozen))
	}
}

func TestMoveInsertsAfterFrozenPrefix(t *testing.T) {
	frozen := taskSet{0: {}, 1: {}}
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 50; i++ {
		s := &model.Solution{Workers: []model.Worker{{Plan: []int{2}}, {Plan: []int{0, 1}}}}
		require.True(t, moveBetween(s, frozen, rng))
		assert.Equal(t, []int{0, 1, 2}, s.Workers[1].Plan)
	}
}

func TestTournamentPrefersFitter(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	scores := []float64{1, 2, 3, 100}
	wins := 0
	for i := 0; i < 1000; i++ {
		if tournament(scores, 3, rng) == 3 {
			wins++
		}
	}
	// P(best drawn at least once in 3 draws) = 1 - (3/4)^3 ≈ 0.58
	assert.Greater(t, wins, 450)
	assert.Less(t, wins, 700)
	assert.Equal(t, 0, tournament([]float64{5}, 4, rng))
}
