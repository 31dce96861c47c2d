package search

import (
	"math/rand"

	"github.com/kilianp07/relplan/core/model"
)

// taskSet holds frozen task ids. Operators never move a frozen task nor
// insert anything ahead of one. A nil set freezes nothing.
type taskSet map[int]struct{}

func (s taskSet) has(id int) bool {
	_, ok := s[id]
	return ok
}

// freePositions lists the plan indices holding movable tasks.
func freePositions(plan []int, frozen taskSet) []int {
	free := make([]int, 0, len(plan))
	for i, id := range plan {
		if !frozen.has(id) {
			free = append(free, i)
		}
	}
	return free
}

// insertFloor is the first plan index after the last frozen task.
func insertFloor(plan []int, frozen taskSet) int {
	for i := len(plan) - 1; i >= 0; i-- {
		if frozen.has(plan[i]) {
			return i + 1
		}
	}
	return 0
}

// swapWithin exchanges two movable tasks of one random worker holding at
// least two of them. It reports false and leaves s untouched otherwise.
func swapWithin(s *model.Solution, frozen taskSet, rng *rand.Rand) bool {
	var candidates []int
	frees := make([][]int, len(s.Workers))
	for k, w := range s.Workers {
		frees[k] = freePositions(w.Plan, frozen)
		if len(frees[k]) >= 2 {
			candidates = append(candidates, k)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	k := candidates[rng.Intn(len(candidates))]
	free := frees[k]
	i := rng.Intn(len(free))
	j := rng.Intn(len(free) - 1)
	if j >= i {
		j++
	}
	plan := s.Workers[k].Plan
	plan[free[i]], plan[free[j]] = plan[free[j]], plan[free[i]]
	return true
}

// moveBetween pops a movable task from a random worker and inserts it at a
// random position of a different worker, after that worker's frozen tasks.
// It reports false when fewer than two workers exist or nothing can move.
func moveBetween(s *model.Solution, frozen taskSet, rng *rand.Rand) bool {
	if len(s.Workers) < 2 {
		return false
	}
	var sources []int
	frees := make([][]int, len(s.Workers))
	for k, w := range s.Workers {
		frees[k] = freePositions(w.Plan, frozen)
		if len(frees[k]) > 0 {
			sources = append(sources, k)
		}
	}
	if len(sources) == 0 {
		return false
	}
	src := sources[rng.Intn(len(sources))]
	dst := rng.Intn(len(s.Workers) - 1)
	if dst >= src {
		dst++
	}
	free := frees[src]
	id := s.Workers[src].RemoveAt(free[rng.Intn(len(free))])
	floor := insertFloor(s.Workers[dst].Plan, frozen)
	pos := floor + rng.Intn(len(s.Workers[dst].Plan)-floor+1)
	s.Workers[dst].Insert(pos, id)
	return true
}

// swapNeighbor returns a clone of s with two tasks of one worker swapped.
func swapNeighbor(s *model.Solution, rng *rand.Rand) *model.Solution {
	n := s.Clone()
	swapWithin(n, nil, rng)
	return n
}

// moveNeighbor returns a clone of s with one task moved to another worker.
func moveNeighbor(s *model.Solution, rng *rand.Rand) *model.Solution {
	n := s.Clone()
	moveBetween(n, nil, rng)
	return n
}

// mutate applies, with probability rate, either a swap or a move with equal
// odds. s is modified in place.
func mutate(s *model.Solution, rate float64, frozen taskSet, rng *rand.Rand) {
	if rng.Float64() >= rate {
		return
	}
	if rng.Intn(2) == 0 {
		swapWithin(s, frozen, rng)
		return
	}
	moveBetween(s, frozen, rng)
}

// crossover returns two children of a and b. With probability rate it
// exchanges equal-length segments of movable positions between one random
// worker of each child, then repairs both children so that each still holds
// every task exactly once. Otherwise the children are plain clones.
func crossover(a, b *model.Solution, rate float64, frozen taskSet, rng *rand.Rand) (*model.Solution, *model.Solution) {
	c1, c2 := a.Clone(), b.Clone()
	if rng.Float64() >= rate {
		return c1, c2
	}
	w1 := &c1.Workers[rng.Intn(len(c1.Workers))]
	w2 := &c2.Workers[rng.Intn(len(c2.Workers))]
	free1 := freePositions(w1.Plan, frozen)
	free2 := freePositions(w2.Plan, frozen)
	if len(free1) == 0 || len(free2) == 0 {
		return c1, c2
	}
	length := 1 + rng.Intn(min(len(free1), len(free2)))
	start1 := rng.Intn(len(free1) - length + 1)
	start2 := rng.Intn(len(free2) - length + 1)
	pos1 := free1[start1 : start1+length]
	pos2 := free2[start2 : start2+length]

	seg1 := make([]int, length)
	seg2 := make([]int, length)
	for i := range pos1 {
		seg1[i] = w1.Plan[pos1[i]]
		seg2[i] = w2.Plan[pos2[i]]
	}

	out, in := displaced(seg1, seg2)
	// c1 gains the ids of in at pos1, so their old copies become the ids of
	// out that c1 loses there. c2 is the mirror image.
	relabel(c1, in, out)
	relabel(c2, out, in)
	for i := range pos1 {
		w1.Plan[pos1[i]] = seg2[i]
		w2.Plan[pos2[i]] = seg1[i]
	}
	return c1, c2
}

// displaced pairs the ids only seg1 holds with the ids only seg2 holds.
// Both results have the same length since the segments do.
func displaced(seg1, seg2 []int) (out, in []int) {
	inSeg1 := make(map[int]struct{}, len(seg1))
	for _, id := range seg1 {
		inSeg1[id] = struct{}{}
	}
	inSeg2 := make(map[int]struct{}, len(seg2))
	for _, id := range seg2 {
		inSeg2[id] = struct{}{}
	}
	for _, id := range seg1 {
		if _, ok := inSeg2[id]; !ok {
			out = append(out, id)
		}
	}
	for _, id := range seg2 {
		if _, ok := inSeg1[id]; !ok {
			in = append(in, id)
		}
	}
	return out, in
}

// relabel replaces every occurrence of from[j] with to[j]. The two lists are
// disjoint, so a replaced id is never replaced again.
func relabel(s *model.Solution, from, to []int) {
	if len(from) == 0 {
		return
	}
	mapping := make(map[int]int, len(from))
	for j, id := range from {
		mapping[id] = to[j]
	}
	for k := range s.Workers {
		plan := s.Workers[k].Plan
		for i, id := range plan {
			if r, ok := mapping[id]; ok {
				plan[i] = r
			}
		}
	}
}

// tournament draws size random candidates and returns the index of the
// fittest one.
func tournament(scores []float64, size int, rng *rand.Rand) int {
	selected := rng.Intn(len(scores))
	for i := 1; i < size; i++ {
		c := rng.Intn(len(scores))
		if scores[c] > scores[selected] {
			selected = c
		}
	}
	return selected
}
