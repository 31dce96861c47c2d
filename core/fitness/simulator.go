package fitness

import "github.com/kilianp07/relplan/core/model"

// budgetEpsilon absorbs float drift when a task exactly fills the budget.
const budgetEpsilon = 1e-9

// Trace is the release-by-release consumption of one worker's plan.
type Trace struct {
	// PriorityPerRelease holds the priority credit earned in each release.
	PriorityPerRelease []float64
	// TimeLeft is the unused budget remaining after the last release.
	TimeLeft float64
	// Overflowing is true when some active task never got a time slot.
	Overflowing bool
	// TaskRelease maps each completed task id to its release index.
	TaskRelease map[int]int
}

// Simulate walks the releases in order and consumes the worker's plan from
// the front. Unused capacity carries over to the next release. A task that
// does not fit blocks every later task of the plan until enough budget has
// accumulated. Tasks outside active are skipped without consuming budget.
func Simulate(w model.Worker, g *model.Graph, releases model.Calendar, active model.ActiveSet) Trace {
	tr := Trace{
		PriorityPerRelease: make([]float64, len(releases)),
		TaskRelease:        make(map[int]int),
	}
	var budget float64
	cursor := 0
	for i, r := range releases {
		budget += r.CapacityMinutes()
		for cursor < len(w.Plan) {
			id := w.Plan[cursor]
			if !active.Contains(id) {
				cursor++
				continue
			}
			t := g.Task(id)
			cost := w.EffectiveCost(t)
			if cost > budget+budgetEpsilon {
				break
			}
			budget -= cost
			tr.PriorityPerRelease[i] += g.Credit(t)
			tr.TaskRelease[id] = i
			cursor++
		}
	}
	for cursor < len(w.Plan) && !active.Contains(w.Plan[cursor]) {
		cursor++
	}
	tr.TimeLeft = budget
	tr.Overflowing = cursor < len(w.Plan)
	return tr
}
