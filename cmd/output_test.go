package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kilianp07/relplan/app"
	"github.com/kilianp07/relplan/core/model"
	"github.com/kilianp07/relplan/core/publish"
	"github.com/kilianp07/relplan/core/report"
	"github.com/kilianp07/relplan/core/runlog"
	"github.com/kilianp07/relplan/core/search"
)

func TestRenderComparison(t *testing.T) {
	outs := []app.Outcome{
		{Result: search.Result{Algorithm: "greedy", Fitness: 10, Best: &model.Solution{}}},
		{Result: search.Result{Algorithm: "genetic", Fitness: 25, Best: &model.Solution{}}, Metrics: report.Metrics{TasksCompleted: 7}},
		{Result: search.Result{Algorithm: "hill_climbing"}, Record: runlog.Record{Error: "boom"}},
	}
	var buf bytes.Buffer
	renderComparison(&buf, outs)
	out := buf.String()
	for _, want := range []string{"greedy", "genetic", "25.00", "boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestRenderOutcomeMarksUnscheduledTasks(t *testing.T) {
	g, err := model.NewGraph([]model.Task{{ID: 0, Name: "API-1", Cost: 60, Priority: 1}, {ID: 1, Cost: 60, Priority: 2}})
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	out := app.Outcome{
		Result: search.Result{RunID: "r1", Algorithm: "greedy"},
		Plans: []publish.WorkerPlan{{Worker: "ann", Tasks: []publish.Assignment{
			{Task: 0, Name: "API-1", Release: 0},
			{Task: 1, Release: -1},
		}}},
	}
	var buf bytes.Buffer
	renderOutcome(&buf, out, search.Problem{Graph: g})
	if !strings.Contains(buf.String(), "API-1 1*") {
		t.Fatalf("unexpected plan rendering:\n%s", buf.String())
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	renderHistory(&buf, []runlog.Record{{ID: "abc", Algorithm: "genetic", Fitness: 12.5}})
	if !strings.Contains(buf.String(), "abc") || !strings.Contains(buf.String(), "12.50") {
		t.Fatalf("unexpected history:\n%s", buf.String())
	}
}
