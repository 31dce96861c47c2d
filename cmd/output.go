package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/kilianp07/relplan/app"
	"github.com/kilianp07/relplan/core/runlog"
	"github.com/kilianp07/relplan/core/search"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderOutcome(w io.Writer, out app.Outcome, p search.Problem) {
	res, m, b := out.Result, out.Metrics, out.Result.Breakdown
	fmt.Fprintf(w, "run %s  algorithm %s  seed %d  %d iterations  %d evaluations  %s\n",
		res.RunID, res.Algorithm, res.Seed, res.Iterations, res.Evaluations, res.Duration.Round(time.Millisecond))

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Fitness", "Credit", "Overflowing", "Dependency violations", "Imbalance", "Completed", "Dropped"})
	tw.AppendRow(table.Row{
		fmt.Sprintf("%.2f", res.Fitness), fmt.Sprintf("%.1f", b.Credit), b.OverflowingWorkers,
		b.DependencyViolations, fmt.Sprintf("%.1f", b.Imbalance),
		fmt.Sprintf("%d/%d", m.TasksCompleted, p.Graph.Len()), m.TasksDropped,
	})
	tw.Render()

	tw = table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Worker", "Tasks", "Hours", "Plan"})
	for i, plan := range out.Plans {
		ids := make([]string, len(plan.Tasks))
		for j, a := range plan.Tasks {
			ids[j] = a.Name
			if ids[j] == "" {
				ids[j] = strconv.Itoa(a.Task)
			}
			if a.Release < 0 {
				ids[j] += "*"
			}
		}
		hours := 0.0
		if i < len(m.Workers) {
			hours = m.Workers[i].Hours
		}
		tw.AppendRow(table.Row{plan.Worker, len(plan.Tasks), fmt.Sprintf("%.1f", hours), strings.Join(ids, " ")})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 80}})
	tw.AppendFooter(table.Row{"", "", "", "* does not fit the calendar"})
	tw.Render()
}

func renderComparison(w io.Writer, outs []app.Outcome) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Algorithm", "Fitness", "Priority credit", "High priority %", "Completed", "Max hours", "Std dev (h)", "Est. days", "Duration", "Error"})
	best := app.Best(outs)
	for i, o := range outs {
		m := o.Metrics
		row := table.Row{
			o.Result.Algorithm,
			fmt.Sprintf("%.2f", o.Result.Fitness),
			fmt.Sprintf("%.0f", m.PriorityCredit),
			fmt.Sprintf("%.1f", m.HighPriorityRatio),
			m.TasksCompleted,
			fmt.Sprintf("%.1f", m.MaxWorkerHours),
			fmt.Sprintf("%.1f", m.WorkloadStdDev),
			fmt.Sprintf("%.1f", m.EstimatedReleaseDays),
			o.Result.Duration.Round(time.Millisecond),
			o.Record.Error,
		}
		if i == best {
			row[0] = text.Bold.Sprint(row[0])
		}
		tw.AppendRow(row)
	}
	tw.Render()
}

func renderHistory(w io.Writer, recs []runlog.Record) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Time", "Algorithm", "Seed", "Fitness", "Tasks", "Duration (ms)", "Error"})
	for _, r := range recs {
		tw.AppendRow(table.Row{r.ID, r.Timestamp.Local().Format("2006-01-02 15:04:05"), r.Algorithm, r.Seed, fmt.Sprintf("%.2f", r.Fitness), r.Tasks, r.DurationMS, r.Error})
	}
	tw.Render()
}
