package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/relplan/core/model"
)

// Jira export column names read by ReadTasksCSV.
const (
	colIssueKey    = "Issue key"
	colIssueID     = "Issue id"
	colPriority    = "Priority"
	colTimeSpent   = "Time Spent"
	colParentID    = "Parent id"
	colChildIssue  = "Inward issue link (Child-Issue)"
	defaultJiraPri = 4
)

var jiraPriorities = map[string]int{
	"Blocker":  1,
	"Critical": 2,
	"Major":    3,
	"High":     4,
	"Medium":   5,
	"Minor":    6,
	"Low":      7,
	"Trivial":  8,
}

// row is one CSV record keyed by header name.
type row map[string]string

func (r row) get(col string) string { return strings.TrimSpace(r[col]) }

func readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	var rows []row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rw := make(row, len(header))
		for i, h := range header {
			if i < len(rec) {
				rw[h] = rec[i]
			}
		}
		rows = append(rows, rw)
	}
}

// ReadTasksCSV parses a Jira issue export. Time Spent is given in seconds and
// converted to whole effort-minutes; issues with less than one minute logged
// carry no effort and are skipped. Dependencies come from the Parent id and
// the child-issue link columns and are resolved against the kept issues.
func ReadTasksCSV(r io.Reader) ([]model.Task, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	type pending struct {
		task      model.Task
		parentID  string
		parentKey string
	}
	var kept []pending
	byKey := map[string]int{}
	byID := map[string]int{}
	for i, rw := range rows {
		spent := rw.get(colTimeSpent)
		if spent == "" {
			continue
		}
		seconds, err := strconv.ParseFloat(spent, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: time spent %q", model.ErrInvalidInput, i+2, spent)
		}
		minutes := float64(int64(seconds) / 60)
		if minutes <= 0 {
			continue
		}
		priority, ok := jiraPriorities[rw.get(colPriority)]
		if !ok {
			priority = defaultJiraPri
		}
		idx := len(kept)
		key := rw.get(colIssueKey)
		kept = append(kept, pending{
			task:      model.Task{ID: idx, Name: key, Cost: minutes, Priority: priority},
			parentID:  rw.get(colParentID),
			parentKey: rw.get(colChildIssue),
		})
		if key != "" {
			byKey[key] = idx
		}
		if id := rw.get(colIssueID); id != "" {
			byID[id] = idx
		}
	}
	tasks := make([]model.Task, len(kept))
	for i, p := range kept {
		t := p.task
		if d, ok := byID[p.parentID]; ok && p.parentID != "" && d != i {
			t.Dependencies = append(t.Dependencies, d)
		}
		if d, ok := byKey[p.parentKey]; ok && p.parentKey != "" && d != i && !slices.Contains(t.Dependencies, d) {
			t.Dependencies = append(t.Dependencies, d)
		}
		tasks[i] = t
	}
	return tasks, nil
}

// ReadReleasesCSV parses start_date, end_date and working_days columns. Rows
// with a missing value or zero working days are skipped.
func ReadReleasesCSV(r io.Reader) (model.Calendar, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	var cal model.Calendar
	for i, rw := range rows {
		startS, endS, daysS := rw.get("start_date"), rw.get("end_date"), rw.get("working_days")
		if startS == "" || endS == "" || daysS == "" {
			continue
		}
		start, err := parseDate(startS)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: start_date: %v", model.ErrInvalidInput, i+2, err)
		}
		end, err := parseDate(endS)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: end_date: %v", model.ErrInvalidInput, i+2, err)
		}
		days, err := strconv.Atoi(daysS)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: working_days %q", model.ErrInvalidInput, i+2, daysS)
		}
		if days == 0 {
			continue
		}
		cal = append(cal, model.Release{Start: start, End: end, WorkingDays: days})
	}
	return cal, cal.Validate()
}

// ReadWorkersCSV parses name and efficiency columns. Rows without a name are
// skipped and a missing efficiency means 1.
func ReadWorkersCSV(r io.Reader) ([]model.WorkerSpec, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	var specs []model.WorkerSpec
	for i, rw := range rows {
		name := rw.get("name")
		if name == "" {
			continue
		}
		eff := 1.0
		if s := rw.get("efficiency"); s != "" {
			if eff, err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("%w: row %d: efficiency %q", model.ErrInvalidInput, i+2, s)
			}
		}
		spec := model.WorkerSpec{Name: name, Efficiency: eff}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
