// Package export writes a plan as a flat table of assignments.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/relplan/core/model"
	"github.com/kilianp07/relplan/core/publish"
)

// Entry is one row of an exported plan.
type Entry struct {
	Worker   string `json:"worker"`
	Position int    `json:"position"`
	Task     int    `json:"task"`
	Name     string `json:"name,omitempty"`
	Priority int    `json:"priority"`
	// Release is -1 when the task does not fit any release.
	Release int `json:"release"`
}

// Entries flattens worker plans into rows, keeping plan order.
func Entries(plans []publish.WorkerPlan) []Entry {
	var out []Entry
	for _, p := range plans {
		for i, a := range p.Tasks {
			out = append(out, Entry{
				Worker:   p.Worker,
				Position: i,
				Task:     a.Task,
				Name:     a.Name,
				Priority: a.Priority,
				Release:  a.Release,
			})
		}
	}
	return out
}

// WriteJSON writes the entries to w in JSON format.
func WriteJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// WriteCSV writes the entries to w in CSV format with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"worker", "position", "task", "name", "priority", "release"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.Worker,
			strconv.Itoa(e.Position),
			strconv.Itoa(e.Task),
			e.Name,
			strconv.Itoa(e.Priority),
			strconv.Itoa(e.Release),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Config selects where and how a plan is exported. An empty Path disables
// the export.
type Config struct {
	Path   string `json:"path" yaml:"path"`
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=json csv"`
}

// SetDefaults infers the format from the file extension, falling back to JSON.
func (c *Config) SetDefaults() {
	if c.Format != "" || c.Path == "" {
		return
	}
	if strings.EqualFold(filepath.Ext(c.Path), ".csv") {
		c.Format = "csv"
	} else {
		c.Format = "json"
	}
}

// WriteFile writes entries to cfg.Path.
func WriteFile(cfg Config, entries []Entry) (err error) {
	cfg.SetDefaults()
	var write func(io.Writer, []Entry) error
	switch cfg.Format {
	case "json":
		write = WriteJSON
	case "csv":
		write = WriteCSV
	default:
		return fmt.Errorf("%w: unknown export format %q", model.ErrInvalidConfiguration, cfg.Format)
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f, entries)
}
