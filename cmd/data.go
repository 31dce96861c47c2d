package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/relplan/core/search"
	"github.com/kilianp07/relplan/infra/dataset"
)

// dataFlags override the data section of the configuration.
type dataFlags struct {
	file, tasks, releases, workers string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "YAML problem file")
	cmd.Flags().StringVar(&f.tasks, "tasks", "", "tasks CSV (Jira export)")
	cmd.Flags().StringVar(&f.releases, "releases", "", "releases CSV")
	cmd.Flags().StringVar(&f.workers, "workers", "", "workers CSV")
}

func (f *dataFlags) load() (search.Problem, error) {
	d := cfg.Data
	if f.file != "" {
		d = dataset.Config{File: f.file}
	}
	if f.tasks != "" || f.releases != "" || f.workers != "" {
		d = dataset.Config{Format: "csv", Tasks: f.tasks, Releases: f.releases, Workers: f.workers}
	}
	return dataset.Load(d)
}
