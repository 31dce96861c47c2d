package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/relplan/core/model"
	"github.com/kilianp07/relplan/core/search"
)

// Config points at the input files.
type Config struct {
	// Format is csv or yaml. Empty infers yaml from the File extension.
	Format   string `json:"format" yaml:"format" validate:"omitempty,oneof=csv yaml"`
	File     string `json:"file" yaml:"file"`
	Tasks    string `json:"tasks" yaml:"tasks"`
	Releases string `json:"releases" yaml:"releases"`
	Workers  string `json:"workers" yaml:"workers"`
}

// SetDefaults infers the format.
func (c *Config) SetDefaults() {
	if c.Format != "" {
		return
	}
	switch strings.ToLower(filepath.Ext(c.File)) {
	case ".yaml", ".yml":
		c.Format = "yaml"
	default:
		c.Format = "csv"
	}
}

// Validate checks that the files required by the format are named.
func (c Config) Validate() error {
	switch c.Format {
	case "yaml":
		if c.File == "" {
			return fmt.Errorf("dataset: yaml format needs file")
		}
	case "csv":
		if c.Tasks == "" || c.Releases == "" || c.Workers == "" {
			return fmt.Errorf("dataset: csv format needs tasks, releases and workers files")
		}
	default:
		return fmt.Errorf("dataset: unsupported format %q", c.Format)
	}
	return nil
}

// Load reads the files described by cfg into a validated search.Problem.
func Load(cfg Config) (search.Problem, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return search.Problem{}, err
	}
	var (
		tasks    []model.Task
		releases model.Calendar
		workers  []model.WorkerSpec
	)
	if cfg.Format == "yaml" {
		var doc Document
		err := withFile(cfg.File, func(r io.Reader) (err error) {
			doc, err = ReadYAML(r)
			return err
		})
		if err != nil {
			return search.Problem{}, err
		}
		tasks, releases, workers = doc.Tasks, doc.Releases, doc.Workers
	} else {
		err := withFile(cfg.Tasks, func(r io.Reader) (err error) {
			tasks, err = ReadTasksCSV(r)
			return err
		})
		if err == nil {
			err = withFile(cfg.Releases, func(r io.Reader) (err error) {
				releases, err = ReadReleasesCSV(r)
				return err
			})
		}
		if err == nil {
			err = withFile(cfg.Workers, func(r io.Reader) (err error) {
				workers, err = ReadWorkersCSV(r)
				return err
			})
		}
		if err != nil {
			return search.Problem{}, err
		}
	}
	return Assemble(tasks, releases, workers)
}

// Assemble validates the three parts and builds the problem.
func Assemble(tasks []model.Task, releases model.Calendar, workers []model.WorkerSpec) (search.Problem, error) {
	g, err := model.NewGraph(tasks)
	if err != nil {
		return search.Problem{}, err
	}
	p := search.Problem{Graph: g, Releases: releases, Workers: workers}
	if err := p.Validate(); err != nil {
		return search.Problem{}, err
	}
	return p, nil
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
