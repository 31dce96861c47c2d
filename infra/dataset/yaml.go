package dataset

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/relplan/core/model"
)

// Document is the YAML layout of a planning problem. Task ids must be dense
// and listed in order.
//
//	tasks:
//	  - {id: 0, name: API-1, cost: 120, priority: 1}
//	  - {id: 1, name: API-2, cost: 60, priority: 3, dependencies: [0]}
//	releases:
//	  - {start: 2025-01-06, end: 2025-01-17, working_days: 10}
//	workers:
//	  - {name: alice, efficiency: 1.2}
type Document struct {
	Tasks    []model.Task       `json:"tasks" yaml:"tasks"`
	Releases model.Calendar     `json:"releases" yaml:"releases"`
	Workers  []model.WorkerSpec `json:"workers" yaml:"workers"`
}

// ReadYAML decodes a Document. Workers without efficiency default to 1.
func ReadYAML(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return Document{}, err
	}
	for i := range doc.Workers {
		if doc.Workers[i].Efficiency == 0 {
			doc.Workers[i].Efficiency = 1
		}
	}
	return doc, nil
}
