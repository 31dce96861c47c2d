package model

import (
	"fmt"
	"time"
)

// ProductiveHoursPerDay is the number of effective working hours in one
// working day.
const ProductiveHoursPerDay = 6

// Release is a fixed-capacity scheduling window.
type Release struct {
	Start       time.Time `json:"start" yaml:"start"`
	End         time.Time `json:"end" yaml:"end"`
	WorkingDays int       `json:"working_days" yaml:"working_days"`
}

// CapacityMinutes returns the effort-minutes available in the release.
func (r Release) CapacityMinutes() float64 {
	return float64(r.WorkingDays * ProductiveHoursPerDay * 60)
}

// Calendar is the ordered sequence of releases consumed by a plan.
type Calendar []Release

// Validate checks that every release has a non-negative capacity.
func (c Calendar) Validate() error {
	for i, r := range c {
		if r.WorkingDays < 0 {
			return fmt.Errorf("%w: release %d has %d working days", ErrInvalidInput, i, r.WorkingDays)
		}
	}
	return nil
}

// TotalCapacity sums the capacity of all releases in effort-minutes.
func (c Calendar) TotalCapacity() float64 {
	var total float64
	for _, r := range c {
		total += r.CapacityMinutes()
	}
	return total
}
