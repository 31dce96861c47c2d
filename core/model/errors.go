package model

import "errors"

var (
	// ErrInvalidConfiguration is returned for unknown algorithm or
	// initialization strategy names and out-of-range search options.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInvariantViolation reports a solution in which some task is missing
	// or assigned more than once.
	ErrInvariantViolation = errors.New("permutation invariant violated")

	// ErrInvalidInput is returned when loaded tasks, releases or workers are
	// inconsistent.
	ErrInvalidInput = errors.New("invalid input")
)
