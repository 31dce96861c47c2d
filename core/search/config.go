package search

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/relplan/core/construct"
	"github.com/kilianp07/relplan/core/fitness"
	"github.com/kilianp07/relplan/core/model"
)

// Algorithm names.
const (
	AlgGreedy      = "greedy"
	AlgHillClimb   = "hill_climbing"
	AlgGenetic     = "genetic"
	AlgIncremental = "incremental_genetic"
)

// Config holds the options recognized by every strategy. Zero values select
// the per-algorithm defaults applied by SetDefaults.
type Config struct {
	Algorithm string `json:"algorithm" yaml:"algorithm" validate:"required,oneof=greedy hill_climbing genetic incremental_genetic"`
	Init      string `json:"init" yaml:"init" validate:"omitempty,oneof=empty random priority_cost priority_density"`
	// Seed initializes the random generator. Zero picks a time based seed,
	// reported back in Result.Seed.
	Seed int64 `json:"seed" yaml:"seed"`

	PopulationSize int     `json:"population_size" yaml:"population_size" validate:"gte=0"`
	Generations    int     `json:"generations" yaml:"generations" validate:"gte=0"`
	CrossoverRate  float64 `json:"crossover_rate" yaml:"crossover_rate" validate:"gte=0,lte=1"`
	MutationRate   float64 `json:"mutation_rate" yaml:"mutation_rate" validate:"gte=0,lte=1"`
	TournamentSize int     `json:"tournament_size" yaml:"tournament_size" validate:"gte=0"`

	MaxIterations int `json:"max_iterations" yaml:"max_iterations" validate:"gte=0"`
	SwapTries     int `json:"swap_tries" yaml:"swap_tries" validate:"gte=0"`
	MoveTries     int `json:"move_tries" yaml:"move_tries" validate:"gte=0"`

	// Parallelism bounds the goroutines scoring a population or a batch of
	// neighbors. One scores sequentially.
	Parallelism int `json:"parallelism" yaml:"parallelism" validate:"gte=0"`
	// SplitDecay weighs release i by SplitDecay^i when incremental search
	// distributes tasks over stages. One gives a uniform split.
	SplitDecay float64 `json:"split_decay" yaml:"split_decay" validate:"gte=0"`

	Penalties fitness.Weights `json:"penalties" yaml:"penalties"`
}

// SetDefaults fills zero fields with the defaults of the selected algorithm.
func (c *Config) SetDefaults() {
	switch c.Algorithm {
	case AlgHillClimb:
		setString(&c.Init, string(construct.PriorityCost))
		setInt(&c.MaxIterations, 200)
		setInt(&c.SwapTries, 50)
		setInt(&c.MoveTries, 50)
	case AlgGenetic:
		setString(&c.Init, string(construct.PriorityCost))
		setInt(&c.PopulationSize, 100)
		setInt(&c.Generations, 60)
		setFloat(&c.CrossoverRate, 0.7)
		setFloat(&c.MutationRate, 0.4)
		setInt(&c.TournamentSize, 3)
	case AlgIncremental:
		setString(&c.Init, string(construct.Random))
		setInt(&c.PopulationSize, 250)
		setInt(&c.Generations, 100)
		setFloat(&c.CrossoverRate, 0.6)
		setFloat(&c.MutationRate, 0.5)
		setInt(&c.TournamentSize, 15)
		setFloat(&c.SplitDecay, 1)
	}
	setInt(&c.Parallelism, 1)
	d := fitness.DefaultWeights()
	setFloat(&c.Penalties.Overflow, d.Overflow)
	setFloat(&c.Penalties.Dependency, d.Dependency)
	setFloat(&c.Penalties.Imbalance, d.Imbalance)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and the combinations each algorithm needs.
// Every failure wraps model.ErrInvalidConfiguration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidConfiguration, err)
	}
	switch c.Algorithm {
	case AlgHillClimb, AlgGenetic, AlgIncremental:
		if c.Init == string(construct.Empty) {
			return fmt.Errorf("%w: %s cannot start from an empty solution", model.ErrInvalidConfiguration, c.Algorithm)
		}
	}
	switch c.Algorithm {
	case AlgHillClimb:
		if c.SwapTries+c.MoveTries == 0 {
			return fmt.Errorf("%w: hill climbing needs swap or move tries", model.ErrInvalidConfiguration)
		}
	case AlgGenetic, AlgIncremental:
		if c.PopulationSize < 2 {
			return fmt.Errorf("%w: population size %d below 2", model.ErrInvalidConfiguration, c.PopulationSize)
		}
		if c.TournamentSize < 1 {
			return fmt.Errorf("%w: tournament size %d below 1", model.ErrInvalidConfiguration, c.TournamentSize)
		}
		if c.Algorithm == AlgIncremental && c.SplitDecay <= 0 {
			return fmt.Errorf("%w: split decay must be positive", model.ErrInvalidConfiguration)
		}
	}
	return nil
}

func setString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if *dst == 0 {
		*dst = v
	}
}
