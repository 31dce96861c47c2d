package search

import (
	"errors"
	"fmt"

	"github.com/kilianp07/relplan/core/factory"
	"github.com/kilianp07/relplan/core/model"
)

var constructors = map[string]func(Config) Algorithm{
	AlgGreedy:      func(c Config) Algorithm { return NewGreedy(c) },
	AlgHillClimb:   func(c Config) Algorithm { return NewHillClimbing(c) },
	AlgGenetic:     func(c Config) Algorithm { return NewGenetic(c) },
	AlgIncremental: func(c Config) Algorithm { return NewIncremental(c) },
}

var registry = factory.NewRegistry[Algorithm]()

func init() {
	for name := range constructors {
		registry.MustRegister(name, moduleFactory(name))
	}
}

func moduleFactory(name string) factory.Factory[Algorithm] {
	return func(conf map[string]any) (Algorithm, error) {
		var cfg Config
		if err := factory.Decode(conf, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", model.ErrInvalidConfiguration, name, err)
		}
		cfg.Algorithm = name
		return New(cfg)
	}
}

// New applies the defaults of cfg.Algorithm, validates cfg and returns the
// matching strategy.
func New(cfg Config) (Algorithm, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return constructors[cfg.Algorithm](cfg), nil
}

// FromModule creates a strategy from a {type, conf} module configuration, as
// used by the compare command.
func FromModule(mc factory.ModuleConfig) (Algorithm, error) {
	alg, err := registry.Create(mc)
	if errors.Is(err, factory.ErrUnknownType) {
		return nil, fmt.Errorf("%w: unknown algorithm %q", model.ErrInvalidConfiguration, mc.Type)
	}
	return alg, err
}

// Names lists the available algorithms.
func Names() []string { return registry.Names() }
