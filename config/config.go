// Package config loads the relplan configuration from a YAML or JSON file
// with RELPLAN_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/relplan/core/factory"
	"github.com/kilianp07/relplan/core/metrics"
	"github.com/kilianp07/relplan/core/model"
	"github.com/kilianp07/relplan/core/runlog"
	"github.com/kilianp07/relplan/core/search"
	"github.com/kilianp07/relplan/infra/dataset"
	"github.com/kilianp07/relplan/infra/logger"
	"github.com/kilianp07/relplan/infra/monitoring"
	"github.com/kilianp07/relplan/infra/mqtt"
	"github.com/kilianp07/relplan/pkg/export"
)

// EnvPrefix prefixes environment overrides. Nested keys are separated by a
// double underscore: RELPLAN_SEARCH__POPULATION_SIZE=300.
const EnvPrefix = "RELPLAN_"

type Config struct {
	Search search.Config `json:"search"`
	// Compare lists the algorithms run by the compare command.
	Compare []factory.ModuleConfig  `json:"compare"`
	Data    dataset.Config          `json:"data"`
	RunLog  runlog.Config           `json:"runlog"`
	Metrics metrics.Config          `json:"metrics"`
	MQTT    mqtt.Config             `json:"mqtt"`
	Sentry  monitoring.SentryConfig `json:"sentry"`
	Logging logger.Config           `json:"logging"`
	API     APIConfig               `json:"api"`
	Export  export.Config           `json:"export"`
}

// APIConfig configures the HTTP API started by the serve command.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token enables bearer authentication when non-empty.
	Token string `json:"token"`
}

// SetDefaults listens on :8080.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads path, applies environment overrides, fills defaults and
// validates the result. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section. The search algorithm defaults to genetic.
func (c *Config) SetDefaults() {
	if c.Search.Algorithm == "" {
		c.Search.Algorithm = search.AlgGenetic
	}
	c.Search.SetDefaults()
	c.Data.SetDefaults()
	c.RunLog.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
	c.API.SetDefaults()
	c.Export.SetDefaults()
}

// Validate checks struct tags of every section and the search options.
// Dataset paths are checked when the data is loaded.
func (c *Config) Validate() error {
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidConfiguration, err)
	}
	for _, m := range c.Compare {
		if _, err := search.FromModule(m); err != nil {
			return fmt.Errorf("compare: %w", err)
		}
	}
	return nil
}

// Algorithms builds the strategies listed under compare, or every available
// strategy with its defaults when the list is empty.
func (c *Config) Algorithms() ([]search.Algorithm, error) {
	mods := c.Compare
	if len(mods) == 0 {
		for _, name := range search.Names() {
			mods = append(mods, factory.ModuleConfig{Type: name, Conf: map[string]any{"seed": c.Search.Seed}})
		}
	}
	algs := make([]search.Algorithm, 0, len(mods))
	for _, m := range mods {
		alg, err := search.FromModule(m)
		if err != nil {
			return nil, err
		}
		algs = append(algs, alg)
	}
	return algs, nil
}
