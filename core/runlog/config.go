package runlog

import (
	"fmt"
)

// Config selects where run history is kept.
type Config struct {
	// Backend is one of jsonl, sqlite or memory.
	Backend string `json:"backend" yaml:"backend" validate:"omitempty,oneof=jsonl sqlite memory"`
	Path    string `json:"path" yaml:"path"`
}

// SetDefaults keeps history in memory unless configured otherwise.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
}

// Open returns the store described by cfg.
func Open(cfg Config) (Store, error) {
	cfg.SetDefaults()
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "jsonl", "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("runlog: %s backend needs a path", cfg.Backend)
		}
		if cfg.Backend == "jsonl" {
			return NewJSONLStore(cfg.Path)
		}
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("runlog: unknown backend %q", cfg.Backend)
	}
}
