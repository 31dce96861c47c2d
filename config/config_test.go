package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/relplan/core/model"
	"github.com/kilianp07/relplan/core/search"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `search:
  algorithm: incremental_genetic
  seed: 42
  population_size: 80
  penalties:
    overflow: 5000
    dependency: 250
    imbalance_weight: 0.5
compare:
  - type: greedy
  - type: genetic
    conf:
      generations: 10
data:
  file: "data/problem.yaml"
runlog:
  backend: sqlite
  path: runs.db
metrics:
  sinks:
    - type: "nop"
  prometheus_addr: ":9091"
mqtt:
  broker: "tcp://localhost:1883"
  qos: 1
logging:
  level: debug
api:
  token: secret
export:
  path: out/plan.csv
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"algorithm", cfg.Search.Algorithm, search.AlgIncremental},
		{"seed", cfg.Search.Seed, int64(42)},
		{"population_size", cfg.Search.PopulationSize, 80},
		{"generations default", cfg.Search.Generations, 100},
		{"init default", cfg.Search.Init, "random"},
		{"overflow", cfg.Search.Penalties.Overflow, 5000.0},
		{"imbalance_weight", cfg.Search.Penalties.Imbalance, 0.5},
		{"compare", len(cfg.Compare), 2},
		{"data.format", cfg.Data.Format, "yaml"},
		{"runlog.backend", cfg.RunLog.Backend, "sqlite"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"prometheus_addr", cfg.Metrics.PrometheusAddr, ":9091"},
		{"mqtt.topic_prefix", cfg.MQTT.TopicPrefix, "relplan/plans"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"api.addr", cfg.API.Addr, ":8080"},
		{"api.token", cfg.API.Token, "secret"},
		{"export.format", cfg.Export.Format, "csv"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: got %v want %v", c.name, c.got, c.want)
		}
	}

	algs, err := cfg.Algorithms()
	if err != nil {
		t.Fatalf("algorithms: %v", err)
	}
	if len(algs) != 2 || algs[1].Config().Generations != 10 || algs[1].Config().PopulationSize != 100 {
		t.Fatalf("unexpected compare algorithms")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "config.json", `{"search": {"algorithm": "genetic", "generations": 5}}`)
	t.Setenv("RELPLAN_SEARCH__GENERATIONS", "12")
	t.Setenv("RELPLAN_SEARCH__MUTATION_RATE", "0.25")
	t.Setenv("RELPLAN_API__ADDR", ":9000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Search.Generations != 12 || cfg.Search.MutationRate != 0.25 {
		t.Fatalf("env not applied: %+v", cfg.Search)
	}
	if cfg.API.Addr != ":9000" {
		t.Fatalf("api addr = %q", cfg.API.Addr)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Search.Algorithm != search.AlgGenetic || cfg.Search.PopulationSize != 100 {
		t.Fatalf("unexpected defaults %+v", cfg.Search)
	}
	if cfg.RunLog.Backend != "memory" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected section defaults")
	}
	algs, err := cfg.Algorithms()
	if err != nil {
		t.Fatalf("algorithms: %v", err)
	}
	if len(algs) != len(search.Names()) {
		t.Fatalf("expected every algorithm, got %d", len(algs))
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"algorithm":  `search: {algorithm: annealing}`,
		"empty init": `search: {algorithm: genetic, init: empty}`,
		"log level":  `logging: {level: verbose}`,
		"runlog":     `runlog: {backend: postgres}`,
		"compare":    `compare: [{type: tabu}]`,
		"rate":       `search: {algorithm: genetic, crossover_rate: 1.5}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "config.yaml", data))
			if !errors.Is(err, model.ErrInvalidConfiguration) {
				t.Fatalf("expected invalid configuration, got %v", err)
			}
		})
	}
	if _, err := Load(writeConfig(t, "config.toml", "")); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
