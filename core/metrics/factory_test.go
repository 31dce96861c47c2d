package metrics_test

import (
	"encoding/json"
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/relplan/core/factory"
	metrics "github.com/kilianp07/relplan/core/metrics"
	_ "github.com/kilianp07/relplan/infra/metrics"
)

type countingSink struct {
	runs     int
	progress int
}

func (c *countingSink) RecordRun(metrics.RunSummary) error { c.runs++; return nil }
func (c *countingSink) RecordProgress(metrics.ProgressPoint) error {
	c.progress++
	return nil
}

type runOnlySink struct{ runs int }

func (r *runOnlySink) RecordRun(metrics.RunSummary) error { r.runs++; return nil }

/*
TestMetricsFactory_Builtins verifies registration via infra/metrics/factory.go.

	Cases:
	- instantiate builtin nop sink
	- unknown type returns error
*/
func TestMetricsFactory_Builtins(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	if err != nil {
		t.Fatalf("create nop: %v", err)
	}
	if s == nil {
		t.Fatal("expected sink instance")
	}
	if _, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "missing"}}); !errors.Is(err, factory.ErrUnknownType) {
		t.Fatalf("expected unknown type error, got %v", err)
	}
}

/*
TestNewMetricsSink_Multi validates NewMetricsSink behavior with zero, one, and multiple configs.
Cases:
  - no config -> NopSink
  - two configs -> MultiSink with two sub-sinks
*/
func TestNewMetricsSink_Multi(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	if err != nil {
		t.Fatalf("create nop default: %v", err)
	}
	if _, ok := s.(metrics.NopSink); !ok {
		t.Fatalf("expected NopSink, got %T", s)
	}

	cfgs := []factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}
	s, err = metrics.NewMetricsSink(cfgs)
	if err != nil {
		t.Fatalf("create multi: %v", err)
	}
	m, ok := s.(*metrics.MultiSink)
	if !ok {
		t.Fatalf("expected MultiSink, got %T", s)
	}
	if len(m.Sinks) != 2 {
		t.Fatalf("expected 2 sinks, got %d", len(m.Sinks))
	}
}

// Progress only reaches sinks implementing ProgressRecorder.
func TestMultiSink_Forwarding(t *testing.T) {
	full := &countingSink{}
	runOnly := &runOnlySink{}
	m := metrics.NewMultiSink(full, runOnly)

	if err := m.RecordRun(metrics.RunSummary{Algorithm: "greedy"}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if err := m.RecordProgress(metrics.ProgressPoint{Step: 1}); err != nil {
		t.Fatalf("record progress: %v", err)
	}
	if full.runs != 1 || runOnly.runs != 1 {
		t.Fatalf("expected both sinks to record the run, got %d and %d", full.runs, runOnly.runs)
	}
	if full.progress != 1 {
		t.Fatalf("expected 1 progress point, got %d", full.progress)
	}
}

// Test decoding from YAML and JSON configuration.
func TestMetricsConfigDecode(t *testing.T) {
	data := `sinks:
  - type: nop
  - type: nop
prometheus_addr: ":9091"
`
	var cfg metrics.Config
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		t.Fatalf("yaml unmarshal: %v", err)
	}
	if cfg.PrometheusAddr != ":9091" || len(cfg.Sinks) != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	var bad metrics.Config
	if err := json.Unmarshal([]byte(`{"sinks":[{"type":"missing"}]}`), &bad); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if _, err := metrics.NewMetricsSink(bad.Sinks); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}
