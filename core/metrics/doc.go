// Package metrics defines sinks recording search runs for observability.
// Sinks such as the Prometheus and InfluxDB adapters in infra/metrics register
// themselves by type name; NewMetricsSink builds the configured sinks and
// wraps several of them in a MultiSink.
package metrics
