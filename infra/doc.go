// Package infra contains technical adapters: dataset loaders, metric sinks,
// the MQTT plan publisher and the Sentry monitor. These packages depend only
// on the interfaces defined in the core packages.
package infra
