package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Config defines the connection parameters of the plan publisher.
type Config struct {
	Broker   string `json:"broker" yaml:"broker"`
	ClientID string `json:"client_id" yaml:"client_id"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	// TopicPrefix is prepended to the worker name to build the plan topic.
	TopicPrefix string `json:"topic_prefix" yaml:"topic_prefix"`
	QoS         byte   `json:"qos" yaml:"qos" validate:"lte=2"`
	Retain      bool   `json:"retain" yaml:"retain"`
	UseTLS      bool   `json:"use_tls" yaml:"use_tls"`
	ClientCert  string `json:"client_cert" yaml:"client_cert"`
	ClientKey   string `json:"client_key" yaml:"client_key"`
	CABundle    string `json:"ca_bundle" yaml:"ca_bundle"`
	LWTTopic    string `json:"lwt_topic" yaml:"lwt_topic"`
	LWTPayload  string `json:"lwt_payload" yaml:"lwt_payload"`
	MaxRetries  int    `json:"max_retries" yaml:"max_retries" validate:"gte=0"`
	BackoffMS   int    `json:"backoff_ms" yaml:"backoff_ms" validate:"gte=0"`

	TLSConfig *tls.Config `json:"-" yaml:"-"`
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// SetDefaults fills the client id, topic prefix and retry settings.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "relplan"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "relplan/plans"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 100
	}
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
