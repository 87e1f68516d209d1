// Package config loads the signupd configuration.
//
// Configuration is read from an optional YAML file, then overridden by
// SIGNUPD_* environment variables, then filled with defaults and validated.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/nomis52/signupd/logging"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr      = ":8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultMetricsPrefix = "signupd"
	defaultJobName       = "signupd"
)

// Config represents the complete application configuration.
type Config struct {
	Listener   ListenerConfig   `yaml:"listener"`
	Seed       SeedConfig       `yaml:"seed"`
	Report     ReportConfig     `yaml:"report"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    logging.Config   `yaml:"logging"`
}

// ListenerConfig holds HTTP server listener settings.
type ListenerConfig struct {
	// The listen address, defaults to :8080
	Addr            string        `yaml:"addr" env:"SIGNUPD_LISTEN_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SIGNUPD_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SIGNUPD_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SIGNUPD_SHUTDOWN_TIMEOUT"`
	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string `yaml:"tls_cert" env:"SIGNUPD_TLS_CERT"`
	TLSKey  string `yaml:"tls_key" env:"SIGNUPD_TLS_KEY"`
}

// SeedConfig controls the activities the registry starts with.
type SeedConfig struct {
	// File is a YAML seed file. The built-in activities are used when empty.
	File string `yaml:"file" env:"SIGNUPD_SEED_FILE"`
}

// ReportConfig configures the periodic enrollment report.
type ReportConfig struct {
	// Schedule is a 5 field cron spec. Reporting is disabled when empty.
	Schedule string `yaml:"schedule" env:"SIGNUPD_REPORT_SCHEDULE"`
}

// MonitoringConfig holds metrics settings.
type MonitoringConfig struct {
	// RemoteWriteURL switches metrics to push mode when set.
	RemoteWriteURL string `yaml:"remote_write_url" env:"SIGNUPD_REMOTE_WRITE_URL"`
	MetricsPrefix  string `yaml:"metrics_prefix" env:"SIGNUPD_METRICS_PREFIX"`
	JobName        string `yaml:"jobname" env:"SIGNUPD_JOB_NAME"`
	Instance       string `yaml:"instance" env:"SIGNUPD_INSTANCE"`
}

// TLSEnabled reports whether the listener should serve HTTPS.
func (c *Config) TLSEnabled() bool {
	return c.Listener.TLSCert != "" && c.Listener.TLSKey != ""
}

// PushMetrics reports whether metrics are pushed rather than scraped.
func (c *Config) PushMetrics() bool {
	return c.Monitoring.RemoteWriteURL != ""
}

// Validate performs basic validation on the configuration.
func (c *Config) Validate() error {
	if c.Listener.Addr == "" {
		return errors.New("listener address is required")
	}
	if c.Listener.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}
	if c.Listener.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}
	if c.Listener.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if (c.Listener.TLSCert == "") != (c.Listener.TLSKey == "") {
		return errors.New("tls_cert and tls_key must be set together")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// SetDefaults sets reasonable default values for optional fields.
func (c *Config) SetDefaults() {
	if c.Listener.Addr == "" {
		c.Listener.Addr = defaultListenAddr
	}
	if c.Listener.ReadTimeout == 0 {
		c.Listener.ReadTimeout = defaultReadTimeout
	}
	if c.Listener.WriteTimeout == 0 {
		c.Listener.WriteTimeout = defaultWriteTimeout
	}
	if c.Listener.ShutdownTimeout == 0 {
		c.Listener.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Monitoring.MetricsPrefix == "" {
		c.Monitoring.MetricsPrefix = defaultMetricsPrefix
	}
	if c.Monitoring.JobName == "" {
		c.Monitoring.JobName = defaultJobName
	}
	c.Logging.SetDefaults()
}

// Load reads the YAML config file at path, applies environment overrides and
// defaults, and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
		}
		defer f.Close()

		// An empty file decodes to io.EOF and leaves every field unset.
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode YAML config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
