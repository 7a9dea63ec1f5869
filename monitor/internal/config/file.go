// Package config handles monitor configuration from YAML files, flags,
// and environment variables. Secrets (the session blob, the webhook URL)
// are usually injected through the environment by the external scheduler
// rather than written into the YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSelectors is the operator-tunable candidate list, most-specific
// first. The bare table tag is an intentionally noisy fallback, and body
// is the terminal catch-all.
var DefaultSelectors = []string{
	"table#results",
	"table.dataTable",
	"#events_results_table",
	"div#content table",
	"table",
	"body",
}

// Config is the top-level monitor configuration.
type Config struct {
	Target  TargetConfig  `yaml:"target"`
	Browser BrowserConfig `yaml:"browser"`
	Store   StoreConfig   `yaml:"store"`
	Sinks   []SinkConfig  `yaml:"sinks"`
}

// TargetConfig identifies the watched page and how to read it.
type TargetConfig struct {
	URL         string   `yaml:"url"`
	Selectors   []string `yaml:"selectors"`
	SessionFile string   `yaml:"session_file"`

	// SessionB64 is the base64 transport form of the session blob.
	// Environment-only: it is a secret and never belongs in the YAML.
	SessionB64 string `yaml:"-"`
}

// BrowserConfig controls Chrome lifecycle and readiness waits.
type BrowserConfig struct {
	Remote     string        `yaml:"remote"` // WebSocket URL of external Chrome; empty = launch local
	NavTimeout time.Duration `yaml:"nav_timeout"`
	Settle     time.Duration `yaml:"settle"`
}

// StoreConfig locates the persisted fingerprint state.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// SinkConfig defines a notification backend.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook
	URL  string `yaml:"url"`  // for webhook
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if len(c.Target.Selectors) == 0 {
		c.Target.Selectors = append([]string(nil), DefaultSelectors...)
	}
	if c.Browser.NavTimeout <= 0 {
		c.Browser.NavTimeout = 60 * time.Second
	}
	if c.Browser.Settle <= 0 {
		c.Browser.Settle = 2 * time.Second
	}
	if c.Store.Path == "" {
		c.Store.Path = "pagevigil.db"
	}
}

// Validate checks that a run can actually start from this configuration.
func (c *Config) Validate() error {
	if c.Target.URL == "" {
		return fmt.Errorf("config: target.url is required")
	}
	if c.Target.SessionFile == "" && c.Target.SessionB64 == "" {
		return fmt.Errorf("config: a session blob is required (target.session_file or %s)", EnvSessionB64)
	}
	for _, sc := range c.Sinks {
		switch sc.Type {
		case "stdout":
		case "webhook":
			if sc.URL == "" {
				return fmt.Errorf("config: webhook sink requires a url")
			}
		default:
			return fmt.Errorf("config: unknown sink type %q", sc.Type)
		}
	}
	return nil
}
