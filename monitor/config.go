package monitor

import (
	"github.com/hazyhaar/pagevigil/monitor/internal/config"
	"github.com/hazyhaar/pagevigil/monitor/internal/session"
)

// Configuration types re-exported so callers never import internal
// packages directly.
type (
	Config        = config.Config
	TargetConfig  = config.TargetConfig
	BrowserConfig = config.BrowserConfig
	StoreConfig   = config.StoreConfig
	SinkConfig    = config.SinkConfig
)

// SessionState is a saved browser session (cookies plus origin-scoped
// localStorage) in the storage-state JSON layout.
type SessionState = session.State

// DefaultSelectors is the candidate list used when a target names none.
var DefaultSelectors = config.DefaultSelectors

// LoadConfigFile reads and validates a YAML config file, applying
// defaults for unset fields.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

