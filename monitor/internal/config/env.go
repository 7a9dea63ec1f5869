package config

import "os"

// Environment variable names recognised by ApplyEnv. The scheduler that
// invokes the monitor (cron, CI job) injects secrets this way.
const (
	EnvTargetURL   = "PAGEVIGIL_TARGET_URL"
	EnvWebhookURL  = "PAGEVIGIL_WEBHOOK_URL"
	EnvSessionB64  = "PAGEVIGIL_SESSION_B64"
	EnvSessionFile = "PAGEVIGIL_SESSION_FILE"
	EnvStatePath   = "PAGEVIGIL_STATE_DB"
)

// ApplyEnv overlays environment variables onto the configuration.
// Environment wins over file values: the scheduler owns the secrets.
func (c *Config) ApplyEnv() {
	c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvTargetURL); v != "" {
		c.Target.URL = v
	}
	if v := getenv(EnvSessionB64); v != "" {
		c.Target.SessionB64 = v
	}
	if v := getenv(EnvSessionFile); v != "" {
		c.Target.SessionFile = v
	}
	if v := getenv(EnvStatePath); v != "" {
		c.Store.Path = v
	}
	if v := getenv(EnvWebhookURL); v != "" && !c.hasWebhook(v) {
		c.Sinks = append(c.Sinks, SinkConfig{Type: "webhook", URL: v})
	}
}

func (c *Config) hasWebhook(url string) bool {
	for _, sc := range c.Sinks {
		if sc.Type == "webhook" && sc.URL == url {
			return true
		}
	}
	return false
}
