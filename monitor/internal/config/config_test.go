package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagevigil.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
target:
  url: https://example.com/events.php?zid=42
  selectors: ["table#results", "table"]
  session_file: storage_state.json
browser:
  nav_timeout: 30s
  settle: 1s
store:
  path: /var/lib/pagevigil/state.db
sinks:
  - type: webhook
    url: https://discord.com/api/webhooks/x/y
`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Target.URL != "https://example.com/events.php?zid=42" {
		t.Errorf("url = %q", cfg.Target.URL)
	}
	if len(cfg.Target.Selectors) != 2 {
		t.Errorf("selectors = %v", cfg.Target.Selectors)
	}
	if cfg.Browser.NavTimeout != 30*time.Second {
		t.Errorf("nav_timeout = %v", cfg.Browser.NavTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Browser.NavTimeout != 60*time.Second {
		t.Errorf("nav_timeout = %v", cfg.Browser.NavTimeout)
	}
	if cfg.Browser.Settle != 2*time.Second {
		t.Errorf("settle = %v", cfg.Browser.Settle)
	}
	if cfg.Store.Path != "pagevigil.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	// Default candidate list keeps operator priority order, body last.
	if cfg.Target.Selectors[0] != "table#results" {
		t.Errorf("first selector = %q", cfg.Target.Selectors[0])
	}
	if cfg.Target.Selectors[len(cfg.Target.Selectors)-1] != "body" {
		t.Errorf("last selector = %q, want body fallback", cfg.Target.Selectors[len(cfg.Target.Selectors)-1])
	}
}

func TestValidateMissingTarget(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing target url")
	}
}

func TestValidateMissingSession(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Target.URL = "https://example.com/"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when no session source is configured")
	}
}

func TestValidateBadSink(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Target.URL = "https://example.com/"
	cfg.Target.SessionFile = "s.json"
	cfg.Sinks = []SinkConfig{{Type: "carrier-pigeon"}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown sink type")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvTargetURL:  "https://env.example.com/",
		EnvSessionB64: "eyJjb29raWVzIjpbXX0=",
		EnvWebhookURL: "https://hooks.example.com/z",
		EnvStatePath:  "/tmp/state.db",
	}
	var cfg Config
	cfg.Target.URL = "https://file.example.com/"
	cfg.ApplyDefaults()
	cfg.applyEnv(func(k string) string { return env[k] })

	if cfg.Target.URL != "https://env.example.com/" {
		t.Errorf("env should win: %q", cfg.Target.URL)
	}
	if cfg.Target.SessionB64 == "" {
		t.Error("session b64 not applied")
	}
	if cfg.Store.Path != "/tmp/state.db" {
		t.Errorf("state path = %q", cfg.Store.Path)
	}
	if len(cfg.Sinks) != 1 || cfg.Sinks[0].Type != "webhook" {
		t.Errorf("sinks = %+v", cfg.Sinks)
	}

	// Applying twice must not duplicate the webhook sink.
	cfg.applyEnv(func(k string) string { return env[k] })
	if len(cfg.Sinks) != 1 {
		t.Errorf("sinks duplicated: %+v", cfg.Sinks)
	}
}
