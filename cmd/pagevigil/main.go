// CLAUDE:SUMMARY CLI entry point for pagevigil — one detection run per invocation, exit code carries the verdict.
// Command pagevigil runs one change-detection cycle for an authenticated
// web page and exits. Scheduling is external (cron, systemd timers, CI).
//
// Usage:
//
//	pagevigil -config pagevigil.yaml
//	pagevigil -url https://example.com/events -session storage_state.json
//
// Exit codes:
//
//	0  run completed (unchanged, first observation, change notified, or
//	   an action-required condition notified)
//	1  run failed structurally (fetch, parse, persistence)
//	3  change detected and recorded, but notification delivery failed
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/pagevigil/monitor"
)

const exitDeliveryFailed = 3

func main() {
	configPath := flag.String("config", "", "path to pagevigil.yaml config file")
	targetURL := flag.String("url", "", "target URL (overrides config)")
	selectors := flag.String("selectors", "", "comma-separated CSS selector candidates (overrides config)")
	sessionFile := flag.String("session", "", "path to storage_state.json (overrides config)")
	webhookURL := flag.String("webhook", "", "webhook URL to notify (adds a sink)")
	statePath := flag.String("state", "", "path to the state database (overrides config)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code, err := run(ctx, logger, *configPath, *targetURL, *selectors, *sessionFile, *webhookURL, *statePath)
	if err != nil {
		logger.Error("pagevigil: fatal", "error", err)
		os.Exit(1)
	}
	os.Exit(code)
}

func run(ctx context.Context, logger *slog.Logger, configPath, targetURL, selectors, sessionFile, webhookURL, statePath string) (int, error) {
	cfg, err := loadConfig(configPath, targetURL, selectors, sessionFile, webhookURL, statePath)
	if err != nil {
		return 1, err
	}

	m, err := monitor.New(cfg, monitor.WithLogger(logger))
	if err != nil {
		return 1, err
	}
	defer m.Close()

	res, err := m.Run(ctx)
	if err != nil {
		return 1, err
	}

	logger.Info("pagevigil: done",
		"run_id", res.RunID,
		"status", res.Status,
		"selector", res.MatchedSelector,
		"notified", res.Notified)

	if res.DeliveryErr != nil {
		logger.Error("pagevigil: delivery failed", "error", res.DeliveryErr)
		return exitDeliveryFailed, nil
	}
	return 0, nil
}

// loadConfig assembles the effective config: YAML file when given, then
// environment, then flags, each layer overriding the previous.
func loadConfig(configPath, targetURL, selectors, sessionFile, webhookURL, statePath string) (*monitor.Config, error) {
	var cfg *monitor.Config
	if configPath != "" {
		var err error
		cfg, err = monitor.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = &monitor.Config{}
		cfg.ApplyDefaults()
	}

	cfg.ApplyEnv()

	if targetURL != "" {
		cfg.Target.URL = targetURL
	}
	if selectors != "" {
		var list []string
		for _, s := range strings.Split(selectors, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		cfg.Target.Selectors = list
	}
	if sessionFile != "" {
		cfg.Target.SessionFile = sessionFile
	}
	if webhookURL != "" {
		cfg.Sinks = append(cfg.Sinks, monitor.SinkConfig{Type: "webhook", URL: webhookURL})
	}
	if statePath != "" {
		cfg.Store.Path = statePath
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "usage: pagevigil -config <file> | -url <url> -session <file> [-webhook <url>]")
		return nil, err
	}
	return cfg, nil
}
