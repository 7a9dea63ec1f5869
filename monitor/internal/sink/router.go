package sink

import (
	"context"
	"log/slog"
)

// Router fans out notifications to all configured sinks. One sink error
// does not block the others; errors are logged and the first
// encountered is returned.
type Router struct {
	sinks  []Notifier
	logger *slog.Logger
}

// NewRouter creates a fan-out router delivering to all sinks.
func NewRouter(logger *slog.Logger, sinks ...Notifier) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{sinks: sinks, logger: logger}
}

func (r *Router) Notify(ctx context.Context, msg Message) error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.Notify(ctx, msg); err != nil {
			r.logger.Warn("sink: notify failed", "class", msg.Class, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *Router) Close() error {
	var firstErr error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
