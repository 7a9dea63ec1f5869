// CLAUDE:SUMMARY Webhook sink — JSON POST with Discord-compatible content field, capped exponential backoff retries.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Webhook POSTs JSON to a URL with retry and exponential backoff. The
// payload carries a plain "content" field (Discord- and Slack-webhook
// friendly) alongside the structured fields.
type Webhook struct {
	url        string
	client     *http.Client
	maxRetries int
	logger     *slog.Logger
}

// WebhookOption configures a Webhook sink.
type WebhookOption func(*Webhook)

// WithWebhookRetries sets the maximum number of retries. Default: 3.
func WithWebhookRetries(n int) WebhookOption {
	return func(w *Webhook) { w.maxRetries = n }
}

// WithWebhookClient sets a custom HTTP client.
func WithWebhookClient(c *http.Client) WebhookOption {
	return func(w *Webhook) { w.client = c }
}

// WithWebhookLogger sets a custom logger.
func WithWebhookLogger(l *slog.Logger) WebhookOption {
	return func(w *Webhook) { w.logger = l }
}

// NewWebhook creates a Webhook sink targeting the given URL.
func NewWebhook(url string, opts ...WebhookOption) *Webhook {
	w := &Webhook{
		url:        url,
		client:     &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

type webhookPayload struct {
	Content         string `json:"content"`
	Class           Class  `json:"class"`
	TargetURL       string `json:"target_url"`
	MatchedSelector string `json:"matched_selector,omitempty"`
	Detail          string `json:"detail,omitempty"`
}

// Notify delivers one message, retrying transient failures.
func (w *Webhook) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(webhookPayload{
		Content:         renderContent(msg),
		Class:           msg.Class,
		TargetURL:       msg.TargetURL,
		MatchedSelector: msg.MatchedSelector,
		Detail:          msg.Detail,
	})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook: new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.client.Do(req)
		if err != nil {
			lastErr = err
			w.logger.Warn("webhook: request failed", "attempt", attempt+1, "error", err)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook: status %d", resp.StatusCode)
		w.logger.Warn("webhook: bad status", "attempt", attempt+1, "status", resp.StatusCode)
	}
	return fmt.Errorf("webhook: all retries exhausted: %w", lastErr)
}

func (w *Webhook) Close() error { return nil }

// renderContent builds the human-readable text for chat webhooks.
func renderContent(msg Message) string {
	var b strings.Builder
	switch msg.Class {
	case ClassContentChanged:
		fmt.Fprintf(&b, "Change detected:\n%s", msg.TargetURL)
		if msg.MatchedSelector != "" {
			fmt.Fprintf(&b, "\nselector: %s", msg.MatchedSelector)
		}
	case ClassActionRequired:
		fmt.Fprintf(&b, "Action required for %s:\n%s", msg.TargetURL, msg.Detail)
	default:
		fmt.Fprintf(&b, "Monitor run failed for %s:\n%s", msg.TargetURL, msg.Detail)
	}
	if msg.Preview != "" {
		fmt.Fprintf(&b, "\n\n%s", msg.Preview)
	}
	return b.String()
}
