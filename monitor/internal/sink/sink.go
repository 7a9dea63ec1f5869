// Package sink defines the notification contract and its backends.
// Delivery failure is the caller's signal to log and move on: a change
// that was detected but not announced must not be re-announced on every
// later run, so sinks never gate persistence.
package sink

import "context"

// Class distinguishes what a notification asks of the operator.
type Class string

const (
	// ClassContentChanged: the watched content produced a new fingerprint.
	ClassContentChanged Class = "content_changed"

	// ClassActionRequired: the run cannot succeed until the operator
	// intervenes (expired session, vanished selectors).
	ClassActionRequired Class = "action_required"

	// ClassRunFailed: a structural failure (network, browser) worth
	// surfacing but not actionable through the monitor itself.
	ClassRunFailed Class = "run_failed"
)

// Message is the logical notification payload.
type Message struct {
	Class           Class
	TargetURL       string
	MatchedSelector string // set for content_changed
	Detail          string
	Preview         string // optional markdown rendering of the matched content
}

// Notifier delivers messages to an output backend.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
	Close() error
}
