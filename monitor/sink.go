package monitor

import "github.com/hazyhaar/pagevigil/monitor/internal/sink"

// Notification types re-exported so custom notifiers can be implemented
// outside this package.
type (
	Notifier          = sink.Notifier
	Notification      = sink.Message
	NotificationClass = sink.Class
)

const (
	ClassContentChanged = sink.ClassContentChanged
	ClassActionRequired = sink.ClassActionRequired
	ClassRunFailed      = sink.ClassRunFailed
)
