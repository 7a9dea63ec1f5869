package monitor

import (
	"errors"

	"github.com/hazyhaar/pagevigil/monitor/internal/fetcher"
	"github.com/hazyhaar/pagevigil/monitor/internal/selector"
)

// FetchError is a classified fetch failure. Re-exported from internal.
type FetchError = fetcher.Error

// FetchKind classifies a FetchError.
type FetchKind = fetcher.Kind

const (
	FetchNetwork = fetcher.KindNetwork
	FetchTimeout = fetcher.KindTimeout
	FetchLaunch  = fetcher.KindLaunch
)

// ErrAuthExpired marks a saved session that no longer authenticates.
// Not a transient failure: runs will keep landing on a login page until
// the operator captures a fresh session.
var ErrAuthExpired = errors.New("monitor: saved session no longer authenticates")

// ErrNoSelectorMatched is returned when no candidate selector is present
// in the fetched DOM.
var ErrNoSelectorMatched = selector.ErrNoMatch

// ErrDelivery marks a notification that could not be handed to every
// sink. Non-fatal: the baseline update it announces has already been
// committed, and re-running would not re-announce it.
var ErrDelivery = errors.New("monitor: notification delivery failed")

// ErrPersistence marks a fingerprint store failure. A comparison cannot
// be trusted without a readable baseline, so these are fatal to the run
// and never read as "no change".
var ErrPersistence = errors.New("monitor: fingerprint store failure")
