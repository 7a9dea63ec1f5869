package fetcher

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a fetch failure.
type Kind string

const (
	KindNetwork Kind = "network"
	KindTimeout Kind = "timeout"
	KindLaunch  Kind = "launch"
)

// Error is a classified fetch failure. All kinds are fatal to the
// current run; none of them may corrupt persisted state.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classify wraps err as a fetch Error, mapping context deadline expiry
// to KindTimeout and everything else to KindNetwork.
func classify(op string, err error) error {
	kind := KindNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Err: fmt.Errorf("fetcher: %s: %w", op, err)}
}
