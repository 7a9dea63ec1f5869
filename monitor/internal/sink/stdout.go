package sink

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
)

// Stdout writes notifications as JSON lines to an io.Writer (default
// os.Stdout). Used when no webhook is configured, mirroring a monitor
// that just prints what it would have sent.
type Stdout struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewStdout creates a Stdout sink. If w is nil, os.Stdout is used.
func NewStdout(w io.Writer) *Stdout {
	if w == nil {
		w = os.Stdout
	}
	return &Stdout{enc: json.NewEncoder(w)}
}

func (s *Stdout) Notify(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(envelope{
		Class:           msg.Class,
		TargetURL:       msg.TargetURL,
		MatchedSelector: msg.MatchedSelector,
		Detail:          msg.Detail,
		Preview:         msg.Preview,
	})
}

func (s *Stdout) Close() error { return nil }

type envelope struct {
	Class           Class  `json:"class"`
	TargetURL       string `json:"target_url"`
	MatchedSelector string `json:"matched_selector,omitempty"`
	Detail          string `json:"detail,omitempty"`
	Preview         string `json:"preview,omitempty"`
}
