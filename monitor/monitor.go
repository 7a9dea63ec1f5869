// CLAUDE:SUMMARY Orchestrator for one change-detection run — fetch, selector resolution, fingerprint comparison, notification; persistence gated on pipeline success.
// Package monitor detects changes in authenticated web pages. One Run
// renders the target behind a saved session, extracts the watched
// content, fingerprints it, and compares against the stored baseline,
// notifying the configured sinks when the content moved.
//
// Persistence is gated on a fully successful pipeline: a run that fails
// at any stage leaves the baseline untouched, so the next successful
// run still compares against the last trusted observation. Notification
// delivery is the one exception the other way round: a delivered-or-not
// notification never rolls back a baseline update.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hazyhaar/pagevigil/idgen"
	"github.com/hazyhaar/pagevigil/monitor/internal/browser"
	"github.com/hazyhaar/pagevigil/monitor/internal/canonical"
	"github.com/hazyhaar/pagevigil/monitor/internal/config"
	"github.com/hazyhaar/pagevigil/monitor/internal/fetcher"
	"github.com/hazyhaar/pagevigil/monitor/internal/selector"
	"github.com/hazyhaar/pagevigil/monitor/internal/session"
	"github.com/hazyhaar/pagevigil/monitor/internal/sink"
	"github.com/hazyhaar/pagevigil/monitor/internal/store"
)

// Status is what a completed run concluded about the target.
type Status string

const (
	// StatusUnchanged: the content matches the stored baseline.
	StatusUnchanged Status = Status(store.Unchanged)

	// StatusChanged: the content differs from the baseline; the baseline
	// now reflects the new content.
	StatusChanged Status = Status(store.Changed)

	// StatusFirstObservation: no baseline existed; one was established
	// silently.
	StatusFirstObservation Status = Status(store.FirstObservation)

	// StatusAuthExpired: the saved session no longer authenticates.
	// Operator intervention required; the baseline is untouched.
	StatusAuthExpired Status = "auth_expired"

	// StatusNoSelector: none of the candidate selectors matched the
	// rendered DOM. Operator intervention required; baseline untouched.
	StatusNoSelector Status = "no_selector"
)

// ActionRequired reports whether the status asks for operator
// intervention rather than describing a comparison outcome.
func (s Status) ActionRequired() bool {
	return s == StatusAuthExpired || s == StatusNoSelector
}

// Result summarises one completed run. Runs that fail structurally
// (fetch, parse, persistence) return an error instead.
type Result struct {
	RunID           string
	Status          Status
	MatchedSelector string
	ContentHash     string

	// Notified is true when a notification for this run was handed to
	// every sink successfully. Always false for silent outcomes.
	Notified bool

	// DeliveryErr is set when a notification was warranted but at least
	// one sink failed. The baseline update already happened; callers
	// surface this without retrying the comparison.
	DeliveryErr error
}

// FetchFunc renders a target URL with a session applied. The default
// implementation launches a browser per call; tests substitute their
// own.
type FetchFunc func(ctx context.Context, targetURL string, sess *session.State) (*fetcher.Result, error)

// Monitor runs the detection pipeline for one configured target.
type Monitor struct {
	cfg      *Config
	logger   *slog.Logger
	notifier sink.Notifier
	st       *store.Store
	fetch    FetchFunc
	newID    idgen.Generator
	now      func() time.Time

	ownStore    bool
	ownNotifier bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// WithNotifier replaces the notifier built from the config's sinks.
// The caller keeps ownership; Close will not close it.
func WithNotifier(n sink.Notifier) Option {
	return func(m *Monitor) { m.notifier = n }
}

// WithStore injects an open fingerprint store. The caller keeps
// ownership; Close will not close it.
func WithStore(st *store.Store) Option {
	return func(m *Monitor) { m.st = st }
}

// WithFetchFunc replaces the browser-backed fetch.
func WithFetchFunc(f FetchFunc) Option {
	return func(m *Monitor) { m.fetch = f }
}

// WithIDGenerator sets the run ID generator.
func WithIDGenerator(g idgen.Generator) Option {
	return func(m *Monitor) { m.newID = g }
}

// WithClock sets the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New builds a Monitor from cfg. Unless injected via options, the
// fingerprint store is opened from cfg.Store.Path and the notifier is
// assembled from cfg.Sinks (stdout when none are configured).
func New(cfg *Config, opts ...Option) (*Monitor, error) {
	m := &Monitor{
		cfg:    cfg,
		logger: slog.Default(),
		newID:  idgen.Prefixed("run_", idgen.Default),
		now:    time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	if m.fetch == nil {
		m.fetch = m.browserFetch
	}
	if m.st == nil {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		m.st = st
		m.ownStore = true
	}
	if m.notifier == nil {
		m.notifier = buildNotifier(cfg, m.logger)
		m.ownNotifier = true
	}
	return m, nil
}

// Close releases resources the Monitor opened itself. Injected stores
// and notifiers are left alone.
func (m *Monitor) Close() error {
	var errs []error
	if m.ownNotifier {
		if err := m.notifier.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.ownStore {
		if err := m.st.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run executes one detection cycle. It returns a Result when the run
// reached a conclusion about the target (including action-required
// conditions, which are reported through the sinks), and an error when
// the run failed structurally before any conclusion was possible. Every
// run, either way, leaves a row in the run log.
func (m *Monitor) Run(ctx context.Context) (*Result, error) {
	started := m.now()
	res := &Result{RunID: m.newID()}
	target := m.cfg.Target.URL
	log := m.logger.With("run_id", res.RunID, "target", target)

	record := func(outcome string, runErr error) {
		e := &store.RunEntry{
			ID:              res.RunID,
			TargetURL:       target,
			Outcome:         outcome,
			MatchedSelector: res.MatchedSelector,
			DurationMs:      m.now().Sub(started).Milliseconds(),
			StartedAt:       started.UnixMilli(),
		}
		if runErr != nil {
			e.Error = runErr.Error()
		}
		if err := m.st.InsertRun(ctx, e); err != nil {
			log.Error("monitor: record run", "error", err)
		}
	}

	sess, err := m.sessionState()
	if err != nil {
		record("session_error", err)
		return nil, err
	}

	fetched, err := m.fetch(ctx, target, sess)
	if err != nil {
		log.Error("monitor: fetch", "error", err)
		m.announce(ctx, log, sink.Message{
			Class:     sink.ClassRunFailed,
			TargetURL: target,
			Detail:    err.Error(),
		})
		record(failOutcome(err), err)
		return nil, err
	}

	if !fetched.Authenticated {
		log.Warn("monitor: session rejected", "final_url", fetched.FinalURL)
		res.Status = StatusAuthExpired
		res.DeliveryErr = m.announce(ctx, log, sink.Message{
			Class:     sink.ClassActionRequired,
			TargetURL: target,
			Detail:    "saved session no longer authenticates; capture a fresh one (landed on " + fetched.FinalURL + ")",
		})
		res.Notified = res.DeliveryErr == nil
		record(string(StatusAuthExpired), ErrAuthExpired)
		return res, nil
	}

	doc, err := selector.Parse(fetched.HTML)
	if err != nil {
		m.announce(ctx, log, sink.Message{
			Class:     sink.ClassRunFailed,
			TargetURL: target,
			Detail:    err.Error(),
		})
		record("parse_error", err)
		return nil, err
	}

	match, err := selector.Resolve(doc, m.selectors())
	if err != nil {
		if !errors.Is(err, selector.ErrNoMatch) {
			record("selector_error", err)
			return nil, err
		}
		log.Warn("monitor: no selector matched")
		res.Status = StatusNoSelector
		res.DeliveryErr = m.announce(ctx, log, sink.Message{
			Class:     sink.ClassActionRequired,
			TargetURL: target,
			Detail:    "no candidate selector matched; the page layout may have changed",
		})
		res.Notified = res.DeliveryErr == nil
		record(string(StatusNoSelector), err)
		return res, nil
	}
	res.MatchedSelector = match.Selector

	canon, err := canonical.Canonicalize(match.Selection)
	if err != nil {
		record("canonicalize_error", err)
		return nil, err
	}

	fp := store.Fingerprint{
		Hash:       canonical.Hash(canon),
		Selector:   match.Selector,
		ObservedAt: started.UnixMilli(),
	}
	res.ContentHash = fp.Hash

	outcome, err := m.st.CompareAndUpdate(ctx, target, fp)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPersistence, err)
		record("persistence_error", err)
		return nil, err
	}
	res.Status = Status(outcome)

	if outcome == store.Changed {
		res.DeliveryErr = m.announce(ctx, log, sink.Message{
			Class:           sink.ClassContentChanged,
			TargetURL:       target,
			MatchedSelector: match.Selector,
			Detail:          "watched content changed",
			Preview:         sink.Preview(matchHTML(match)),
		})
		res.Notified = res.DeliveryErr == nil
	}

	record(string(outcome), nil)
	log.Info("monitor: run complete",
		"outcome", res.Status,
		"selector", res.MatchedSelector,
		"notified", res.Notified)
	return res, nil
}

// announce delivers msg through the notifier, logging and wrapping any
// failure. Callers decide whether a delivery failure matters.
func (m *Monitor) announce(ctx context.Context, log *slog.Logger, msg sink.Message) error {
	if err := m.notifier.Notify(ctx, msg); err != nil {
		log.Error("monitor: notify", "class", msg.Class, "error", err)
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}

// sessionState loads the session from the inline base64 blob when set,
// otherwise from the configured file. Read per run so a refreshed
// session file takes effect without restart.
func (m *Monitor) sessionState() (*session.State, error) {
	if b := m.cfg.Target.SessionB64; b != "" {
		return session.Decode([]byte(b))
	}
	return session.LoadFile(m.cfg.Target.SessionFile)
}

func (m *Monitor) selectors() []string {
	if len(m.cfg.Target.Selectors) > 0 {
		return m.cfg.Target.Selectors
	}
	return config.DefaultSelectors
}

// browserFetch is the default FetchFunc: one Chrome instance per run,
// released on every exit path.
func (m *Monitor) browserFetch(ctx context.Context, targetURL string, sess *session.State) (*fetcher.Result, error) {
	mgr := browser.NewManager(browser.Config{
		RemoteURL: m.cfg.Browser.Remote,
		Logger:    m.logger,
	})
	if _, err := mgr.Start(); err != nil {
		return nil, &fetcher.Error{Kind: fetcher.KindLaunch, Err: err}
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			m.logger.Warn("monitor: close browser", "error", err)
		}
	}()

	f := fetcher.New(mgr,
		fetcher.WithTimeout(m.cfg.Browser.NavTimeout),
		fetcher.WithSettle(m.cfg.Browser.Settle),
		fetcher.WithLogger(m.logger))
	return f.Fetch(ctx, targetURL, sess)
}

func buildNotifier(cfg *Config, log *slog.Logger) sink.Notifier {
	var sinks []sink.Notifier
	for _, sc := range cfg.Sinks {
		switch sc.Type {
		case "webhook":
			sinks = append(sinks, sink.NewWebhook(sc.URL, sink.WithWebhookLogger(log)))
		case "stdout":
			sinks = append(sinks, sink.NewStdout(os.Stdout))
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, sink.NewStdout(os.Stdout))
	}
	return sink.NewRouter(log, sinks...)
}

// failOutcome labels a structural failure for the run log.
func failOutcome(err error) string {
	var fe *fetcher.Error
	if errors.As(err, &fe) {
		return "fetch_" + string(fe.Kind)
	}
	return "error"
}

// matchHTML renders the first matched node back to HTML for previews.
func matchHTML(match *selector.Match) string {
	html, err := goquery.OuterHtml(match.Selection.First())
	if err != nil {
		return ""
	}
	return html
}
