// CLAUDE:SUMMARY Rendered-DOM fetch through go-rod with session cookies + localStorage applied, settle delay, and login-redirect detection.
// Package fetcher retrieves a fully rendered DOM for a target URL using
// a captured session, and decides whether the response is an
// authenticated view or a login redirect.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/pagevigil/monitor/internal/browser"
	"github.com/hazyhaar/pagevigil/monitor/internal/session"
)

// Result is the outcome of a rendered fetch.
type Result struct {
	HTML     []byte
	FinalURL string

	// Authenticated is false whenever the final URL or page markers
	// match a login pattern, regardless of HTTP status.
	Authenticated bool
}

// Fetcher drives one browser tab per Fetch call.
type Fetcher struct {
	mgr     *browser.Manager
	timeout time.Duration
	settle  time.Duration
	logger  *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds navigation plus readiness waits. Default: 60s.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithSettle sets the post-load settle delay for pages that populate
// content via late AJAX (DataTables and friends). Default: 2s.
func WithSettle(d time.Duration) Option {
	return func(f *Fetcher) { f.settle = d }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// New creates a Fetcher bound to a browser manager.
func New(mgr *browser.Manager, opts ...Option) *Fetcher {
	f := &Fetcher{
		mgr:     mgr,
		timeout: 60 * time.Second,
		settle:  2 * time.Second,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch navigates to targetURL with the session applied, waits for the
// page to render, and returns the serialised DOM. The session is never
// mutated. The tab is closed on every path.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string, sess *session.State) (*Result, error) {
	b := f.mgr.Browser()
	if b == nil {
		return nil, &Error{Kind: KindLaunch, Err: fmt.Errorf("fetcher: browser not started")}
	}

	// Cookies are set browser-wide before the tab opens so the first
	// request already carries them.
	if sess != nil && len(sess.Cookies) > 0 {
		if err := b.SetCookies(sess.CookieParams()); err != nil {
			return nil, classify("set cookies", err)
		}
	}

	page, err := f.mgr.NewStealthPage()
	if err != nil {
		return nil, &Error{Kind: KindLaunch, Err: err}
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	p := page.Context(navCtx)

	if err := p.Navigate(targetURL); err != nil {
		return nil, classify("navigate", err)
	}
	if err := p.WaitLoad(); err != nil {
		if navCtx.Err() != nil {
			return nil, classify("wait load", err)
		}
		f.logger.Warn("fetcher: wait load", "url", targetURL, "error", err)
	}

	// localStorage entries only take effect from the page's own origin,
	// so they are injected after the first navigation, then reloaded.
	if sess != nil {
		if items := sess.LocalStorageFor(targetURL); len(items) > 0 {
			if err := applyLocalStorage(p, items); err != nil {
				f.logger.Warn("fetcher: apply localStorage", "error", err)
			} else if err := p.Reload(); err != nil {
				return nil, classify("reload", err)
			} else if err := p.WaitLoad(); err != nil && navCtx.Err() != nil {
				return nil, classify("wait reload", err)
			}
		}
	}

	// The watched content is populated client-side; give it a bounded
	// window to finish rendering after the load event.
	if f.settle > 0 {
		t := time.NewTimer(f.settle)
		select {
		case <-navCtx.Done():
			t.Stop()
			return nil, classify("settle", navCtx.Err())
		case <-t.C:
		}
	}

	info, err := p.Info()
	if err != nil {
		return nil, classify("page info", err)
	}

	res, err := p.Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return nil, classify("serialise DOM", err)
	}
	html := []byte(res.Value.Str())

	authenticated := Authenticated(info.URL, html)

	f.logger.Debug("fetcher: fetched",
		"url", targetURL, "final_url", info.URL,
		"size", len(html), "authenticated", authenticated)

	return &Result{
		HTML:          html,
		FinalURL:      info.URL,
		Authenticated: authenticated,
	}, nil
}

func applyLocalStorage(p *rod.Page, items []session.LocalStorageItem) error {
	_, err := p.Eval(`(items) => {
		for (const it of items) {
			localStorage.setItem(it.name, it.value);
		}
	}`, items)
	if err != nil {
		return fmt.Errorf("fetcher: localStorage eval: %w", err)
	}
	return nil
}
