package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/pagevigil/monitor/internal/browser"
	"github.com/hazyhaar/pagevigil/monitor/internal/session"
)

// CaptureSession opens a visible browser on loginURL and blocks in wait
// while the operator logs in interactively. When wait returns, the
// browser's cookies and the current origin's localStorage are
// snapshotted into a session state suitable for later runs.
func CaptureSession(ctx context.Context, loginURL string, wait func() error, logger *slog.Logger) (*SessionState, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mgr := browser.NewManager(browser.Config{Headful: true, Logger: logger})
	b, err := mgr.Start()
	if err != nil {
		return nil, fmt.Errorf("monitor: start browser: %w", err)
	}
	defer mgr.Close()

	page, err := mgr.NewStealthPage()
	if err != nil {
		return nil, err
	}
	p := page.Context(ctx)
	if err := p.Navigate(loginURL); err != nil {
		return nil, fmt.Errorf("monitor: navigate: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		logger.Warn("monitor: wait load", "error", err)
	}

	if err := wait(); err != nil {
		return nil, err
	}

	cookies, err := b.GetCookies()
	if err != nil {
		return nil, fmt.Errorf("monitor: read cookies: %w", err)
	}

	state := &session.State{}
	for _, c := range cookies {
		state.Cookies = append(state.Cookies, session.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: sameSiteName(c.SameSite),
		})
	}

	items, origin, err := readLocalStorage(p)
	if err != nil {
		logger.Warn("monitor: read localStorage", "error", err)
	} else if len(items) > 0 {
		state.Origins = append(state.Origins, session.Origin{
			Origin:       origin,
			LocalStorage: items,
		})
	}

	logger.Info("monitor: session captured",
		"cookies", len(state.Cookies), "origins", len(state.Origins))
	return state, nil
}

func readLocalStorage(p *rod.Page) ([]session.LocalStorageItem, string, error) {
	info, err := p.Info()
	if err != nil {
		return nil, "", err
	}
	u, err := url.Parse(info.URL)
	if err != nil {
		return nil, "", err
	}

	res, err := p.Eval(`() => {
		const out = [];
		for (let i = 0; i < localStorage.length; i++) {
			const k = localStorage.key(i);
			out.push({name: k, value: localStorage.getItem(k)});
		}
		return out;
	}`)
	if err != nil {
		return nil, "", err
	}

	raw, err := json.Marshal(res.Value)
	if err != nil {
		return nil, "", err
	}
	var items []session.LocalStorageItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, "", err
	}
	return items, u.Scheme + "://" + u.Host, nil
}

func sameSiteName(s proto.NetworkCookieSameSite) string {
	switch s {
	case proto.NetworkCookieSameSiteStrict:
		return "Strict"
	case proto.NetworkCookieSameSiteLax:
		return "Lax"
	case proto.NetworkCookieSameSiteNone:
		return "None"
	}
	return ""
}
