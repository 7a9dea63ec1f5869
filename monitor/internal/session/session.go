// CLAUDE:SUMMARY Captured-session state in the storage_state.json layout — raw/base64 decode, CDP cookie params, origin-scoped localStorage.
// Package session loads and applies externally captured browser state.
//
// The state format is the Playwright storage_state.json layout (cookies
// plus per-origin localStorage), so blobs captured by other tooling keep
// working. A run consumes the state read-only: expiry is never tracked,
// only inferred downstream from what the fetched page looks like.
package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// Cookie is one captured browser cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"` // unix seconds; -1 = session cookie
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"` // Strict | Lax | None
}

// LocalStorageItem is one key/value pair of an origin's localStorage.
type LocalStorageItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Origin groups the localStorage captured for one web origin.
type Origin struct {
	Origin       string             `json:"origin"`
	LocalStorage []LocalStorageItem `json:"localStorage"`
}

// State is a captured authenticated browsing session.
type State struct {
	Cookies []Cookie `json:"cookies"`
	Origins []Origin `json:"origins"`
}

// Decode parses a session blob. It accepts the raw JSON form and the
// base64-wrapped form, so the same secret works from a file or from a
// text-only secret store.
func Decode(data []byte) (*State, error) {
	trimmed := []byte(strings.TrimSpace(string(data)))
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("session: empty blob")
	}

	if trimmed[0] != '{' {
		decoded, err := base64.StdEncoding.DecodeString(string(trimmed))
		if err != nil {
			return nil, fmt.Errorf("session: blob is neither JSON nor base64: %w", err)
		}
		trimmed = decoded
	}

	var st State
	if err := json.Unmarshal(trimmed, &st); err != nil {
		return nil, fmt.Errorf("session: parse state: %w", err)
	}
	return &st, nil
}

// LoadFile reads and decodes a session blob from disk.
func LoadFile(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}
	return Decode(data)
}

// Encode serialises the state as JSON.
func (s *State) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("session: marshal state: %w", err)
	}
	return data, nil
}

// EncodeBase64 serialises the state as base64-wrapped JSON for transport
// through text-only secret stores.
func (s *State) EncodeBase64() (string, error) {
	data, err := s.Encode()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// CookieParams converts the captured cookies to CDP cookie parameters.
func (s *State) CookieParams() []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: sameSite(c.SameSite),
		}
		// -1 marks a session cookie; leave Expires unset for those.
		if c.Expires > 0 {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		params = append(params, p)
	}
	return params
}

// LocalStorageFor returns the captured localStorage items whose origin
// matches the origin of pageURL, or nil if none were captured.
func (s *State) LocalStorageFor(pageURL string) []LocalStorageItem {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	want := strings.ToLower(u.Scheme + "://" + u.Host)
	for _, o := range s.Origins {
		if strings.ToLower(strings.TrimRight(o.Origin, "/")) == want {
			return o.LocalStorage
		}
	}
	return nil
}

func sameSite(s string) proto.NetworkCookieSameSite {
	switch strings.ToLower(s) {
	case "strict":
		return proto.NetworkCookieSameSiteStrict
	case "none":
		return proto.NetworkCookieSameSiteNone
	case "lax":
		return proto.NetworkCookieSameSiteLax
	}
	return ""
}
