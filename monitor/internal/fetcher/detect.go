package fetcher

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// loginPathMarkers are URL substrings that indicate an auth redirect.
// ucp.php covers phpBB-backed sites, which redirect expired sessions to
// their user control panel login.
var loginPathMarkers = []string{
	"/login",
	"/signin",
	"/sign-in",
	"/auth/",
	"ucp.php?mode=login",
}

// Authenticated reports whether a fetched page looks like an
// authenticated view. It returns false when the final URL matches a
// login redirect pattern or the page carries a login form.
func Authenticated(finalURL string, html []byte) bool {
	if urlLooksLikeLogin(finalURL) {
		return false
	}
	return !hasLoginForm(html)
}

func urlLooksLikeLogin(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	probe := strings.ToLower(u.Path)
	if u.RawQuery != "" {
		probe += "?" + strings.ToLower(u.RawQuery)
	}
	for _, marker := range loginPathMarkers {
		if strings.Contains(probe, marker) {
			return true
		}
	}
	return false
}

// hasLoginForm reports whether the page contains a password form, the
// strongest marker that the session cookie was not honoured.
func hasLoginForm(html []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(`form input[type="password"]`).Length() > 0
}
