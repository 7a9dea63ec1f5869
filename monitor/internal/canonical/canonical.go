// Package canonical turns a matched node-set into a stable string and a
// collision-resistant digest. Re-renders of semantically identical
// content must canonicalize identically, so volatile attributes
// (generated element ids, inline styles, data-* timestamps) are stripped
// and whitespace is normalised before hashing.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// policy keeps structural markup and a small allowlist of stable
// attributes. Everything else (ids, classes, styles, data-*, event
// handlers) is dropped as volatile noise.
var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"a", "article", "b", "br", "caption", "div", "em",
		"h1", "h2", "h3", "h4", "h5", "h6", "i", "img", "li", "main",
		"ol", "p", "section", "small", "span", "strong", "sub", "sup",
		"table", "tbody", "td", "tfoot", "th", "thead", "tr", "ul",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowAttrs("colspan", "rowspan", "scope").OnElements("td", "th")
	return p
}

var (
	interTagSpace = regexp.MustCompile(`>\s+<`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// Canonicalize produces the deterministic string form of a node-set.
// Nodes are rendered in DOM order, sanitised, and whitespace-collapsed.
func Canonicalize(sel *goquery.Selection) (string, error) {
	var parts []string
	var firstErr error

	sel.Each(func(i int, s *goquery.Selection) {
		outer, err := goquery.OuterHtml(s)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("canonical: render node %d: %w", i, err)
			}
			return
		}
		parts = append(parts, normalize(policy.Sanitize(outer)))
	})
	if firstErr != nil {
		return "", firstErr
	}

	return strings.Join(parts, "\n"), nil
}

// Hash digests a canonical string with SHA-256, hex encoded.
func Hash(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	s = interTagSpace.ReplaceAllString(s, "><")
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
