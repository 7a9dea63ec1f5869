// Package selector resolves the first present candidate selector in a
// fetched DOM. Operators hand-tune the candidate list from most-specific
// to least-specific (a named table id first, a bare table tag as a noisy
// fallback), so the first non-empty match wins and nothing is merged
// across candidates.
package selector

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoMatch is returned when none of the candidate selectors is present
// in the DOM. It usually means the page layout changed or the session is
// unauthenticated, and must be surfaced rather than read as "no change".
var ErrNoMatch = errors.New("selector: no candidate selector matched")

// Match is the winning selector and its node-set.
type Match struct {
	Selector  string
	Selection *goquery.Selection
}

// Parse builds a queryable document from serialised DOM bytes.
func Parse(html []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("selector: parse DOM: %w", err)
	}
	return doc, nil
}

// Resolve tries candidates in the caller-supplied priority order and
// returns the first selector whose node-set is non-empty.
func Resolve(doc *goquery.Document, candidates []string) (*Match, error) {
	for _, sel := range candidates {
		found := doc.Find(sel)
		if found.Length() > 0 {
			return &Match{Selector: sel, Selection: found}, nil
		}
	}
	return nil, ErrNoMatch
}
