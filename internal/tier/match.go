package tier

import (
	"fmt"
	"path"
	"strings"
)

// Match is the result of classifying one path.
type Match struct {
	Tier    Tier    `json:"tier"`
	Pattern Pattern `json:"pattern"`
}

// Matcher classifies test paths against the patterns of every tier in a
// catalog. It is a pure function of catalog + path: no shared mutable
// state, safe to call from any number of goroutines.
type Matcher struct {
	catalog *Catalog
}

// NewMatcher returns a matcher over the given catalog.
func NewMatcher(c *Catalog) *Matcher {
	if c == nil {
		c = Default()
	}
	return &Matcher{catalog: c}
}

// Classify returns the tier owning p.
//
// Patterns are designed to be mutually exclusive by filename suffix, so
// normally at most the intended tier matches. When a path satisfies
// patterns from several tiers (e.g. test_x_expansion.py satisfies both the
// plain L2 glob and the L3 expansion glob) the most specific pattern wins,
// measured by longest literal glob prefix; ties go to the higher tier,
// since later tiers are supersets.
//
// A path matching nothing returns an error wrapping ErrUnclassified.
func (m *Matcher) Classify(p string) (Match, error) {
	norm := Normalize(p)

	var (
		best     Match
		bestSpec = -1
		found    bool
	)
	for _, t := range m.catalog.All() {
		for _, pat := range t.Patterns {
			ok, err := path.Match(pat.Glob, norm)
			if err != nil {
				return Match{}, fmt.Errorf("tier %s pattern %q: %w", t.ID, pat.Glob, err)
			}
			if !ok {
				continue
			}
			spec := len(literalPrefix(pat.Glob))
			// >= prefers the later tier on equal specificity; the
			// catalog iterates in escalation order.
			if spec >= bestSpec {
				best = Match{Tier: t, Pattern: pat}
				bestSpec = spec
				found = true
			}
		}
	}
	if !found {
		return Match{}, fmt.Errorf("%s: %w", p, ErrUnclassified)
	}
	return best, nil
}

// Normalize converts a candidate path to the slash-separated, repo-relative
// form the catalog globs are written against. Leading "./" and "/" are
// stripped so absolute and relative spellings classify identically.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "/")
	// Globs are anchored at the tests/ root; drop anything before it so
	// paths like /repo/checkout/tests/engine/test_x.py still classify.
	// Only a whole "tests" path component counts: unittests/engine/... must
	// stay unclassified, not get truncated into the catalog.
	if !strings.HasPrefix(p, "tests/") {
		if i := strings.Index(p, "/tests/"); i >= 0 {
			p = p[i+1:]
		}
	}
	return p
}

// literalPrefix returns the leading part of a glob up to its first
// metacharacter. Used as the specificity measure for tie-breaks.
func literalPrefix(glob string) string {
	if i := strings.IndexAny(glob, `*?[\`); i >= 0 {
		return glob[:i]
	}
	return glob
}
