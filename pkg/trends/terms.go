package trends

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TermSet is an ordered list of trimmed, non-empty search terms.
type TermSet []string

// ParseTerms splits comma-separated user input into a TermSet. Fragments are
// trimmed and NFC-normalized; empty fragments are dropped. Duplicates are kept.
func ParseTerms(raw string) TermSet {
	parts := strings.Split(raw, ",")
	terms := make(TermSet, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(norm.NFC.String(p))
		if p == "" {
			continue
		}
		terms = append(terms, p)
	}
	return terms
}

// Union prepends defaults to terms, skipping user terms that already appear
// among the defaults (case-insensitive).
func Union(defaults, terms TermSet) TermSet {
	out := make(TermSet, 0, len(defaults)+len(terms))
	seen := make(map[string]struct{}, len(defaults))
	for _, d := range defaults {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		out = append(out, d)
		seen[strings.ToLower(d)] = struct{}{}
	}
	for _, t := range terms {
		if _, ok := seen[strings.ToLower(t)]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (t TermSet) String() string {
	return strings.Join(t, ", ")
}
