package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// AliasGroup maps a canonical value to the phrases that mean it.
// Groups are checked in order, so more specific groups go first.
type AliasGroup struct {
	Canonical string
	Aliases   []string
}

// Fold normalizes s for caseless comparison: NFC, Unicode case folding,
// trimmed and with internal whitespace collapsed.
func Fold(s string) string {
	s = norm.NFC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// FoldTrim is Fold without collapsing internal whitespace
func FoldTrim(s string) string {
	return strings.TrimSpace(cases.Fold().String(norm.NFC.String(s)))
}

// FoldEqual reports whether a and b are equal under Fold
func FoldEqual(a, b string) bool {
	return Fold(a) == Fold(b)
}

// FuzzyMatchAlias returns the canonical value of the first group whose alias
// equals or is contained in term. Matching is caseless.
func FuzzyMatchAlias(term string, groups []AliasGroup) (string, bool) {
	folded := Fold(term)
	if folded == "" {
		return "", false
	}

	// Exact match first so a short alias cannot shadow a longer canonical name
	for _, g := range groups {
		if folded == Fold(g.Canonical) {
			return g.Canonical, true
		}
		for _, alias := range g.Aliases {
			if folded == Fold(alias) {
				return g.Canonical, true
			}
		}
	}

	// Contains match
	for _, g := range groups {
		for _, alias := range g.Aliases {
			if strings.Contains(folded, Fold(alias)) {
				return g.Canonical, true
			}
		}
	}

	return "", false
}
