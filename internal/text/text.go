// Package text holds the post-processing primitives applied to extracted
// string lists: order-preserving dedupe and collation-aware sorting.
package text

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode selects one of the supported orderings
type SortMode string

const (
	SortOff        SortMode = "off"
	SortAlphaAsc   SortMode = "alpha-asc"
	SortAlphaDesc  SortMode = "alpha-desc"
	SortLengthAsc  SortMode = "length-asc"
	SortLengthDesc SortMode = "length-desc"
)

// SortModes lists every valid mode, in the order they are offered to users
var SortModes = []SortMode{SortAlphaAsc, SortAlphaDesc, SortLengthAsc, SortLengthDesc}

// ParseSortMode maps s onto a SortMode. Unknown values become SortOff.
func ParseSortMode(s string) SortMode {
	m := SortMode(strings.ToLower(strings.TrimSpace(s)))
	if m.Valid() {
		return m
	}
	return SortOff
}

// Valid reports whether m is one of the known modes
func (m SortMode) Valid() bool {
	switch m {
	case SortOff, SortAlphaAsc, SortAlphaDesc, SortLengthAsc, SortLengthDesc:
		return true
	}
	return false
}

// Dedupe removes repeated strings, keeping each at its first position.
// Equality is exact: no case folding or normalization.
func Dedupe(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Sort returns a sorted copy of list. Alphabetical modes ignore case and
// accents (English collation, base strength). Length modes order by rune
// count and break ties alphabetically ascending whatever the direction.
// Unknown modes return an unsorted copy.
func Sort(list []string, mode SortMode) []string {
	out := slices.Clone(list)
	if out == nil {
		out = []string{}
	}

	switch mode {
	case SortAlphaAsc:
		base := collate.New(language.English, collate.Loose)
		slices.SortStableFunc(out, func(a, b string) int {
			return base.CompareString(a, b)
		})
	case SortAlphaDesc:
		base := collate.New(language.English, collate.Loose)
		slices.SortStableFunc(out, func(a, b string) int {
			return base.CompareString(b, a)
		})
	case SortLengthAsc:
		tie := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b string) int {
			if d := utf8.RuneCountInString(a) - utf8.RuneCountInString(b); d != 0 {
				return d
			}
			return tie.CompareString(a, b)
		})
	case SortLengthDesc:
		tie := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b string) int {
			if d := utf8.RuneCountInString(b) - utf8.RuneCountInString(a); d != 0 {
				return d
			}
			return tie.CompareString(a, b)
		})
	}

	return out
}
