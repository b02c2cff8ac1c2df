// Package fill writes values into discovered controls using per-idiom
// strategies and orchestrates a fill session over a whole descriptor list.
package fill

import (
	"strings"

	"github.com/hiremate/formfill/internal/identity"
)

// matchStage records which rung of the fuzzy chain produced a match.
// Stages are strictly ordered: a later, more permissive stage only runs
// after every stricter stage has failed across all options.
type matchStage int

const (
	matchNone matchStage = iota
	matchExact
	matchNormalized
	matchSubstring
	matchFirstWord
)

// fuzzyMatch finds the option best matching value. It returns the option
// index and the stage that matched, or (-1, matchNone).
//
// The chain is an ordered decision table:
//  1. exact, case-insensitive
//  2. exact after normalization (punctuation and whitespace folded)
//  3. substring containment, either direction, normalized
//  4. first normalized word equality
//
// Placeholder-like options ("Select...", "--", "Please choose") never match;
// they are prompts, not values.
func fuzzyMatch(value string, options []string) (int, matchStage) {
	if strings.TrimSpace(value) == "" {
		return -1, matchNone
	}

	lowered := strings.ToLower(strings.TrimSpace(value))
	normed := identity.NormalizeText(value)

	type cand struct {
		idx      int
		lowered  string
		normed   string
	}
	cands := make([]cand, 0, len(options))
	for i, o := range options {
		if isPlaceholderOption(o) {
			continue
		}
		cands = append(cands, cand{i, strings.ToLower(strings.TrimSpace(o)), identity.NormalizeText(o)})
	}

	for _, c := range cands {
		if c.lowered == lowered {
			return c.idx, matchExact
		}
	}

	if normed != "" {
		for _, c := range cands {
			if c.normed == normed {
				return c.idx, matchNormalized
			}
		}
		for _, c := range cands {
			if c.normed == "" {
				continue
			}
			if strings.Contains(c.normed, normed) || strings.Contains(normed, c.normed) {
				return c.idx, matchSubstring
			}
		}
		vw := firstWord(normed)
		if vw != "" {
			for _, c := range cands {
				if firstWord(c.normed) == vw {
					return c.idx, matchFirstWord
				}
			}
		}
	}

	return -1, matchNone
}

func firstWord(normed string) string {
	if i := strings.IndexByte(normed, ' '); i >= 0 {
		return normed[:i]
	}
	return normed
}

// isPlaceholderOption reports whether an option is a selection prompt rather
// than a real value.
func isPlaceholderOption(o string) bool {
	n := identity.NormalizeText(o)
	if n == "" {
		return true
	}
	switch n {
	case "select", "choose", "please select", "please choose", "select one",
		"select an option", "choose an option":
		return true
	}
	return false
}
