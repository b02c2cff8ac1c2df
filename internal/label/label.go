// Package label derives a human-meaningful name for a discovered control
// from an ordered chain of DOM signals. The signals are harvested in-page by
// the scraper; inference itself is pure and unit-testable.
package label

import (
	"strings"
	"unicode"

	"github.com/hiremate/formfill/field"
)

// Signals is the bundle of label candidates collected for one control and
// its wrapper. Every entry is raw DOM text; empty means the source was
// absent or empty.
type Signals struct {
	LabelledBy     string `json:"labelledBy,omitempty"`     // text of aria-labelledby targets
	ExplicitLabel  string `json:"explicitLabel,omitempty"`  // <label for=...> association
	AriaLabel      string `json:"ariaLabel,omitempty"`      // aria-label attribute
	EnclosingLabel string `json:"enclosingLabel,omitempty"` // wrapping <label>, controls stripped
	SiblingLabel   string `json:"siblingLabel,omitempty"`   // platform-specific sibling lookup
	AutomationID   string `json:"automationId,omitempty"`   // data-automation-id / data-testid
	QuestionLabel  string `json:"questionLabel,omitempty"`  // nearest question container's label child
	Placeholder    string `json:"placeholder,omitempty"`
	Name           string `json:"name,omitempty"` // name or binding attribute
	DataLabel      string `json:"dataLabel,omitempty"`      // other label-ish data-* attributes
	PrecedingText  string `json:"precedingText,omitempty"`  // preceding sibling text
	Legend         string `json:"legend,omitempty"`         // fieldset legend
	Heading        string `json:"heading,omitempty"`        // nearest section heading
	Title          string `json:"title,omitempty"`
	ID             string `json:"id,omitempty"`
}

// maxLabelLen caps runaway labels from text-dense containers.
const maxLabelLen = 200

// Infer walks the fallback chain in order and returns the first usable
// label. Exhaustion yields field.SentinelLabel, never an error: a nameless
// control is still fillable, it just classifies with less confidence.
func Infer(sig Signals) string {
	stages := []string{
		clean(sig.LabelledBy),
		clean(sig.ExplicitLabel),
		clean(sig.AriaLabel),
		clean(sig.EnclosingLabel),
		clean(sig.SiblingLabel),
		Humanize(sig.AutomationID),
		clean(sig.QuestionLabel),
		clean(sig.Placeholder),
		Humanize(sig.Name),
		clean(sig.DataLabel),
		clean(sig.PrecedingText),
		clean(sig.Legend),
		clean(sig.Heading),
		clean(sig.Title),
		Humanize(sig.ID),
	}
	for _, s := range stages {
		if s != "" {
			return s
		}
	}
	return field.SentinelLabel
}

// clean normalizes raw DOM text: collapses whitespace, strips required
// markers, and caps the length.
func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, "*:  ")
	s = strings.TrimSpace(s)
	if len(s) > maxLabelLen {
		s = strings.TrimSpace(s[:maxLabelLen])
	}
	return s
}

// Humanize turns an automation identifier into readable words:
// "job_application[first_name]" -> "first name",
// "legalNameSection_firstName" -> "legal name section first name".
// Purely mechanical ids (numbers, single chars, uuid-ish blobs) come back
// empty so the chain moves on.
func Humanize(id string) string {
	if id == "" {
		return ""
	}
	// Prefer the innermost bracket segment of rails-style names.
	if i := strings.LastIndexByte(id, '['); i >= 0 {
		if j := strings.IndexByte(id[i:], ']'); j > 1 {
			id = id[i+1 : i+j]
		}
	}

	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	var prev rune
	for _, r := range id {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ' || r == '[' || r == ']':
			flush()
		case unicode.IsUpper(r) && prev != 0 && !unicode.IsUpper(prev):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
		prev = r
	}
	flush()

	// Drop purely numeric fragments and uuid-ish noise.
	kept := words[:0]
	for _, w := range words {
		if isNoiseWord(w) {
			continue
		}
		kept = append(kept, w)
	}
	if len(kept) == 0 {
		return ""
	}
	out := strings.Join(kept, " ")
	if len(out) < 2 {
		return ""
	}
	return clean(out)
}

func isNoiseWord(w string) bool {
	if w == "" {
		return true
	}
	digits := 0
	hexish := 0
	for _, r := range w {
		if r >= '0' && r <= '9' {
			digits++
		}
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') {
			hexish++
		}
	}
	if digits == len(w) {
		return true
	}
	// Long hex blobs are generated ids, not words.
	if len(w) >= 8 && hexish == len(w) && digits > 0 {
		return true
	}
	return false
}
