// Package classify tags pages with their hosting ATS platform and assigns
// semantic categories to discovered fields.
package classify

import (
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Platform identifies the recruiting platform hosting the form. Unknown
// platforms fall back to PlatformGeneric, which is fully functional; a
// platform tag only unlocks extra label heuristics.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformLinkedIn   Platform = "linkedin"
	PlatformGeneric    Platform = "generic"
)

// urlSignals maps URL substrings to platforms. Checked before markup since
// hosted ATS domains are unambiguous.
var urlSignals = []struct {
	needle   string
	platform Platform
}{
	{"greenhouse.io", PlatformGreenhouse},
	{"jobs.lever.co", PlatformLever},
	{"lever.co/", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"myworkdaysite.com", PlatformWorkday},
	{"linkedin.com", PlatformLinkedIn},
}

// DetectPlatform classifies a page from its navigation URL and markup.
// It never fails: anything unrecognized is PlatformGeneric.
func DetectPlatform(pageURL, markup string) Platform {
	lowered := strings.ToLower(pageURL)
	for _, s := range urlSignals {
		if strings.Contains(lowered, s.needle) {
			return s.platform
		}
	}
	if markup == "" {
		return PlatformGeneric
	}
	return detectFromMarkup(markup)
}

// detectFromMarkup walks the parsed document looking for platform-specific
// attributes. Attribute-level inspection avoids false positives from page
// text or inline scripts that merely mention a platform name.
func detectFromMarkup(markup string) Platform {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return PlatformGeneric
	}

	found := PlatformGeneric
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				switch a.Key {
				case "data-automation-id":
					found = PlatformWorkday
					return true
				case "data-provides":
					found = PlatformGreenhouse
					return true
				case "id":
					if a.Val == "grnhse_app" || strings.HasPrefix(a.Val, "grnhse_") {
						found = PlatformGreenhouse
						return true
					}
				case "class":
					cls := a.Val
					if strings.Contains(cls, "application-field") || strings.Contains(cls, "application-label") {
						found = PlatformLever
						return true
					}
					if strings.Contains(cls, "jobs-easy-apply") || strings.Contains(cls, "artdeco-modal") {
						found = PlatformLinkedIn
						return true
					}
				case "name":
					if strings.HasPrefix(a.Val, "job_application[") {
						found = PlatformGreenhouse
						return true
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return found
}

// PlatformMemo caches classification per document so repeated scrapes of the
// same page skip re-parsing the markup.
type PlatformMemo struct {
	mu    sync.Mutex
	byDoc map[string]Platform
}

// NewPlatformMemo creates an empty memo.
func NewPlatformMemo() *PlatformMemo {
	return &PlatformMemo{byDoc: make(map[string]Platform)}
}

// Detect returns the memoized platform for docID, computing it on first use.
func (m *PlatformMemo) Detect(docID, pageURL, markup string) Platform {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byDoc[docID]; ok {
		return p
	}
	p := DetectPlatform(pageURL, markup)
	m.byDoc[docID] = p
	return p
}
