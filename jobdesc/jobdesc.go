// Package jobdesc extracts the job posting text out of an application page.
// The text rides along in the mapping payload so the service can answer
// role-specific custom questions; no interpretation happens here.
//
// Extraction picks the densest plausible content container, sanitizes it,
// and converts it to markdown.
package jobdesc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// MaxLen caps the extracted markdown. Postings longer than this carry no
// extra signal for mapping.
const MaxLen = 20_000

// Extractor converts raw page HTML into posting markdown. Safe for reuse.
type Extractor struct {
	policy *bluemonday.Policy
	conv   *converter.Converter
}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{
		policy: bluemonday.UGCPolicy(),
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Extract returns the posting text as markdown, or "" when no container
// scores above the floor (a page with no recognizable description is not
// an error; the mapper just gets less context).
func (e *Extractor) Extract(pageHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return "", fmt.Errorf("jobdesc: parse: %w", err)
	}

	best := bestContainer(doc)
	if best == nil {
		return "", nil
	}

	var sb strings.Builder
	if err := html.Render(&sb, best); err != nil {
		return "", fmt.Errorf("jobdesc: render: %w", err)
	}

	clean := e.policy.Sanitize(sb.String())
	md, err := e.conv.ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("jobdesc: markdown: %w", err)
	}

	md = collapseBlank(strings.TrimSpace(md))
	if len(md) > MaxLen {
		md = md[:MaxLen]
	}
	return md, nil
}

var (
	descHint  = regexp.MustCompile(`(?i)description|posting|job[-_]?detail|about[-_]?(the[-_]?)?(role|job|position)|content`)
	noiseHint = regexp.MustCompile(`(?i)nav|footer|header|sidebar|cookie|banner|menu`)
)

// bestContainer scores every block-level candidate by visible text mass,
// with a bonus for description-flavored class/id attributes and a penalty
// for chrome. Forms are excluded: the application form itself is not the
// posting.
func bestContainer(doc *html.Node) *html.Node {
	var best *html.Node
	bestScore := 0

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "form", "nav", "footer", "header":
				return
			case "div", "section", "article", "main":
				if s := scoreNode(n); s > bestScore {
					best, bestScore = n, s
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	// Floor: a real posting has at least a few hundred characters.
	if bestScore < 300 {
		return nil
	}
	return best
}

func scoreNode(n *html.Node) int {
	attrs := attrText(n)
	if noiseHint.MatchString(attrs) {
		return 0
	}

	score := len(visibleText(n))
	if descHint.MatchString(attrs) {
		score = score * 3 / 2
	}
	return score
}

func attrText(n *html.Node) string {
	var parts []string
	for _, a := range n.Attr {
		if a.Key == "class" || a.Key == "id" || a.Key == "data-automation-id" {
			parts = append(parts, a.Val)
		}
	}
	return strings.Join(parts, " ")
}

func visibleText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "form", "noscript":
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

func collapseBlank(s string) string {
	return blankRuns.ReplaceAllString(s, "\n\n")
}
