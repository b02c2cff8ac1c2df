// Package scrape walks every reachable document context of a page, invokes
// the in-page harvest script, and assembles one FieldDescriptor per
// canonical control.
package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/hiremate/formfill/field"
	"github.com/hiremate/formfill/internal/browser"
	"github.com/hiremate/formfill/internal/classify"
	"github.com/hiremate/formfill/internal/identity"
	"github.com/hiremate/formfill/internal/label"
	"github.com/hiremate/formfill/internal/popup"
)

// ErrNoFields is returned when a full pass over every context finds no
// fillable control. It is the only fatal discovery outcome.
var ErrNoFields = errors.New("scrape: no fillable fields found")

// Config tunes a Scraper.
type Config struct {
	// ExpandClosed opens closed custom dropdowns to harvest their options.
	// Discovery-only passes may disable it to stay strictly read-only.
	ExpandClosed bool

	// Poll bounds the option-expansion wait loop.
	Poll popup.PollConfig

	// SettleIdle is the DOM-quiet window waited before harvesting.
	SettleIdle time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.SettleIdle <= 0 {
		c.SettleIdle = 400 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Scraper discovers fields. Safe for reuse across tabs; platform
// classification is memoized per document.
type Scraper struct {
	cfg  Config
	memo *classify.PlatformMemo
}

// New creates a Scraper.
func New(cfg Config) *Scraper {
	cfg.defaults()
	return &Scraper{cfg: cfg, memo: classify.NewPlatformMemo()}
}

// rawCandidate mirrors the JSON emitted by harvestJS for one control.
type rawCandidate struct {
	Ref          int               `json:"ref"`
	Signals      label.Signals     `json:"signals"`
	Name         string            `json:"name"`
	ID           string            `json:"id"`
	Placeholder  string            `json:"placeholder"`
	Required     bool              `json:"required"`
	Disabled     bool              `json:"disabled"`
	Type         string            `json:"type"`
	Autocomplete string            `json:"autocomplete"`
	Options      []string          `json:"options"`
	RadioValue   string            `json:"radioValue"`
	Constraints  field.Constraints `json:"constraints"`
	Locators     []field.Locator   `json:"locators"`
}

// Scrape discovers every fillable field across the tab's main document and
// reachable iframe contexts, in document order. Descriptors carry live
// element handles valid for this session only.
func (s *Scraper) Scrape(ctx context.Context, tab *browser.Tab) ([]field.Descriptor, error) {
	tab.WaitSettled(ctx, s.cfg.SettleIdle)

	var out []field.Descriptor
	for _, fc := range tab.Frames(ctx) {
		fields, err := s.scrapeContext(ctx, tab, fc)
		if err != nil {
			s.cfg.Logger.Warn("scrape: context failed", "frame", fc.ID, "url", fc.URL, "error", err)
			continue
		}
		out = append(out, fields...)
	}

	// Re-number across contexts so indices are globally ordered.
	for i := range out {
		out[i].Index = i
	}

	if len(out) == 0 {
		return nil, ErrNoFields
	}

	s.cfg.Logger.Info("scrape: pass complete", "fields", len(out), "url", tab.PageURL)
	return out, nil
}

func (s *Scraper) scrapeContext(ctx context.Context, tab *browser.Tab, fc browser.FrameContext) ([]field.Descriptor, error) {
	markup, err := frameHTML(ctx, fc.Page)
	if err != nil {
		return nil, err
	}
	platform := s.memo.Detect(tab.TabID+"/"+fc.ID, fc.URL, markup)

	res, err := fc.Page.Context(ctx).Eval(harvestJS, string(platform))
	if err != nil {
		return nil, fmt.Errorf("scrape: harvest: %w", err)
	}

	var raws []rawCandidate
	if err := json.Unmarshal([]byte(res.Value.Str()), &raws); err != nil {
		return nil, fmt.Errorf("scrape: decode harvest: %w", err)
	}

	fields := make([]field.Descriptor, 0, len(raws))
	for _, raw := range raws {
		d := s.assemble(ctx, fc, platform, raw)
		fields = append(fields, d)
	}
	return fields, nil
}

// assemble turns one raw candidate into a descriptor: label inference,
// classification, option expansion, identity, and live-handle attachment.
func (s *Scraper) assemble(ctx context.Context, fc browser.FrameContext, platform classify.Platform, raw rawCandidate) field.Descriptor {
	inferred := label.Infer(raw.Signals)

	d := field.Descriptor{
		FrameID:     fc.ID,
		Label:       inferred,
		Name:        raw.Name,
		ID:          raw.ID,
		Placeholder: raw.Placeholder,
		Required:    raw.Required,
		Type:        field.Type(raw.Type),
		Options:     raw.Options,
		Constraints: raw.Constraints,
		Locators:    raw.Locators,
	}

	d.Category = classify.Semantic(
		raw.Name, raw.ID, inferred, raw.Placeholder,
		raw.Signals.AutomationID, raw.Signals.AriaLabel, raw.Autocomplete)

	if el, err := elementForRef(ctx, fc.Page, raw.Ref); err == nil {
		d.Live = el
	} else {
		s.cfg.Logger.Debug("scrape: live handle unavailable", "ref", raw.Ref, "error", err)
	}

	// Closed custom dropdowns embed no option text; transiently open them.
	if s.cfg.ExpandClosed && d.Type.IsSelectLike() && len(d.Options) == 0 && d.Live != nil {
		if opts := s.expand(ctx, d.Live); len(opts) > 0 {
			d.Options = opts
		}
	}

	d.Fingerprint = identity.Fingerprint(fingerprintLabel(d), d.Options, string(d.Type))
	return d
}

// expand opens a closed dropdown, polls for its option list, and always
// closes it again so a read-only pass leaves no visible trace. Phone
// country-code pickers are dropped wholesale.
func (s *Scraper) expand(ctx context.Context, el *rod.Element) []string {
	popup.Close(ctx, el) // dismiss anything another expansion left open
	opts, err := popup.Poll(ctx, el, s.cfg.Poll)
	popup.Close(ctx, el)
	if err != nil {
		s.cfg.Logger.Debug("scrape: option expansion failed", "error", err)
		return nil
	}

	texts := popup.Texts(opts)
	if popup.IsPhoneCodeList(texts) {
		return nil
	}
	return texts
}

// fingerprintLabel applies the fingerprint contract's label fallback:
// inferred label, else placeholder, else name. The sentinel label is
// treated as absence so unlabeled fields hash the way the backend expects.
func fingerprintLabel(d field.Descriptor) string {
	if d.Label != "" && d.Label != field.SentinelLabel {
		return d.Label
	}
	if d.Placeholder != "" {
		return d.Placeholder
	}
	return d.Name
}

func frameHTML(ctx context.Context, page *rod.Page) (string, error) {
	res, err := page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("scrape: frame html: %w", err)
	}
	return res.Value.Str(), nil
}

// elementForRef re-acquires the canonical element parked by the harvest
// script. Handles are session-scoped; descriptors crossing a context
// boundary lose them and fall back to locator resolution.
func elementForRef(ctx context.Context, page *rod.Page, ref int) (*rod.Element, error) {
	el, err := page.Context(ctx).ElementByJS(rod.Eval(`(i) => window.__ffReg[i]`, ref))
	if err != nil {
		return nil, fmt.Errorf("scrape: ref %d: %w", ref, err)
	}
	return el, nil
}
