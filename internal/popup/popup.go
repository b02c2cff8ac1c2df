// Package popup opens, reads, and closes the floating option lists behind
// custom select widgets. Discovery uses it to harvest options from closed
// dropdowns that embed no option text; the combobox fill strategy uses the
// same multi-source lookup to find the option to click.
package popup

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/go-rod/rod"
)

// Option is one visible option node. Ref indexes window.__ffOptReg in the
// page, letting a fill strategy re-acquire the node to click it.
type Option struct {
	Text string `json:"text"`
	Ref  int    `json:"ref"`
}

// PollConfig bounds the open-and-wait loop. Retries are attempt-counted,
// not wall-clock, so a slow but live page eventually succeeds.
type PollConfig struct {
	Attempts int           // max poll attempts. Default: 10.
	Backoff  time.Duration // base delay between attempts, grows linearly. Default: 120ms.
}

func (c *PollConfig) defaults() {
	if c.Attempts <= 0 {
		c.Attempts = 10
	}
	if c.Backoff <= 0 {
		c.Backoff = 120 * time.Millisecond
	}
}

// openJS synthesizes the interaction that opens a closed dropdown: scroll
// into view, focus, and a full mousedown/mouseup/click burst. Frameworks
// differ on which of those they listen to.
const openJS = `() => {
	this.scrollIntoView({ block: 'center', inline: 'nearest' });
	this.focus();
	for (const type of ['mousedown', 'mouseup', 'click']) {
		this.dispatchEvent(new MouseEvent(type, { bubbles: true, cancelable: true, view: window }));
	}
}`

// closeJS closes whatever popup is open: Escape on the control, then a
// click on a neutral point. Always dispatched, so a read-only pass leaves
// no visible side effect.
const closeJS = `() => {
	this.dispatchEvent(new KeyboardEvent('keydown', { key: 'Escape', bubbles: true }));
	this.dispatchEvent(new KeyboardEvent('keyup', { key: 'Escape', bubbles: true }));
	this.blur();
	document.body.dispatchEvent(new MouseEvent('click', { bubbles: true }));
}`

// collectJS finds visible option nodes for the control, in escalating
// scope: the controls/owns relation first, then any visible listbox, then
// any visibly rendered option-like node document-wide (catching popups that
// frameworks portal to document.body).
const collectJS = `() => {
	const visible = (el) => {
		if (!el.isConnected) return false;
		const r = el.getBoundingClientRect();
		if (r.width === 0 && r.height === 0) return false;
		const cs = getComputedStyle(el);
		return cs.display !== 'none' && cs.visibility !== 'hidden';
	};
	const txt = (el) => (el.textContent || '').replace(/\s+/g, ' ').trim();

	const gather = (nodes) => {
		const out = [];
		for (const n of nodes) {
			if (!visible(n)) continue;
			const s = txt(n);
			if (s) out.push(n);
		}
		return out;
	};

	let found = [];
	const ids = (this.getAttribute('aria-controls') || this.getAttribute('aria-owns') || '')
		.split(/\s+/).filter(Boolean);
	for (const id of ids) {
		const box = document.getElementById(id);
		if (box) found = found.concat(gather(box.querySelectorAll('[role="option"],option,li')));
	}

	if (found.length === 0) {
		for (const box of document.querySelectorAll('[role="listbox"]')) {
			if (!visible(box)) continue;
			found = found.concat(gather(box.querySelectorAll('[role="option"],li')));
		}
	}

	if (found.length === 0) {
		found = gather(document.querySelectorAll(
			'[role="option"],.select__option,.select2-results__option,li[class*="option"],[class*="menu"] [class*="item"]'));
	}

	window.__ffOptReg = found;
	return JSON.stringify(found.map((n, i) => ({ text: (n.textContent || '').replace(/\s+/g, ' ').trim(), ref: i })));
}`

// Open opens the control's popup.
func Open(ctx context.Context, el *rod.Element) error {
	if _, err := el.Context(ctx).Eval(openJS); err != nil {
		return fmt.Errorf("popup: open: %w", err)
	}
	return nil
}

// Close dismisses any popup the control opened. Best-effort: the page may
// already have closed it.
func Close(ctx context.Context, el *rod.Element) {
	_, _ = el.Context(ctx).Eval(closeJS)
}

// Collect reads the currently visible options for the control.
func Collect(ctx context.Context, el *rod.Element) ([]Option, error) {
	res, err := el.Context(ctx).Eval(collectJS)
	if err != nil {
		return nil, fmt.Errorf("popup: collect: %w", err)
	}
	var opts []Option
	if err := json.Unmarshal([]byte(res.Value.Str()), &opts); err != nil {
		return nil, fmt.Errorf("popup: decode options: %w", err)
	}
	return opts, nil
}

// Poll opens the popup and polls for visible options with bounded attempts
// and linear backoff. The caller owns closing the popup afterwards.
func Poll(ctx context.Context, el *rod.Element, cfg PollConfig) ([]Option, error) {
	if err := Open(ctx, el); err != nil {
		return nil, err
	}
	return PollOpened(ctx, el, cfg)
}

// PollOpened polls an already-open popup without dispatching the open
// sequence again. Toggle-style triggers close on a second click, which
// would discard any filtering the caller typed after opening.
func PollOpened(ctx context.Context, el *rod.Element, cfg PollConfig) ([]Option, error) {
	return pollOptions(ctx, cfg, func() ([]Option, error) {
		return Collect(ctx, el)
	})
}

func pollOptions(ctx context.Context, cfg PollConfig, collect func() ([]Option, error)) ([]Option, error) {
	cfg.defaults()

	var last error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.Backoff * time.Duration(attempt)):
		}

		opts, err := collect()
		if err != nil {
			last = err
			continue
		}
		if len(opts) > 0 {
			return opts, nil
		}
	}
	if last != nil {
		return nil, last
	}
	return nil, fmt.Errorf("popup: no options appeared after %d attempts", cfg.Attempts)
}

// ElementForRef re-acquires the live option node parked by the last Collect.
func ElementForRef(ctx context.Context, page *rod.Page, ref int) (*rod.Element, error) {
	el, err := page.Context(ctx).ElementByJS(rod.Eval(`(i) => window.__ffOptReg[i]`, ref))
	if err != nil {
		return nil, fmt.Errorf("popup: option ref %d: %w", ref, err)
	}
	return el, nil
}

var plusDigits = regexp.MustCompile(`^\+\d`)

// IsPhoneCodeList reports whether a harvested option list is a phone
// country-code picker: at least 15 options with 60%+ leading "+digits".
// Those lists are enormous and never map to profile values, so discovery
// drops them.
func IsPhoneCodeList(texts []string) bool {
	if len(texts) < 15 {
		return false
	}
	n := 0
	for _, t := range texts {
		if plusDigits.MatchString(t) {
			n++
		}
	}
	return float64(n) >= 0.6*float64(len(texts))
}

// Texts projects option texts.
func Texts(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Text
	}
	return out
}
