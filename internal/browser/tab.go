package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
)

// Tab wraps a Rod page holding one application form, with the frame handles
// discovery needs to reach embedded contexts.
type Tab struct {
	Page    *rod.Page
	PageURL string
	TabID   string
}

// OpenTab creates a stealth page, applies resource blocking, and navigates
// to the application URL.
func OpenTab(ctx context.Context, mgr *Manager, pageURL, tabID string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	if len(mgr.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(page, mgr.cfg.ResourceBlocking); err != nil {
			mgr.cfg.Logger.Warn("browser: resource blocking failed", "error", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, mgr.cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		mgr.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{Page: page, PageURL: pageURL, TabID: tabID}, nil
}

// AttachTab wraps an existing page (e.g. one the user already navigated)
// without touching its navigation state.
func AttachTab(page *rod.Page, tabID string) *Tab {
	info, _ := page.Info()
	url := ""
	if info != nil {
		url = info.URL
	}
	return &Tab{Page: page, PageURL: url, TabID: tabID}
}

// FrameContext is one reachable document context: the main document or a
// same-process iframe. Discovery scrapes each context independently.
type FrameContext struct {
	ID   string
	Page *rod.Page // the frame's page handle; main document uses the tab page
	URL  string
}

// Frames enumerates the main document plus every reachable iframe context.
// Cross-origin frames Chromium refuses to hand over are skipped with a log
// line rather than failing the pass.
func (t *Tab) Frames(ctx context.Context) []FrameContext {
	out := []FrameContext{{ID: "main", Page: t.Page, URL: t.PageURL}}

	iframes, err := t.Page.Context(ctx).Elements("iframe")
	if err != nil {
		return out
	}
	for i, el := range iframes {
		fp, err := el.Frame()
		if err != nil {
			continue
		}
		src, _ := el.Attribute("src")
		url := ""
		if src != nil {
			url = *src
		}
		// Skip obvious non-form frames (trackers, ads, captcha widgets).
		if isNoiseFrame(url) {
			continue
		}
		out = append(out, FrameContext{
			ID:   fmt.Sprintf("frame-%d", i),
			Page: fp,
			URL:  url,
		})
	}
	return out
}

func isNoiseFrame(url string) bool {
	lowered := strings.ToLower(url)
	for _, needle := range []string{"doubleclick", "googletagmanager", "google-analytics", "recaptcha", "hcaptcha", "youtube.com"} {
		if strings.Contains(lowered, needle) {
			return true
		}
	}
	return false
}

// HTML serialises the document's outer HTML, used for platform
// classification.
func (t *Tab) HTML(ctx context.Context) (string, error) {
	res, err := t.Page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return res.Value.Str(), nil
}

// WaitSettled waits for the render to go quiet after load or interaction:
// domcontentloaded plus a bounded idle window. Dynamic ATS pages keep
// mutating well past onload, so this is best-effort, not a guarantee.
func (t *Tab) WaitSettled(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		idle = 500 * time.Millisecond
	}
	waiter := t.Page.Context(ctx).Timeout(idle * 4)
	_ = waiter.WaitDOMStable(idle, 0.1)
}

// Activate brings the tab to front. Some frameworks throttle rendering of
// background tabs, which stalls option-list polling.
func (t *Tab) Activate(ctx context.Context) {
	_, _ = t.Page.Context(ctx).Activate()
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
