// Package formfill discovers the fillable fields of a job-application page
// and fills them like a careful human would: real Chromium, realistic input
// events, one field at a time.
//
// The Engine is the public entry point. Discover opens a tab and emits
// field descriptors; Fill resolves values (explicit, cached, or remotely
// mapped) and runs a fill session over them.
package formfill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hiremate/formfill/cache"
	"github.com/hiremate/formfill/field"
	"github.com/hiremate/formfill/internal/browser"
	"github.com/hiremate/formfill/internal/config"
	"github.com/hiremate/formfill/internal/fill"
	"github.com/hiremate/formfill/internal/popup"
	"github.com/hiremate/formfill/internal/scrape"
	"github.com/hiremate/formfill/jobdesc"
	"github.com/hiremate/formfill/mapper"
	"github.com/hiremate/formfill/resumecheck"
)

// ErrSessionNotFound is returned for unknown or already-closed session IDs.
var ErrSessionNotFound = errors.New("formfill: session not found")

// ErrNoValues is returned when a fill request resolves no values at all.
var ErrNoValues = errors.New("formfill: no values to fill")

// Resume is the document attached to file-upload fields.
type Resume struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// FillRequest selects what goes into the discovered fields. Values may be
// given explicitly (keyed like Descriptor.Key); any field without an
// explicit value is resolved from the cache and then the remote mapper,
// when those are configured.
type FillRequest struct {
	Values  map[string]fill.Value `json:"values,omitempty"`
	Profile json.RawMessage       `json:"profile,omitempty"`
	Resume  *Resume               `json:"resume,omitempty"`
}

// Engine owns the browser and the active sessions.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger

	mgr      *browser.Manager
	scraper  *scrape.Scraper  // discovery pass, expands closed dropdowns
	rescaper *scrape.Scraper  // fingerprint-fallback pass, strictly read-only
	extract  *jobdesc.Extractor

	store  *cache.Store   // optional
	remote *mapper.Client // optional

	onProgress ProgressFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithCache attaches a local mapping cache.
func WithCache(s *cache.Store) Option { return func(e *Engine) { e.store = s } }

// WithMapper attaches the remote mapping client.
func WithMapper(c *mapper.Client) Option { return func(e *Engine) { e.remote = c } }

// WithProgress sets the progress sink for all sessions.
func WithProgress(fn ProgressFunc) Option { return func(e *Engine) { e.onProgress = fn } }

// New creates an Engine. Call Start before discovering.
func New(cfg *config.Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		cfg:      cfg,
		logger:   slog.Default(),
		extract:  jobdesc.New(),
		sessions: make(map[string]*Session),
	}
	for _, o := range opts {
		o(e)
	}

	mode := browser.ModeHeadless
	if cfg.Browser.Mode == "headful" {
		mode = browser.ModeHeadful
	}
	e.mgr = browser.NewManager(browser.Config{
		RemoteURL:        cfg.Browser.Remote,
		Mode:             mode,
		XvfbDisplay:      cfg.Browser.XvfbDisplay,
		ResourceBlocking: cfg.Browser.ResourceBlocking,
		NavTimeout:       cfg.Browser.NavTimeout,
		Logger:           e.logger,
	})
	e.scraper = scrape.New(scrape.Config{ExpandClosed: true, Logger: e.logger})
	e.rescaper = scrape.New(scrape.Config{ExpandClosed: false, Logger: e.logger})
	return e
}

// Start launches or attaches the browser.
func (e *Engine) Start(ctx context.Context) error {
	if _, err := e.mgr.Start(ctx); err != nil {
		return fmt.Errorf("formfill: start browser: %w", err)
	}
	return nil
}

// Close tears down every session and the browser.
func (e *Engine) Close() error {
	e.mu.Lock()
	for id, s := range e.sessions {
		s.close()
		delete(e.sessions, id)
	}
	e.mu.Unlock()
	return e.mgr.Close()
}

// Session is one discovered page plus its fill state.
type Session struct {
	ID             string             `json:"id"`
	URL            string             `json:"url"`
	Fields         []field.Descriptor `json:"fields"`
	JobDescription string             `json:"job_description,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`

	tab  *browser.Tab
	mu   sync.Mutex
	fill *fill.Session
	last *fill.Result
}

// Discover opens the URL in a fresh tab, discovers its fields, and extracts
// the posting text. The returned session stays open for a later Fill.
func (e *Engine) Discover(ctx context.Context, pageURL string) (*Session, error) {
	id := "ses_" + uuid.Must(uuid.NewV7()).String()

	tab, err := browser.OpenTab(ctx, e.mgr, pageURL, id)
	if err != nil {
		return nil, fmt.Errorf("formfill: open %s: %w", pageURL, err)
	}

	fields, err := e.scraper.Scrape(ctx, tab)
	if err != nil {
		tab.Close()
		return nil, err
	}

	s := &Session{
		ID:        id,
		URL:       pageURL,
		Fields:    fields,
		CreatedAt: time.Now(),
		tab:       tab,
	}

	if html, err := tab.HTML(ctx); err == nil {
		if md, err := e.extract.Extract(html); err == nil {
			s.JobDescription = md
		}
	}

	e.mu.Lock()
	e.sessions[id] = s
	e.mu.Unlock()

	e.logger.Info("formfill: discovered", "session", id, "url", pageURL, "fields", len(fields))
	return s, nil
}

// Session returns an active session.
func (e *Engine) Session(id string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Fill resolves values for the session's fields and runs the fill.
func (e *Engine) Fill(ctx context.Context, sessionID string, req FillRequest) (*fill.Result, error) {
	s, err := e.Session(sessionID)
	if err != nil {
		return nil, err
	}

	values, err := e.resolveValues(ctx, s, req)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNoValues
	}

	resolver := &fill.Resolver{
		Page:   s.tab.Page,
		Logger: e.logger,
		Rescan: func(ctx context.Context) ([]field.Descriptor, error) {
			return e.rescaper.Scrape(ctx, s.tab)
		},
	}
	fs := fill.NewSession(s.tab.Page, resolver, fill.SessionConfig{
		MinFieldDelay: e.cfg.Fill.MinFieldDelay,
		MaxFieldDelay: e.cfg.Fill.MaxFieldDelay,
		Strategies: fill.Strategies{
			MinKeyDelay: e.cfg.Fill.MinKeyDelay,
			MaxKeyDelay: e.cfg.Fill.MaxKeyDelay,
			Poll:        popup.PollConfig{},
			Logger:      e.logger,
		},
		Logger: e.logger,
		OnProgress: func(p fill.Progress) {
			if e.onProgress != nil {
				e.onProgress(sessionID, p)
			}
		},
	})

	s.mu.Lock()
	s.fill = fs
	s.mu.Unlock()

	res, err := fs.Run(ctx, s.Fields, values)

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res, err
}

// resolveValues merges explicit values with cached and remotely mapped
// ones. Resolution order per field: explicit, resume payload (file fields),
// cache hit, remote mapper. Mapper answers are written back to the cache.
func (e *Engine) resolveValues(ctx context.Context, s *Session, req FillRequest) (map[string]fill.Value, error) {
	values := make(map[string]fill.Value, len(s.Fields))
	for k, v := range req.Values {
		values[k] = v
	}

	if req.Resume != nil {
		if _, err := resumecheck.Validate(req.Resume.Name, req.Resume.Data); err != nil {
			return nil, fmt.Errorf("formfill: resume rejected: %w", err)
		}
		for i := range s.Fields {
			d := &s.Fields[i]
			if d.Type != field.TypeFile {
				continue
			}
			if _, ok := values[d.Key()]; !ok {
				values[d.Key()] = fill.Value{FileName: req.Resume.Name, FileData: req.Resume.Data}
			}
		}
	}

	var profileHash string
	if len(req.Profile) > 0 {
		profileHash = cache.ProfileHash(req.Profile)
	}

	var unresolved []field.Descriptor
	for i := range s.Fields {
		d := s.Fields[i]
		if _, ok := values[d.Key()]; ok || d.Type == field.TypeFile {
			continue
		}
		if e.store != nil && profileHash != "" {
			if v, hit, err := e.store.Get(ctx, d.Fingerprint, profileHash); err == nil && hit {
				values[d.Key()] = fill.Value{Text: v}
				continue
			}
		}
		unresolved = append(unresolved, d)
	}

	if len(unresolved) > 0 && e.remote != nil && len(req.Profile) > 0 {
		assignments, err := e.remote.Map(ctx, mapper.Request{
			Fields:         unresolved,
			Profile:        req.Profile,
			JobDescription: s.JobDescription,
		})
		if err != nil {
			return nil, err
		}
		for i := range unresolved {
			d := unresolved[i]
			a, ok := assignments[d.Key()]
			if !ok || a.Value == "" {
				continue
			}
			values[d.Key()] = fill.Value{Text: a.Value}
			if e.store != nil && profileHash != "" {
				if err := e.store.Put(ctx, d.Fingerprint, d.Label, a.Value, profileHash); err != nil {
					e.logger.Warn("formfill: cache write failed", "error", err)
				}
			}
		}
	}

	return values, nil
}

// Abort stops the session's running fill before its next field.
func (e *Engine) Abort(sessionID string) error {
	s, err := e.Session(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fill == nil {
		return fmt.Errorf("formfill: session %s has no running fill", sessionID)
	}
	s.fill.Abort()
	return nil
}

// SkipCurrent skips the next attempted field of the running fill.
func (e *Engine) SkipCurrent(sessionID string) error {
	s, err := e.Session(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fill == nil {
		return fmt.Errorf("formfill: session %s has no running fill", sessionID)
	}
	s.fill.SkipCurrent()
	return nil
}

// Status reports the session's fill state and last result, if any.
func (e *Engine) Status(sessionID string) (fill.State, *fill.Result, error) {
	s, err := e.Session(sessionID)
	if err != nil {
		return fill.StateIdle, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fill == nil {
		return fill.StateIdle, nil, nil
	}
	return s.fill.State(), s.last, nil
}

// CloseSession tears down one session and its tab.
func (e *Engine) CloseSession(sessionID string) error {
	e.mu.Lock()
	s, ok := e.sessions[sessionID]
	delete(e.sessions, sessionID)
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.close()
	return nil
}

func (s *Session) close() {
	if s.tab != nil {
		_ = s.tab.Close()
	}
}
