package fill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"

	"github.com/hiremate/formfill/field"
)

// State is the lifecycle of a fill session. Transitions are one-way:
// Idle -> Running -> Completed | Aborted.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Progress is emitted once per attempted field.
type Progress struct {
	Index int    `json:"index"`
	Total int    `json:"total"`
	Label string `json:"label"`
	// Err is nil for a successful fill. Skipped and radio-mismatched
	// fields never emit progress.
	Err error `json:"-"`
}

// FailedField names a field the session could not fill. Labels, not
// indices: the consumer shows these to a human.
type FailedField struct {
	Label string `json:"label"`
}

// Result summarizes a finished session. A session that was aborted or
// cancelled still returns the partial result; work already done on the page
// is never rolled back.
type Result struct {
	State           State         `json:"state"`
	FilledCount     int           `json:"filled_count"`
	FileUploadCount int           `json:"file_upload_count"`
	FailedCount     int           `json:"failed_count"`
	FailedFields    []FailedField `json:"failed_fields,omitempty"`
}

// SessionConfig tunes a Session.
type SessionConfig struct {
	// MinFieldDelay and MaxFieldDelay bound the randomized pause between
	// fields. Defaults: 300ms and 900ms.
	MinFieldDelay time.Duration
	MaxFieldDelay time.Duration

	// OnProgress, when set, is called after every attempted field.
	OnProgress func(Progress)

	Strategies Strategies

	Logger *slog.Logger
}

func (c *SessionConfig) defaults() {
	if c.MinFieldDelay <= 0 {
		c.MinFieldDelay = 300 * time.Millisecond
	}
	if c.MaxFieldDelay <= c.MinFieldDelay {
		c.MaxFieldDelay = c.MinFieldDelay + 600*time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Session fills a page's fields one at a time. Abort and SkipCurrent are
// safe to call from other goroutines while Run is in flight; everything
// else belongs to the running goroutine.
type Session struct {
	cfg      SessionConfig
	page     *rod.Page
	resolver *Resolver

	state atomic.Int32
	abort atomic.Bool
	skip  atomic.Bool

	// fillFn is the per-field unit of work. Tests substitute it to exercise
	// the session loop without a browser.
	fillFn func(ctx context.Context, d field.Descriptor, v Value) (*rod.Element, error)
}

// NewSession creates a Session over one page.
func NewSession(page *rod.Page, resolver *Resolver, cfg SessionConfig) *Session {
	cfg.defaults()
	s := &Session{cfg: cfg, page: page, resolver: resolver}
	s.fillFn = s.fillOne
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Abort requests the session stop before the next field. Fields already
// filled stay filled.
func (s *Session) Abort() {
	s.abort.Store(true)
}

// SkipCurrent requests the next attempted field be skipped. The flag is
// consumed by exactly one field.
func (s *Session) SkipCurrent() {
	s.skip.Store(true)
}

// Run fills every descriptor that has a value, in index order. Values are
// keyed by Descriptor.Key. Errors on individual fields are contained:
// they are flagged on the page, counted, and reported, but only abort or
// context cancellation ends the session early.
func (s *Session) Run(ctx context.Context, fields []field.Descriptor, values map[string]Value) (*Result, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, fmt.Errorf("fill: session already started (state %s)", s.State())
	}

	res := &Result{}
	total := len(fields)

	for i := range fields {
		d := fields[i]

		if s.abort.Load() {
			s.cfg.Logger.Info("fill: session aborted", "at_field", d.Label)
			break
		}
		if err := ctx.Err(); err != nil {
			s.state.Store(int32(StateAborted))
			res.State = StateAborted
			return res, err
		}

		v, ok := values[d.Key()]
		if !ok {
			continue
		}
		if s.skip.CompareAndSwap(true, false) {
			s.cfg.Logger.Info("fill: field skipped on request", "field", d.Label)
			continue
		}

		el, err := s.fillFn(ctx, d, v)
		switch {
		case err == nil:
			res.FilledCount++
			if d.Type == field.TypeFile {
				res.FileUploadCount++
			}
			s.emit(Progress{Index: i, Total: total, Label: d.Label})

		case errors.Is(err, ErrRadioMismatch):
			// Not this group member; another candidate carries the value.

		default:
			s.cfg.Logger.Warn("fill: field failed", "field", d.Label, "type", d.Type, "error", err)
			res.FailedCount++
			res.FailedFields = append(res.FailedFields, FailedField{Label: d.Label})
			if el != nil {
				_, _ = el.Context(ctx).Eval(flagFailedJS)
			}
			s.emit(Progress{Index: i, Total: total, Label: d.Label, Err: err})
		}

		if i < total-1 {
			if err := s.pause(ctx); err != nil {
				s.state.Store(int32(StateAborted))
				res.State = StateAborted
				return res, err
			}
		}
	}

	if s.abort.Load() {
		s.state.Store(int32(StateAborted))
		res.State = StateAborted
	} else {
		s.state.Store(int32(StateCompleted))
		res.State = StateCompleted
	}

	s.cfg.Logger.Info("fill: session finished",
		"state", res.State, "filled", res.FilledCount,
		"uploads", res.FileUploadCount, "failed", res.FailedCount)
	return res, nil
}

// fillOne resolves and fills a single field. Panics from the automation
// layer are contained here so one pathological widget cannot take down the
// session.
func (s *Session) fillOne(ctx context.Context, d field.Descriptor, v Value) (el *rod.Element, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fill: panic on %q: %v", d.Label, r)
		}
	}()

	el, err = s.resolver.Element(ctx, d)
	if err != nil {
		return nil, err
	}
	return el, s.cfg.Strategies.Apply(ctx, s.page, el, d, v)
}

func (s *Session) emit(p Progress) {
	if s.cfg.OnProgress != nil {
		s.cfg.OnProgress(p)
	}
}

// pause sleeps a randomized inter-field interval, honoring cancellation.
func (s *Session) pause(ctx context.Context) error {
	span := s.cfg.MaxFieldDelay - s.cfg.MinFieldDelay
	d := s.cfg.MinFieldDelay + rand.N(span)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
