package fill

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"

	"github.com/hiremate/formfill/field"
	"github.com/hiremate/formfill/internal/identity"
)

// Resolver turns a descriptor back into a live element, trying three
// progressively heavier sources:
//
//  1. the descriptor's live handle, if it survived re-renders
//  2. the ranked locator bundle
//  3. a fresh content-fingerprint scan of the page (Rescan), matching the
//     descriptor's fingerprint against newly discovered fields
//
// The fingerprint stage is what lets descriptors minted in one execution
// context be filled in another, where handles and even DOM structure may
// have changed.
type Resolver struct {
	Page *rod.Page

	// Rescan re-discovers fields for the fingerprint fallback. Optional;
	// when nil resolution stops after the locator bundle.
	Rescan func(ctx context.Context) ([]field.Descriptor, error)

	Logger *slog.Logger
}

// Element resolves the descriptor to a live element or ErrElementNotFound.
func (r *Resolver) Element(ctx context.Context, d field.Descriptor) (*rod.Element, error) {
	if r.Logger == nil {
		r.Logger = slog.Default()
	}

	if d.Live != nil {
		if ok, err := evalBool(ctx, d.Live, isConnectedJS); err == nil && ok {
			return d.Live, nil
		}
		r.Logger.Debug("fill: live handle stale", "field", d.Label)
	}

	if el, err := identity.Resolve(ctx, r.Page, d.Locators); err == nil {
		return el, nil
	}

	if r.Rescan != nil && d.Fingerprint != "" {
		if el := r.byFingerprint(ctx, d.Fingerprint); el != nil {
			r.Logger.Debug("fill: resolved via fingerprint scan", "field", d.Label)
			return el, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrElementNotFound, d.Label)
}

func (r *Resolver) byFingerprint(ctx context.Context, fp string) *rod.Element {
	fields, err := r.Rescan(ctx)
	if err != nil {
		r.Logger.Debug("fill: fingerprint rescan failed", "error", err)
		return nil
	}
	for i := range fields {
		if fields[i].Fingerprint == fp && fields[i].Live != nil {
			return fields[i].Live
		}
	}
	return nil
}
