package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/hiremate/formfill/field"
)

// ErrNotResolved means no bundled expression currently resolves to exactly
// one element. Callers fall back to a fingerprint scan before giving up.
var ErrNotResolved = errors.New("identity: locator bundle did not resolve")

// Resolve walks the bundle in confidence order and returns the element of
// the first expression that matches exactly one node right now. A bundle
// entry that has gone stale (zero or multiple matches after a re-render) is
// skipped, not fatal: later entries are independent.
func Resolve(ctx context.Context, page *rod.Page, locators []field.Locator) (*rod.Element, error) {
	for _, loc := range locators {
		els, err := page.Context(ctx).Elements(loc.Expr)
		if err != nil {
			continue
		}
		if len(els) == 1 {
			return els[0], nil
		}
	}
	return nil, fmt.Errorf("%w (%d candidates tried)", ErrNotResolved, len(locators))
}

// Validate re-checks that every bundled expression still resolves to
// exactly one element. Discovery calls it right after building a bundle;
// it exists so the build-time uniqueness invariant is observable.
func Validate(ctx context.Context, page *rod.Page, locators []field.Locator) error {
	for _, loc := range locators {
		els, err := page.Context(ctx).Elements(loc.Expr)
		if err != nil {
			return fmt.Errorf("identity: %s %q: %w", loc.Kind, loc.Expr, err)
		}
		if len(els) != 1 {
			return fmt.Errorf("identity: %s %q matches %d elements, want 1", loc.Kind, loc.Expr, len(els))
		}
	}
	return nil
}
