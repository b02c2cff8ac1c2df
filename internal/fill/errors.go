package fill

import "errors"

// The fill error taxonomy. Every one of these recovers locally: the session
// records the field and moves on. Only an explicit abort ends a session
// early.
var (
	// ErrElementNotFound: live handle, locator bundle, and fingerprint scan
	// all failed to produce the element.
	ErrElementNotFound = errors.New("fill: element not found")

	// ErrDisabled: the control resolved but refuses input.
	ErrDisabled = errors.New("fill: element disabled")

	// ErrOptionNotFound: the fuzzy chain (including the "Other" fallback for
	// school/company fields) matched nothing.
	ErrOptionNotFound = errors.New("fill: no matching option")

	// ErrRadioMismatch: this radio candidate's value is not the desired one.
	// Expected, not a failure — a radio group yields N candidates and only
	// one should match.
	ErrRadioMismatch = errors.New("fill: radio value mismatch")

	// ErrUnhandledType: no strategy exists for the descriptor's type.
	// Logged and recorded, never propagated.
	ErrUnhandledType = errors.New("fill: unhandled field type")

	// ErrVerifyFailed: the strategy ran but the post-condition check shows
	// the value did not stick.
	ErrVerifyFailed = errors.New("fill: post-condition verification failed")
)
