package assistant

import "errors"

// Sentinel errors mirroring spec.md §7's Assistant-Client-facing Kinds.
// Wrapped with fmt.Errorf("%w: ...") at each call site so callers can
// still errors.Is against them while getting a human-readable detail.
var (
	ErrFailed           = errors.New("assistant: failed")
	ErrHermitFailed     = errors.New("assistant: request failed")
	ErrHermitBusy       = errors.New("assistant: busy")
	ErrHermitDead       = errors.New("assistant: unreachable")
	errUnexpectedStatus = errors.New("assistant: unexpected status")
)
