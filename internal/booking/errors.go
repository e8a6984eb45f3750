// Package booking owns the reservation lifecycle: the status state
// machine, the conflict-critical request path, and the owner dashboard
// counters. Handlers branch on the sentinel errors below to drive HTTP
// responses and user messaging.
package booking

import "errors"

// Conflict errors. These are expected, recoverable outcomes that callers
// must branch on rather than treat as failures.
var (
	// ErrDateAlreadyHeld is returned when the requested date is already
	// held by an active reservation on the same venue.
	ErrDateAlreadyHeld = errors.New("date already held")

	// ErrInvalidTransition is returned for any (status, action) pair not
	// in the transition table, including races where a concurrent writer
	// changed the status first.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrTerminalState is returned for any action on a rejected,
	// cancelled or completed reservation.
	ErrTerminalState = errors.New("reservation in terminal state")
)

// Validation errors, rejected before any store write.
var (
	ErrVenueClosed   = errors.New("venue closed")
	ErrPastDate      = errors.New("date in the past")
	ErrNotAuthorized = errors.New("actor not authorized")
)

// ErrNotFound is returned when the referenced venue or reservation does
// not exist.
var ErrNotFound = errors.New("not found")

// Infrastructure errors. Detail is carried in the wrapped message for
// server-side logs; callers surface them as opaque failures.
var (
	// ErrDataUnavailable is returned when calendar generation cannot read
	// its inputs; no partial grid is ever produced.
	ErrDataUnavailable = errors.New("availability data unavailable")

	// ErrStoreUnavailable is returned for store timeouts or connection
	// loss. All operations are safe to retry: the request insert is
	// protected by the active-date uniqueness constraint and everything
	// else is row-scoped.
	ErrStoreUnavailable = errors.New("store unavailable")
)
