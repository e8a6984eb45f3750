// Package repository provides MySQL data access for venues, reservations,
// blackout dates and users. Sentinel errors defined here let the booking
// manager and handlers distinguish failure scenarios without inspecting
// driver-specific errors themselves.
package repository

import "errors"

// ErrDuplicateActiveDate is returned when inserting a reservation whose
// (venue_id, event_date) pair is already held by an active reservation.
// It is raised by the unique index over the held_date generated column,
// never by a separate pre-check, so two racing requests yield exactly one
// pending row.
var ErrDuplicateActiveDate = errors.New("active reservation exists for date")

// ErrVenueNotFound is returned when a venue lookup matches no row.
var ErrVenueNotFound = errors.New("venue not found")

// ErrReservationNotFound is returned when a reservation lookup matches
// no row.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrEmailExists is returned when registering a user with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")
