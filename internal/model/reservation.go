package model

import "time"

// Reservation records a single-day booking request for a venue. Rows are
// never deleted; rejected and cancelled reservations remain for audit.
//
// Fields:
//  ID          – primary key identifier.
//  VenueID     – venue being reserved.
//  RequesterID – user who requested the reservation.
//  EventDate   – civil date of the event (midnight UTC).
//  Status      – lifecycle state (pending, accepted, rejected,
//                cancellation_requested, cancelled, confirmed, completed).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Reservation struct {
	ID          uint64    // venue_reservations.id
	VenueID     uint64    // venue_reservations.venue_id
	RequesterID uint64    // venue_reservations.requester_id
	EventDate   time.Time // venue_reservations.event_date
	Status      string    // venue_reservations.status
	CreatedAt   time.Time // venue_reservations.created_at
	UpdatedAt   time.Time // venue_reservations.updated_at
}

// ReservationDetail pairs a reservation with the venue and requester
// context needed by the owner dashboard's recent-activity feed.
type ReservationDetail struct {
	ID             uint64    `json:"id"`
	VenueID        uint64    `json:"venue_id"`
	VenueTitle     string    `json:"venue_title"`
	RequesterID    uint64    `json:"requester_id"`
	RequesterEmail string    `json:"requester_email"`
	EventDate      string    `json:"event_date"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
