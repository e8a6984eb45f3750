package model

import "time"

// Venue statuses as stored in the venues.status column. Closed venues
// reject new reservation requests but keep their booking history.
const (
	VenueOpen   = "open"
	VenueClosed = "closed"
)

// Venue represents a bookable venue owned by a single user.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – user ID of the venue owner.
//  Title     – display name of the venue.
//  Status    – "open" or "closed".
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Venue struct {
	ID        uint64    // venues.id
	OwnerID   uint64    // venues.owner_id
	Title     string    // venues.title
	Status    string    // venues.status
	CreatedAt time.Time // venues.created_at
	UpdatedAt time.Time // venues.updated_at
}

// UnavailableDate is an owner-declared blackout for a venue on a single
// calendar day. Blackouts are independent of reservations: adding one
// never cancels an existing reservation on the same date.
type UnavailableDate struct {
	ID        uint64    // unavailable_dates.id
	VenueID   uint64    // unavailable_dates.venue_id
	Date      time.Time // unavailable_dates.unavailable_date (midnight UTC)
	CreatedAt time.Time // unavailable_dates.created_at
}

// OwnerCounts is the derived dashboard read model for a venue owner,
// aggregated across all venues they own. Cancelled includes reservations
// in cancellation_requested as well as cancelled.
type OwnerCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
}
