// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationEvent is published after every successful reservation
// transition, including the initial request. It carries enough context
// for downstream consumers to notify the parties or feed analytics
// without querying the primary database. Delivery is fire-and-forget: a
// publish failure never rolls back the transition it describes.
type ReservationEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	VenueID       uint64 `json:"venue_id"`
	OwnerID       uint64 `json:"owner_id"`
	RequesterID   uint64 `json:"requester_id"`
	EventDate     string `json:"event_date"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}
