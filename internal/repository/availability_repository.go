package repository

import (
	"context"
	"database/sql"
	"time"
)

// AvailabilityRepo provides data access to the unavailable_dates table,
// the owner-declared blackout source. Blackouts are set membership only
// (no time-of-day granularity) and are kept strictly separate from
// reservation-held dates: the two sets are merged only when a calendar
// grid is classified, never in storage.
type AvailabilityRepo struct {
	db *sql.DB
}

// NewAvailabilityRepo returns a new AvailabilityRepo bound to the given database.
func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// ListRange returns the blackout dates for a venue in [from, to).
func (r *AvailabilityRepo) ListRange(ctx context.Context, venueID uint64, from, to time.Time) ([]time.Time, error) {
	const q = `SELECT unavailable_date FROM unavailable_dates
	           WHERE venue_id = ? AND unavailable_date >= ? AND unavailable_date < ?`
	rows, err := r.db.QueryContext(ctx, q, venueID, from.UTC().Format(dateLayout), to.UTC().Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

// Add declares a blackout for a venue date. Adding the same date twice
// is a no-op, so concurrent owner edits stay idempotent. A blackout
// added after a reservation already holds the date does not touch that
// reservation.
func (r *AvailabilityRepo) Add(ctx context.Context, venueID uint64, date time.Time) error {
	const q = `INSERT INTO unavailable_dates (venue_id, unavailable_date) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE unavailable_date = unavailable_date`
	_, err := r.db.ExecContext(ctx, q, venueID, date.UTC().Format(dateLayout))
	return err
}

// Remove lifts a blackout. Removing an absent date is a no-op.
func (r *AvailabilityRepo) Remove(ctx context.Context, venueID uint64, date time.Time) error {
	const q = `DELETE FROM unavailable_dates WHERE venue_id = ? AND unavailable_date = ?`
	_, err := r.db.ExecContext(ctx, q, venueID, date.UTC().Format(dateLayout))
	return err
}

// IsHeld reports whether a date is unavailable for a venue from either
// source: an owner blackout or an active reservation.
func (r *AvailabilityRepo) IsHeld(ctx context.Context, venueID uint64, date time.Time) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM unavailable_dates
	             WHERE venue_id = ? AND unavailable_date = ?
	           ) OR EXISTS(
	             SELECT 1 FROM venue_reservations
	             WHERE venue_id = ? AND event_date = ?
	               AND status IN ('pending', 'accepted', 'confirmed')
	           )`
	day := date.UTC().Format(dateLayout)
	var held bool
	if err := r.db.QueryRowContext(ctx, q, venueID, day, venueID, day).Scan(&held); err != nil {
		return false, err
	}
	return held, nil
}
