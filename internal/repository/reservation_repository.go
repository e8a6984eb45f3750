package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/ventech/venue-locator/internal/model"
)

// ReservationRepo provides data access to the venue_reservations table.
// The schema carries a stored generated column `held_date` that mirrors
// event_date while the status is active (pending, accepted, confirmed)
// and is NULL otherwise; the unique index over (venue_id, held_date)
// enforces at most one active reservation per venue and date. All
// timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for callers that need to open
// transactions spanning multiple repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const dateLayout = "2006-01-02"

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (1062), raised here by the uq_active_date index.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// Insert creates a pending reservation in one atomic statement. The
// availability check is the unique index itself: when another active
// reservation already holds (venue_id, event_date), the insert fails
// with a duplicate-key error and ErrDuplicateActiveDate is returned.
// Two racing inserts therefore yield exactly one pending row.
func (r *ReservationRepo) Insert(ctx context.Context, venueID, requesterID uint64, eventDate time.Time) (*model.Reservation, error) {
	const q = `INSERT INTO venue_reservations (venue_id, requester_id, event_date, status)
	           VALUES (?, ?, ?, 'pending')`
	result, err := r.db.ExecContext(ctx, q, venueID, requesterID, eventDate.UTC().Format(dateLayout))
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateActiveDate
		}
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	// Query back the full row to populate timestamps and defaults.
	const sel = `SELECT id, venue_id, requester_id, event_date, status, created_at, updated_at
	             FROM venue_reservations WHERE id = ?`
	var res model.Reservation
	if err := r.db.QueryRowContext(ctx, sel, id).Scan(
		&res.ID, &res.VenueID, &res.RequesterID, &res.EventDate,
		&res.Status, &res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetWithOwner loads a reservation together with the owner of its venue,
// which the lifecycle manager needs for authorization. Returns
// ErrReservationNotFound when no row matches.
func (r *ReservationRepo) GetWithOwner(ctx context.Context, id uint64) (*model.Reservation, uint64, error) {
	const q = `SELECT r.id, r.venue_id, r.requester_id, r.event_date, r.status,
	                  r.created_at, r.updated_at, v.owner_id
	           FROM venue_reservations r
	           JOIN venues v ON v.id = r.venue_id
	           WHERE r.id = ?`
	var res model.Reservation
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.VenueID, &res.RequesterID, &res.EventDate,
		&res.Status, &res.CreatedAt, &res.UpdatedAt, &ownerID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrReservationNotFound
		}
		return nil, 0, err
	}
	return &res, ownerID, nil
}

// UpdateStatus moves a reservation from one status to another with a
// compare-and-swap keyed on the current status. It reports false when
// the row was not in `from` anymore, which callers treat as a lost race.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, from, to string) (bool, error) {
	const q = `UPDATE venue_reservations
	           SET status = ?, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND status = ?`
	result, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HeldDates returns the event dates in [from, to) occupied by active
// reservations for a venue. Cancelled, rejected and completed rows do
// not hold their date.
func (r *ReservationRepo) HeldDates(ctx context.Context, venueID uint64, from, to time.Time) ([]time.Time, error) {
	const q = `SELECT event_date FROM venue_reservations
	           WHERE venue_id = ?
	             AND status IN ('pending', 'accepted', 'confirmed')
	             AND event_date >= ? AND event_date < ?`
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

// CountsByOwner recomputes the dashboard counters for an owner from
// authoritative reservation rows across all venues they own. Cancelled
// counts cancellation_requested as well, matching the dashboard's
// definition of a cancellation in flight.
func (r *ReservationRepo) CountsByOwner(ctx context.Context, ownerID uint64) (model.OwnerCounts, error) {
	const q = `SELECT COUNT(*),
	                  COALESCE(SUM(r.status = 'pending'), 0),
	                  COALESCE(SUM(r.status IN ('cancelled', 'cancellation_requested')), 0)
	           FROM venue_reservations r
	           JOIN venues v ON v.id = r.venue_id
	           WHERE v.owner_id = ?`
	var c model.OwnerCounts
	if err := r.db.QueryRowContext(ctx, q, ownerID).Scan(&c.Total, &c.Pending, &c.Cancelled); err != nil {
		return model.OwnerCounts{}, err
	}
	return c, nil
}

// ListRecentByOwner returns the newest reservations across an owner's
// venues for the dashboard feed, with venue and requester context.
func (r *ReservationRepo) ListRecentByOwner(ctx context.Context, ownerID uint64, limit int) ([]model.ReservationDetail, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `SELECT r.id, r.venue_id, v.title, r.requester_id, u.email,
	                  r.event_date, r.status, r.created_at
	           FROM venue_reservations r
	           JOIN venues v ON v.id = r.venue_id
	           JOIN users u ON u.id = r.requester_id
	           WHERE v.owner_id = ?
	           ORDER BY r.created_at DESC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]model.ReservationDetail, 0)
	for rows.Next() {
		var d model.ReservationDetail
		var eventDate time.Time
		if err := rows.Scan(&d.ID, &d.VenueID, &d.VenueTitle, &d.RequesterID,
			&d.RequesterEmail, &eventDate, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.EventDate = eventDate.UTC().Format(dateLayout)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ListByRequester returns a user's own reservations, newest first.
func (r *ReservationRepo) ListByRequester(ctx context.Context, requesterID uint64) ([]model.ReservationDetail, error) {
	const q = `SELECT r.id, r.venue_id, v.title, r.requester_id, u.email,
	                  r.event_date, r.status, r.created_at
	           FROM venue_reservations r
	           JOIN venues v ON v.id = r.venue_id
	           JOIN users u ON u.id = r.requester_id
	           WHERE r.requester_id = ?
	           ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]model.ReservationDetail, 0)
	for rows.Next() {
		var d model.ReservationDetail
		var eventDate time.Time
		if err := rows.Scan(&d.ID, &d.VenueID, &d.VenueTitle, &d.RequesterID,
			&d.RequesterEmail, &eventDate, &d.Status, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.EventDate = eventDate.UTC().Format(dateLayout)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}
