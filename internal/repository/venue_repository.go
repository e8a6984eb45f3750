package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ventech/venue-locator/internal/model"
)

// VenueRepo provides read access to the venues table. Venue creation and
// media management belong to the listings surface and are not part of
// this service; the booking core only needs identity, ownership and
// open/closed status.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo returns a new VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

// GetVenue fetches a venue by id. Returns ErrVenueNotFound when no row
// matches.
func (r *VenueRepo) GetVenue(ctx context.Context, id uint64) (*model.Venue, error) {
	const q = `SELECT id, owner_id, title, status, created_at, updated_at
	           FROM venues WHERE id = ?`
	var v model.Venue
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&v.ID, &v.OwnerID, &v.Title, &v.Status, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListPublic returns venues for guest browsing, optionally filtered by
// status ("open" or "closed"). An empty filter returns everything.
func (r *VenueRepo) ListPublic(ctx context.Context, status string) ([]model.Venue, error) {
	q := `SELECT id, owner_id, title, status, created_at, updated_at FROM venues`
	args := []interface{}{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	venues := make([]model.Venue, 0)
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return venues, nil
}

// ListByOwner returns all venues owned by a user.
func (r *VenueRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Venue, error) {
	const q = `SELECT id, owner_id, title, status, created_at, updated_at
	           FROM venues WHERE owner_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	venues := make([]model.Venue, 0)
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return venues, nil
}
