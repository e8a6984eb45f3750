package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ventech/venue-locator/internal/calendar"
	"github.com/ventech/venue-locator/internal/model"
	"github.com/ventech/venue-locator/internal/queue"
	"github.com/ventech/venue-locator/internal/repository"
)

// VenueStore resolves venue identity and open/closed status. Venue CRUD
// itself lives outside the booking core.
type VenueStore interface {
	GetVenue(ctx context.Context, id uint64) (*model.Venue, error)
}

// ReservationStore persists reservations and enforces the at-most-one
// active reservation per (venue, date) invariant via a storage-level
// uniqueness constraint. Insert must be atomic: no check-then-act.
type ReservationStore interface {
	Insert(ctx context.Context, venueID, requesterID uint64, eventDate time.Time) (*model.Reservation, error)
	GetWithOwner(ctx context.Context, id uint64) (*model.Reservation, uint64, error)
	// UpdateStatus performs a compare-and-swap keyed on the current
	// status and reports whether the row was updated.
	UpdateStatus(ctx context.Context, id uint64, from, to string) (bool, error)
	HeldDates(ctx context.Context, venueID uint64, from, to time.Time) ([]time.Time, error)
	CountsByOwner(ctx context.Context, ownerID uint64) (model.OwnerCounts, error)
}

// BlackoutStore lists owner-declared blackout dates. Blackouts and
// reservation-held dates are independent unavailability sources and are
// only merged at grid-classification time.
type BlackoutStore interface {
	ListRange(ctx context.Context, venueID uint64, from, to time.Time) ([]time.Time, error)
}

// CountsCache fronts the scan-based owner counters. Implementations must
// tolerate being nil-receiver free: the manager treats a nil cache as a
// permanent miss.
type CountsCache interface {
	Get(ctx context.Context, ownerID uint64) (model.OwnerCounts, bool)
	Set(ctx context.Context, ownerID uint64, counts model.OwnerCounts)
	Invalidate(ctx context.Context, ownerID uint64)
}

// Notifier delivers reservation events to the notification transport.
type Notifier interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Manager validates and executes reservation lifecycle operations. It
// never reads ambient state: the actor, venue and date always arrive as
// parameters. All methods are safe for concurrent use; serialization of
// the request path is delegated to the store's uniqueness constraint and
// per-reservation ordering to the status compare-and-swap.
type Manager struct {
	venues       VenueStore
	reservations ReservationStore
	blackouts    BlackoutStore
	counts       CountsCache
	notifier     Notifier
	now          func() time.Time
}

// NewManager constructs a Manager. The counts cache and notifier are
// optional; venues, reservations and blackouts must be non-nil.
func NewManager(venues VenueStore, reservations ReservationStore, blackouts BlackoutStore, counts CountsCache, notifier Notifier) *Manager {
	if venues == nil || reservations == nil || blackouts == nil {
		panic("nil store passed to NewManager")
	}
	return &Manager{
		venues:       venues,
		reservations: reservations,
		blackouts:    blackouts,
		counts:       counts,
		notifier:     notifier,
		now:          time.Now,
	}
}

// today returns the current civil date at midnight UTC.
func (m *Manager) today() time.Time {
	n := m.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Calendar derives the availability grid for a venue month. Zero year
// and month default to the current ones. Store-read failures surface as
// ErrDataUnavailable; no grid is fabricated from partial data.
func (m *Manager) Calendar(ctx context.Context, venueID uint64, year int, month time.Month) (*calendar.Grid, error) {
	today := m.today()
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = today.Month()
	}
	if year < calendar.MinYear || year > calendar.MaxYear || month < time.January || month > time.December {
		return nil, calendar.ErrInvalidRange
	}

	if _, err := m.venues.GetVenue(ctx, venueID); err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: venue lookup: %v", ErrDataUnavailable, err)
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	blackoutDates, err := m.blackouts.ListRange(ctx, venueID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: blackout dates: %v", ErrDataUnavailable, err)
	}
	heldDates, err := m.reservations.HeldDates(ctx, venueID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: held dates: %v", ErrDataUnavailable, err)
	}

	return calendar.Generate(year, month, today, calendar.DateSet(blackoutDates), calendar.DateSet(heldDates))
}

// Request creates a pending reservation for (venue, date). The
// availability check and the insert are a single atomic unit: the store's
// unique index over active (venue_id, event_date) pairs decides races,
// and a duplicate-key result maps to ErrDateAlreadyHeld so callers can
// show an accurate message and refresh the calendar.
func (m *Manager) Request(ctx context.Context, venueID, requesterID uint64, eventDate time.Time) (*model.Reservation, error) {
	venue, err := m.venues.GetVenue(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: venue lookup: %v", ErrStoreUnavailable, err)
	}
	if venue.Status != model.VenueOpen {
		return nil, ErrVenueClosed
	}

	d := eventDate.UTC()
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(m.today()) {
		return nil, ErrPastDate
	}

	res, err := m.reservations.Insert(ctx, venueID, requesterID, day)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateActiveDate) {
			return nil, ErrDateAlreadyHeld
		}
		return nil, fmt.Errorf("%w: insert reservation: %v", ErrStoreUnavailable, err)
	}

	m.afterChange(ctx, venue.OwnerID, res)
	return res, nil
}

// Transition applies an action to a reservation on behalf of an actor.
// Transitions on the same reservation are linearized by the status
// compare-and-swap: when two actors race, exactly one write lands and
// the loser fails ErrInvalidTransition on the re-check.
func (m *Manager) Transition(ctx context.Context, reservationID uint64, action string, actorID uint64) (Status, error) {
	act, ok := ParseAction(action)
	if !ok {
		return "", ErrInvalidTransition
	}

	res, ownerID, err := m.reservations.GetWithOwner(ctx, reservationID)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: load reservation: %v", ErrStoreUnavailable, err)
	}

	from, ok := ParseStatus(res.Status)
	if !ok {
		return "", fmt.Errorf("%w: unknown stored status %q", ErrInvalidTransition, res.Status)
	}
	if from.Terminal() {
		return "", ErrTerminalState
	}

	if ownerOnly(act) {
		if actorID != ownerID {
			return "", ErrNotAuthorized
		}
	} else if actorID != res.RequesterID && actorID != ownerID {
		return "", ErrNotAuthorized
	}

	to, ok := nextStatus(from, act)
	if !ok {
		return "", ErrInvalidTransition
	}

	// Date-bound preconditions from the transition table.
	today := m.today()
	day := res.EventDate.UTC()
	eventDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	switch act {
	case ActionConfirm:
		if eventDay.Before(today) {
			return "", ErrInvalidTransition
		}
	case ActionMarkCompleted:
		if eventDay.After(today) {
			return "", ErrInvalidTransition
		}
	}

	updated, err := m.reservations.UpdateStatus(ctx, reservationID, string(from), string(to))
	if err != nil {
		return "", fmt.Errorf("%w: update status: %v", ErrStoreUnavailable, err)
	}
	if !updated {
		// A concurrent transition won; the row is no longer in `from`.
		return "", ErrInvalidTransition
	}

	res.Status = string(to)
	m.afterChange(ctx, ownerID, res)
	return to, nil
}

// OwnerCounts returns the aggregate counters for an owner's venues. The
// counts are always recomputed from authoritative reservation rows; the
// cache only short-circuits repeated dashboard reads and is invalidated
// on every successful transition, keeping Recompute observably equal to
// a scan-based count after any transition sequence.
func (m *Manager) OwnerCounts(ctx context.Context, ownerID uint64) (model.OwnerCounts, error) {
	if m.counts != nil {
		if c, ok := m.counts.Get(ctx, ownerID); ok {
			return c, nil
		}
	}
	counts, err := m.reservations.CountsByOwner(ctx, ownerID)
	if err != nil {
		return model.OwnerCounts{}, fmt.Errorf("%w: owner counts: %v", ErrStoreUnavailable, err)
	}
	if m.counts != nil {
		m.counts.Set(ctx, ownerID, counts)
	}
	return counts, nil
}

// afterChange runs the post-commit side effects of a successful write:
// counter invalidation and the fire-and-forget notification. Neither may
// fail the operation that triggered them.
func (m *Manager) afterChange(ctx context.Context, ownerID uint64, res *model.Reservation) {
	if m.counts != nil {
		m.counts.Invalidate(ctx, ownerID)
	}
	if m.notifier == nil {
		return
	}
	ev := queue.ReservationEvent{
		ReservationID: res.ID,
		VenueID:       res.VenueID,
		OwnerID:       ownerID,
		RequesterID:   res.RequesterID,
		EventDate:     res.EventDate.UTC().Format("2006-01-02"),
		Status:        res.Status,
		OccurredAt:    m.now().UTC().Format(time.RFC3339),
	}
	if err := m.notifier.Publish(ctx, ev); err != nil {
		log.Printf("booking: publish reservation event failed: %v", err)
	}
}
