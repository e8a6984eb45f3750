package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ventech/venue-locator/internal/calendar"
	"github.com/ventech/venue-locator/internal/model"
	"github.com/ventech/venue-locator/internal/queue"
	"github.com/ventech/venue-locator/internal/repository"
)

// The fixture freezes today at 2025-06-15 so date preconditions are
// exercised against a known boundary.
var testToday = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

func testDate(d int) time.Time {
	return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
}

type fakeVenueStore struct {
	venues map[uint64]*model.Venue
	err    error
}

func (f *fakeVenueStore) GetVenue(_ context.Context, id uint64) (*model.Venue, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.venues[id]
	if !ok {
		return nil, repository.ErrVenueNotFound
	}
	return v, nil
}

// fakeReservationStore keeps rows in memory and mimics the unique index
// over active (venue, date) pairs.
type fakeReservationStore struct {
	nextID    uint64
	rows      map[uint64]*model.Reservation
	owners    map[uint64]uint64 // venue id -> owner id
	casFail   bool
	insertErr error
	getErr    error
	updateErr error
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{
		rows:   make(map[uint64]*model.Reservation),
		owners: make(map[uint64]uint64),
	}
}

func (f *fakeReservationStore) Insert(_ context.Context, venueID, requesterID uint64, eventDate time.Time) (*model.Reservation, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	for _, r := range f.rows {
		if r.VenueID == venueID && r.EventDate.Equal(eventDate) {
			if s, ok := ParseStatus(r.Status); ok && s.HoldsDate() {
				return nil, repository.ErrDuplicateActiveDate
			}
		}
	}
	f.nextID++
	row := &model.Reservation{
		ID:          f.nextID,
		VenueID:     venueID,
		RequesterID: requesterID,
		EventDate:   eventDate,
		Status:      string(StatusPending),
	}
	f.rows[row.ID] = row
	out := *row
	return &out, nil
}

func (f *fakeReservationStore) GetWithOwner(_ context.Context, id uint64) (*model.Reservation, uint64, error) {
	if f.getErr != nil {
		return nil, 0, f.getErr
	}
	r, ok := f.rows[id]
	if !ok {
		return nil, 0, repository.ErrReservationNotFound
	}
	out := *r
	return &out, f.owners[r.VenueID], nil
}

func (f *fakeReservationStore) UpdateStatus(_ context.Context, id uint64, from, to string) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	if f.casFail {
		return false, nil
	}
	r, ok := f.rows[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (f *fakeReservationStore) HeldDates(_ context.Context, venueID uint64, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	for _, r := range f.rows {
		if r.VenueID != venueID {
			continue
		}
		s, ok := ParseStatus(r.Status)
		if !ok || !s.HoldsDate() {
			continue
		}
		if !r.EventDate.Before(from) && r.EventDate.Before(to) {
			dates = append(dates, r.EventDate)
		}
	}
	return dates, nil
}

func (f *fakeReservationStore) CountsByOwner(_ context.Context, ownerID uint64) (model.OwnerCounts, error) {
	var c model.OwnerCounts
	for _, r := range f.rows {
		if f.owners[r.VenueID] != ownerID {
			continue
		}
		c.Total++
		switch Status(r.Status) {
		case StatusPending:
			c.Pending++
		case StatusCancelled, StatusCancellationRequested:
			c.Cancelled++
		}
	}
	return c, nil
}

type fakeBlackoutStore struct {
	dates []time.Time
	err   error
}

func (f *fakeBlackoutStore) ListRange(_ context.Context, _ uint64, from, to time.Time) ([]time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []time.Time
	for _, d := range f.dates {
		if !d.Before(from) && d.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeCountsCache struct {
	values      map[uint64]model.OwnerCounts
	invalidated int
	sets        int
	hits        int
	misses      int
}

func newFakeCountsCache() *fakeCountsCache {
	return &fakeCountsCache{values: make(map[uint64]model.OwnerCounts)}
}

func (f *fakeCountsCache) Get(_ context.Context, ownerID uint64) (model.OwnerCounts, bool) {
	c, ok := f.values[ownerID]
	if ok {
		f.hits++
	} else {
		f.misses++
	}
	return c, ok
}

func (f *fakeCountsCache) Set(_ context.Context, ownerID uint64, counts model.OwnerCounts) {
	f.sets++
	f.values[ownerID] = counts
}

func (f *fakeCountsCache) Invalidate(_ context.Context, ownerID uint64) {
	f.invalidated++
	delete(f.values, ownerID)
}

type fakeNotifier struct {
	events []queue.ReservationEvent
	err    error
}

func (f *fakeNotifier) Publish(_ context.Context, ev queue.ReservationEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type fixture struct {
	m        *Manager
	venues   *fakeVenueStore
	store    *fakeReservationStore
	blackout *fakeBlackoutStore
	counts   *fakeCountsCache
	notifier *fakeNotifier
}

const (
	ownerID     = uint64(1)
	clientID    = uint64(2)
	otherUserID = uint64(3)
	venueID     = uint64(10)
	closedID    = uint64(11)
)

func newFixture() *fixture {
	venues := &fakeVenueStore{venues: map[uint64]*model.Venue{
		venueID:  {ID: venueID, OwnerID: ownerID, Title: "Riverside Hall", Status: model.VenueOpen},
		closedID: {ID: closedID, OwnerID: ownerID, Title: "Old Barn", Status: model.VenueClosed},
	}}
	store := newFakeReservationStore()
	store.owners[venueID] = ownerID
	store.owners[closedID] = ownerID
	blackout := &fakeBlackoutStore{}
	counts := newFakeCountsCache()
	notifier := &fakeNotifier{}

	m := NewManager(venues, store, blackout, counts, notifier)
	m.now = func() time.Time { return testToday }
	return &fixture{m: m, venues: venues, store: store, blackout: blackout, counts: counts, notifier: notifier}
}

func (f *fixture) pending(t *testing.T, d int) *model.Reservation {
	t.Helper()
	res, err := f.m.Request(context.Background(), venueID, clientID, testDate(d))
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	return res
}

func TestRequestCreatesPending(t *testing.T) {
	f := newFixture()
	res, err := f.m.Request(context.Background(), venueID, clientID, testDate(20))
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if res.Status != string(StatusPending) {
		t.Fatalf("status = %q, want pending", res.Status)
	}
	if res.VenueID != venueID || res.RequesterID != clientID {
		t.Fatalf("reservation = %+v, wrong venue or requester", res)
	}
	if len(f.notifier.events) != 1 {
		t.Fatalf("published %d events, want 1", len(f.notifier.events))
	}
	if ev := f.notifier.events[0]; ev.Status != string(StatusPending) || ev.EventDate != "2025-06-20" {
		t.Fatalf("event = %+v", ev)
	}
}

func TestRequestSameDayAllowed(t *testing.T) {
	f := newFixture()
	if _, err := f.m.Request(context.Background(), venueID, clientID, testDate(15)); err != nil {
		t.Fatalf("Request for today: %v", err)
	}
}

func TestRequestDuplicateDate(t *testing.T) {
	f := newFixture()
	f.pending(t, 20)
	_, err := f.m.Request(context.Background(), venueID, otherUserID, testDate(20))
	if !errors.Is(err, ErrDateAlreadyHeld) {
		t.Fatalf("error = %v, want ErrDateAlreadyHeld", err)
	}
}

func TestRequestClosedVenue(t *testing.T) {
	f := newFixture()
	_, err := f.m.Request(context.Background(), closedID, clientID, testDate(20))
	if !errors.Is(err, ErrVenueClosed) {
		t.Fatalf("error = %v, want ErrVenueClosed", err)
	}
}

func TestRequestPastDate(t *testing.T) {
	f := newFixture()
	_, err := f.m.Request(context.Background(), venueID, clientID, testDate(14))
	if !errors.Is(err, ErrPastDate) {
		t.Fatalf("error = %v, want ErrPastDate", err)
	}
}

func TestRequestUnknownVenue(t *testing.T) {
	f := newFixture()
	_, err := f.m.Request(context.Background(), 999, clientID, testDate(20))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestRequestStoreDown(t *testing.T) {
	f := newFixture()
	f.store.insertErr = errors.New("connection refused")
	_, err := f.m.Request(context.Background(), venueID, clientID, testDate(20))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}
}

func TestTransitionAccept(t *testing.T) {
	f := newFixture()
	res := f.pending(t, 20)

	to, err := f.m.Transition(context.Background(), res.ID, "accept", ownerID)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if to != StatusAccepted {
		t.Fatalf("to = %s, want accepted", to)
	}

	// Accepting again is no longer legal from the new state.
	if _, err := f.m.Transition(context.Background(), res.ID, "accept", ownerID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second accept error = %v, want ErrInvalidTransition", err)
	}
}

func TestTransitionUnknownAction(t *testing.T) {
	f := newFixture()
	res := f.pending(t, 20)
	if _, err := f.m.Transition(context.Background(), res.ID, "approve", ownerID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
}

func TestTransitionTerminalState(t *testing.T) {
	f := newFixture()
	res := f.pending(t, 20)
	if _, err := f.m.Transition(context.Background(), res.ID, "reject", ownerID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := f.m.Transition(context.Background(), res.ID, "accept", ownerID); !errors.Is(err, ErrTerminalState) {
		t.Fatalf("error = %v, want ErrTerminalState", err)
	}
}

func TestTransitionAuthorization(t *testing.T) {
	f := newFixture()
	res := f.pending(t, 20)

	// Owner-only actions are closed to the requester and strangers.
	if _, err := f.m.Transition(context.Background(), res.ID, "accept", clientID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("requester accept error = %v, want ErrNotAuthorized", err)
	}
	// request_cancel is open to requester and owner but not strangers.
	if _, err := f.m.Transition(context.Background(), res.ID, "request_cancel", otherUserID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("stranger request_cancel error = %v, want ErrNotAuthorized", err)
	}
	if _, err := f.m.Transition(context.Background(), res.ID, "request_cancel", clientID); err != nil {
		t.Fatalf("requester request_cancel: %v", err)
	}
}

func TestTransitionNotFound(t *testing.T) {
	f := newFixture()
	if _, err := f.m.Transition(context.Background(), 404, "accept", ownerID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestTransitionLostRace(t *testing.T) {
	f := newFixture()
	res := f.pending(t, 20)
	f.store.casFail = true
	if _, err := f.m.Transition(context.Background(), res.ID, "accept", ownerID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition on lost race", err)
	}
}

func TestConfirmRejectedForPastEvent(t *testing.T) {
	f := newFixture()
	// Seed an accepted reservation whose event date has passed.
	f.store.nextID++
	f.store.rows[f.store.nextID] = &model.Reservation{
		ID: f.store.nextID, VenueID: venueID, RequesterID: clientID,
		EventDate: testDate(10), Status: string(StatusAccepted),
	}
	if _, err := f.m.Transition(context.Background(), f.store.nextID, "confirm", ownerID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
}

func TestMarkCompletedRejectedBeforeEvent(t *testing.T) {
	f := newFixture()
	res := f.pending(t, 20)
	if _, err := f.m.Transition(context.Background(), res.ID, "accept", ownerID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.m.Transition(context.Background(), res.ID, "mark_completed", ownerID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition before the event date", err)
	}
}

func TestCancelFlowFreesDate(t *testing.T) {
	f := newFixture()
	res := f.pending(t, 20)

	if _, err := f.m.Transition(context.Background(), res.ID, "request_cancel", clientID); err != nil {
		t.Fatalf("request_cancel: %v", err)
	}
	// A cancellation in flight already frees the date for new requests.
	if _, err := f.m.Request(context.Background(), venueID, otherUserID, testDate(20)); err != nil {
		t.Fatalf("re-request after request_cancel: %v", err)
	}

	to, err := f.m.Transition(context.Background(), res.ID, "confirm_cancel", ownerID)
	if err != nil {
		t.Fatalf("confirm_cancel: %v", err)
	}
	if to != StatusCancelled {
		t.Fatalf("to = %s, want cancelled", to)
	}
}

func TestCalendarReflectsHeldAndBlackoutDates(t *testing.T) {
	f := newFixture()
	f.pending(t, 20)
	f.blackout.dates = []time.Time{testDate(25)}

	grid, err := f.m.Calendar(context.Background(), venueID, 2025, time.June)
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	states := make(map[int]calendar.DayState)
	for _, c := range grid.Cells {
		if c.Day != 0 {
			states[c.Day] = c.State
		}
	}
	if states[20] != calendar.StateUnavailable {
		t.Errorf("day 20 = %q, want unavailable (held)", states[20])
	}
	if states[25] != calendar.StateUnavailable {
		t.Errorf("day 25 = %q, want unavailable (blackout)", states[25])
	}
	if states[22] != calendar.StateAvailableFuture {
		t.Errorf("day 22 = %q, want available-future", states[22])
	}
}

func TestCalendarDefaultsToCurrentMonth(t *testing.T) {
	f := newFixture()
	grid, err := f.m.Calendar(context.Background(), venueID, 0, 0)
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if grid.Year != 2025 || grid.Month != time.June {
		t.Fatalf("grid = %d-%d, want 2025-June", grid.Year, grid.Month)
	}
}

func TestCalendarUnknownVenue(t *testing.T) {
	f := newFixture()
	if _, err := f.m.Calendar(context.Background(), 999, 2025, time.June); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestCalendarInvalidRange(t *testing.T) {
	f := newFixture()
	if _, err := f.m.Calendar(context.Background(), venueID, 1900, time.June); !errors.Is(err, calendar.ErrInvalidRange) {
		t.Fatalf("error = %v, want ErrInvalidRange", err)
	}
}

func TestCalendarBlackoutReadFailure(t *testing.T) {
	f := newFixture()
	f.blackout.err = errors.New("connection reset")
	if _, err := f.m.Calendar(context.Background(), venueID, 2025, time.June); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("error = %v, want ErrDataUnavailable", err)
	}
}

func TestOwnerCountsMatchRecompute(t *testing.T) {
	f := newFixture()
	a := f.pending(t, 20)
	b := f.pending(t, 21)
	f.pending(t, 22)

	if _, err := f.m.Transition(context.Background(), a.ID, "accept", ownerID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.m.Transition(context.Background(), b.ID, "request_cancel", clientID); err != nil {
		t.Fatalf("request_cancel: %v", err)
	}

	got, err := f.m.OwnerCounts(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("OwnerCounts: %v", err)
	}
	// A cancellation in flight already counts as cancelled.
	want := model.OwnerCounts{Total: 3, Pending: 1, Cancelled: 1}
	if got != want {
		t.Fatalf("counts = %+v, want %+v", got, want)
	}

	// The cached value and a fresh recompute must agree.
	recomputed, err := f.store.CountsByOwner(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("CountsByOwner: %v", err)
	}
	if got != recomputed {
		t.Fatalf("cached = %+v, recomputed = %+v", got, recomputed)
	}
}

func TestOwnerCountsUsesCache(t *testing.T) {
	f := newFixture()
	f.pending(t, 20)

	if _, err := f.m.OwnerCounts(context.Background(), ownerID); err != nil {
		t.Fatalf("OwnerCounts: %v", err)
	}
	if f.counts.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", f.counts.sets)
	}
	if _, err := f.m.OwnerCounts(context.Background(), ownerID); err != nil {
		t.Fatalf("OwnerCounts: %v", err)
	}
	if f.counts.hits != 1 {
		t.Fatalf("cache hits = %d, want 1", f.counts.hits)
	}
}

func TestTransitionsInvalidateCountsCache(t *testing.T) {
	f := newFixture()
	res := f.pending(t, 20)
	before := f.counts.invalidated

	if _, err := f.m.Transition(context.Background(), res.ID, "accept", ownerID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if f.counts.invalidated != before+1 {
		t.Fatalf("invalidations = %d, want %d", f.counts.invalidated, before+1)
	}
}

func TestNotifierFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("broker down")

	res, err := f.m.Request(context.Background(), venueID, clientID, testDate(20))
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if _, err := f.m.Transition(context.Background(), res.ID, "accept", ownerID); err != nil {
		t.Fatalf("Transition: %v", err)
	}
}

func TestManagerWithoutCacheOrNotifier(t *testing.T) {
	f := newFixture()
	m := NewManager(f.venues, f.store, f.blackout, nil, nil)
	m.now = func() time.Time { return testToday }

	res, err := m.Request(context.Background(), venueID, clientID, testDate(20))
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if _, err := m.Transition(context.Background(), res.ID, "accept", ownerID); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if _, err := m.OwnerCounts(context.Background(), ownerID); err != nil {
		t.Fatalf("OwnerCounts: %v", err)
	}
}
