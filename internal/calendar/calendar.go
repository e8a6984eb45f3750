// Package calendar derives a per-day availability grid for a venue month.
// Generation is pure: the caller supplies the blackout and reservation-held
// date sets, today's date, and the requested month; no store access or
// mutation happens here, so identical inputs always yield identical grids.
package calendar

import (
	"errors"
	"time"
)

// ErrInvalidRange is returned when the requested year or month falls
// outside the supported window (1970–2100, months 1–12).
var ErrInvalidRange = errors.New("invalid year or month")

const (
	// MinYear and MaxYear bound the years a grid can be generated for.
	MinYear = 1970
	MaxYear = 2100
)

// DayState classifies a single grid cell. Past-ness is evaluated before
// unavailability; the two flags stay independent, so a past blacked-out
// day is tagged past-unavailable rather than collapsed into past.
type DayState string

const (
	StateEmpty           DayState = "empty"            // leading/trailing pad cell
	StatePastAvailable   DayState = "past-available"   // before today, nothing blocking
	StatePastUnavailable DayState = "past-unavailable" // before today and blocked
	StateUnavailable     DayState = "unavailable"      // today or later, blocked
	StateAvailableFuture DayState = "available-future" // today or later, free
)

// Cell is one slot of the 7-column grid. Day is zero and Date empty for
// pad cells.
type Cell struct {
	Day   int      `json:"day,omitempty"`
	Date  string   `json:"date,omitempty"`
	State DayState `json:"state"`
}

// Grid is a row-major month layout. Weeks start on Sunday and len(Cells)
// is always a multiple of 7.
type Grid struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Cells []Cell     `json:"cells"`
}

// DateSet builds a membership set keyed by ISO date from civil dates.
func DateSet(dates []time.Time) map[string]bool {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d.UTC().Format(dateLayout)] = true
	}
	return set
}

const dateLayout = "2006-01-02"

// Generate produces the availability grid for (year, month). The today
// parameter fixes the past/future boundary; blackouts and held carry the
// two independent unavailability sources as ISO-date sets. Dates are
// interpreted on the proleptic Gregorian calendar via the time package.
func Generate(year int, month time.Month, today time.Time, blackouts, held map[string]bool) (*Grid, error) {
	if year < MinYear || year > MaxYear || month < time.January || month > time.December {
		return nil, ErrInvalidRange
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysIn := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	todayStr := today.UTC().Format(dateLayout)

	lead := int(first.Weekday()) // Sunday == 0
	cells := make([]Cell, 0, lead+daysIn+6)
	for i := 0; i < lead; i++ {
		cells = append(cells, Cell{State: StateEmpty})
	}

	for day := 1; day <= daysIn; day++ {
		dateStr := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		unavailable := blackouts[dateStr] || held[dateStr]

		var state DayState
		switch {
		case dateStr < todayStr && unavailable:
			state = StatePastUnavailable
		case dateStr < todayStr:
			state = StatePastAvailable
		case unavailable:
			state = StateUnavailable
		default:
			state = StateAvailableFuture
		}
		cells = append(cells, Cell{Day: day, Date: dateStr, State: state})
	}

	for len(cells)%7 != 0 {
		cells = append(cells, Cell{State: StateEmpty})
	}

	return &Grid{Year: year, Month: month, Cells: cells}, nil
}
