package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ventech/venue-locator/internal/booking"
	"github.com/ventech/venue-locator/internal/calendar"
)

const dateLayout = "2006-01-02"

// getUserID extracts the authenticated user's id from the echo context,
// where JWTAuth stored it from the token's sub claim.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseDate parses a strict ISO civil date into midnight UTC.
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// bookingError translates the booking core's error taxonomy into HTTP
// responses. Conflict errors carry messages the UI can act on; store
// errors stay opaque after the detail is logged server-side.
func bookingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, booking.ErrNotAuthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrDateAlreadyHeld):
		return c.JSON(http.StatusConflict, echo.Map{"error": "date already booked, refresh the calendar"})
	case errors.Is(err, booking.ErrTerminalState):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already finalized"})
	case errors.Is(err, booking.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid action for current status"})
	case errors.Is(err, booking.ErrVenueClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "venue is closed for bookings"})
	case errors.Is(err, booking.ErrPastDate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is in the past"})
	case errors.Is(err, calendar.ErrInvalidRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year or month"})
	case errors.Is(err, booking.ErrDataUnavailable), errors.Is(err, booking.ErrStoreUnavailable):
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "service temporarily unavailable"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
