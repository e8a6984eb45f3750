package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ventech/venue-locator/internal/booking"
	"github.com/ventech/venue-locator/internal/calendar"
	"github.com/ventech/venue-locator/internal/model"
	"github.com/ventech/venue-locator/internal/repository"
)

// VenueHandler serves the guest-facing browse surface: venue listing,
// venue detail, the month availability calendar and single-date checks.
type VenueHandler struct {
	Venues       *repository.VenueRepo
	Availability *repository.AvailabilityRepo
	Manager      *booking.Manager
}

// List returns venues, optionally filtered by ?status=open|closed.
func (h *VenueHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && status != model.VenueOpen && status != model.VenueClosed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be open or closed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	venues, err := h.Venues.ListPublic(ctx, status)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, venues)
}

// Get returns a single venue by id.
func (h *VenueHandler) Get(c echo.Context) error {
	venueID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	venue, err := h.Venues.GetVenue(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrVenueNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, venue)
}

// Calendar returns the availability grid for a venue month. Year and
// month arrive as query params and default to the current month when
// omitted. The grid is derived fresh on every request, never cached.
func (h *VenueHandler) Calendar(c echo.Context) error {
	venueID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}

	var year, month int
	if s := c.QueryParam("year"); s != "" {
		if year, err = strconv.Atoi(s); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
		}
	}
	if s := c.QueryParam("month"); s != "" {
		if month, err = strconv.Atoi(s); err != nil || month < 0 {
			return bookingError(c, calendar.ErrInvalidRange)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	grid, err := h.Manager.Calendar(ctx, venueID, year, time.Month(month))
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, grid)
}

// CheckDate reports whether a single venue date is unavailable from
// either source, blackout or active reservation.
func (h *VenueHandler) CheckDate(c echo.Context) error {
	venueID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	date, err := parseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	held, err := h.Availability.IsHeld(ctx, venueID, date)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"venue_id":  venueID,
		"date":      date.Format(dateLayout),
		"available": !held,
	})
}
