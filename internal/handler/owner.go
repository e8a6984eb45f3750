package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ventech/venue-locator/internal/booking"
	"github.com/ventech/venue-locator/internal/repository"
)

// OwnerHandler serves the owner dashboard and blackout management.
type OwnerHandler struct {
	Manager      *booking.Manager
	Venues       *repository.VenueRepo
	Reservations *repository.ReservationRepo
	Availability *repository.AvailabilityRepo
}

type blackoutRequest struct {
	Date string `json:"date"`
}

// Dashboard returns the owner's aggregate counters together with the
// most recent reservations across their venues.
func (h *OwnerHandler) Dashboard(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.Manager.OwnerCounts(ctx, ownerID)
	if err != nil {
		return bookingError(c, err)
	}
	recent, err := h.Reservations.ListRecentByOwner(ctx, ownerID, 10)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"counts": counts,
		"recent": recent,
	})
}

// MyVenues lists the venues the authenticated owner manages.
func (h *OwnerHandler) MyVenues(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	venues, err := h.Venues.ListByOwner(ctx, ownerID)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, venues)
}

// AddBlackout declares a venue date unavailable. Only the venue's owner
// may do this; re-adding an existing blackout succeeds without effect.
func (h *OwnerHandler) AddBlackout(c echo.Context) error {
	return h.blackout(c, h.Availability.Add, http.StatusCreated)
}

// RemoveBlackout lifts a blackout. Removing an absent date succeeds.
func (h *OwnerHandler) RemoveBlackout(c echo.Context) error {
	return h.blackout(c, h.Availability.Remove, http.StatusOK)
}

func (h *OwnerHandler) blackout(c echo.Context, op func(context.Context, uint64, time.Time) error, okStatus int) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}

	var req blackoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
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
	if venue.OwnerID != ownerID {
		return bookingError(c, booking.ErrNotAuthorized)
	}

	if err := op(ctx, venueID, date); err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(okStatus, echo.Map{
		"venue_id": venueID,
		"date":     date.Format(dateLayout),
	})
}
