package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ventech/venue-locator/internal/booking"
	"github.com/ventech/venue-locator/internal/repository"
)

// ReservationHandler serves the authenticated reservation surface:
// requesting a date, listing one's own reservations and applying
// lifecycle actions.
type ReservationHandler struct {
	Manager      *booking.Manager
	Reservations *repository.ReservationRepo
}

type requestReservationRequest struct {
	VenueID   uint64 `json:"venue_id"`
	EventDate string `json:"event_date"`
}

type transitionRequest struct {
	Action string `json:"action"`
}

// Request creates a pending reservation for a venue date on behalf of
// the authenticated user. Racing requests for the same date are decided
// by the store; the loser receives a conflict.
func (h *ReservationHandler) Request(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req requestReservationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	if req.VenueID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "venue_id is required"})
	}
	date, err := parseDate(req.EventDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Manager.Request(ctx, req.VenueID, userID, date)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Transition applies a lifecycle action to a reservation. The action
// name travels in the body and the manager decides whether the actor is
// allowed to perform it in the reservation's current state.
func (h *ReservationHandler) Transition(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	var req transitionRequest
	if err := c.Bind(&req); err != nil || req.Action == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "action is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	status, err := h.Manager.Transition(ctx, reservationID, req.Action, userID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":     reservationID,
		"status": string(status),
	})
}

// Mine lists the authenticated user's reservations, newest first.
func (h *ReservationHandler) Mine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByRequester(ctx, userID)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, list)
}
