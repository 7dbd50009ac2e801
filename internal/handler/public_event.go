package handler // handler wires HTTP requests to repositories and services

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/school-meeting-booking/internal/repository"
)

// PublicEventHandler serves the read-only event views shown to parents.
// Only active events are visible here; administrators see everything
// through the admin surface.
type PublicEventHandler struct {
	Events *repository.EventRepo
}

func NewPublicEventHandler(events *repository.EventRepo) *PublicEventHandler {
	return &PublicEventHandler{Events: events}
}

// List returns all active meeting events, newest first.
func (h *PublicEventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.List(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	return c.JSON(http.StatusOK, events)
}

// Get returns one active event with its dates, classes and staff.
// Inactive events answer 404 so deactivation takes an event off the
// public site immediately.
func (h *PublicEventHandler) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	if !ev.Active {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	return c.JSON(http.StatusOK, ev)
}

// parseID parses a positive decimal path parameter.
func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
