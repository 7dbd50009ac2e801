package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/school-meeting-booking/internal/model"
	"github.com/example/school-meeting-booking/internal/repository"
	"github.com/example/school-meeting-booking/internal/workflow"
)

// AdminBookingHandler serves the administrator's review queue: listing
// requests, applying approval decisions through the workflow service,
// and exporting calendar files for approved meetings.
type AdminBookingHandler struct {
	Bookings *repository.BookingRepo
	Events   *repository.EventRepo
	Workflow *workflow.Service
}

func NewAdminBookingHandler(bookings *repository.BookingRepo, events *repository.EventRepo, wf *workflow.Service) *AdminBookingHandler {
	return &AdminBookingHandler{Bookings: bookings, Events: events, Workflow: wf}
}

// List returns booking requests, optionally restricted to one event
// via ?event_id=. Unverified and rejected requests are included; the
// review queue shows everything.
func (h *AdminBookingHandler) List(c echo.Context) error {
	var eventID uint64
	if raw := c.QueryParam("event_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event_id"})
		}
		eventID = id
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Bookings.List(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}
	return c.JSON(http.StatusOK, list)
}

// Get returns one booking request with all submitted details.
func (h *AdminBookingHandler) Get(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load booking failed"})
	}
	return c.JSON(http.StatusOK, b)
}

type decisionReq struct {
	Status model.BookingStatus    `json:"status"`
	Draft  workflow.DecisionDraft `json:"draft"`
}

// UpdateStatus applies a status transition with optional draft edits.
// The status change is persisted before any notification goes out; the
// response's notified flag is false when the dispatch failed and the
// administrator should re-send manually.
func (h *AdminBookingHandler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Workflow.Decide(ctx, id, req.Status, req.Draft)
	if err != nil {
		switch err {
		case repository.ErrBookingNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case workflow.ErrInvalidTransition:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid status transition"})
		case repository.ErrStatusChanged:
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking status changed, reload and retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "decision failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// Delete removes a booking request outright.
func (h *AdminBookingHandler) Delete(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Bookings.Delete(ctx, id); err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete booking failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CalendarICS streams an iCalendar file for an approved booking so the
// administrator can import the meeting into the staff calendar.
func (h *AdminBookingHandler) CalendarICS(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load booking failed"})
	}
	if b.Status != model.StatusApproved {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking not approved"})
	}

	ev, err := h.Events.GetByID(ctx, b.EventID)
	if err != nil {
		// Deleted event: the draft still renders with fallback duration.
		ev = nil
	}
	draft := workflow.DefaultCalendarDraft(b, ev)
	ics, err := draft.ICS()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "calendar render failed"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="meeting-`+strconv.FormatUint(b.ID, 10)+`.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}
