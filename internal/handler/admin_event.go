package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/school-meeting-booking/internal/model"
	"github.com/example/school-meeting-booking/internal/repository"
	"github.com/example/school-meeting-booking/internal/schedule"
)

// AdminEventHandler provides the administrator's CRUD surface for
// meeting events.
type AdminEventHandler struct {
	Events *repository.EventRepo
}

func NewAdminEventHandler(events *repository.EventRepo) *AdminEventHandler {
	return &AdminEventHandler{Events: events}
}

type eventReq struct {
	Title       string                  `json:"title"`
	Dates       []string                `json:"dates"`
	StartTime   string                  `json:"start_time"`
	EndTime     string                  `json:"end_time"`
	DurationMin int                     `json:"duration_min"`
	BufferMin   int                     `json:"buffer_min"`
	Active      bool                    `json:"active"`
	Classes     []model.ClassAssignment `json:"classes"`
}

// validate checks the event definition and returns a client-facing
// message for the first problem found.
func (r *eventReq) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title required"
	}
	if len(r.Dates) == 0 {
		return "at least one date required"
	}
	start, err := schedule.ParseClock(r.StartTime)
	if err != nil {
		return "invalid start_time"
	}
	end, err := schedule.ParseClock(r.EndTime)
	if err != nil {
		return "invalid end_time"
	}
	if start >= end {
		return "start_time must be before end_time"
	}
	if r.DurationMin <= 0 {
		return "duration_min must be positive"
	}
	if r.BufferMin < 0 {
		return "buffer_min must not be negative"
	}
	return ""
}

func (r *eventReq) toModel() *model.MeetingEvent {
	return &model.MeetingEvent{
		Title:       r.Title,
		Dates:       r.Dates,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		DurationMin: r.DurationMin,
		BufferMin:   r.BufferMin,
		Active:      r.Active,
		Classes:     r.Classes,
	}
}

// List returns every event including inactive ones.
func (h *AdminEventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.List(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	return c.JSON(http.StatusOK, events)
}

// Get returns one event regardless of its active flag.
func (h *AdminEventHandler) Get(c echo.Context) error {
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
	return c.JSON(http.StatusOK, ev)
}

// Create defines a new meeting event.
func (h *AdminEventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": msg})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := req.toModel()
	if err := h.Events.Create(ctx, ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, ev)
}

// Update replaces an event definition wholesale. Existing bookings are
// untouched; shrinking the window can leave bookings on times no longer
// offered, which the review queue surfaces for manual handling.
func (h *AdminEventHandler) Update(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": msg})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := req.toModel()
	ev.ID = id
	if err := h.Events.Update(ctx, ev); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}
	return c.JSON(http.StatusOK, ev)
}

// Delete removes an event and its child rows; bookings referencing it
// are kept.
func (h *AdminEventHandler) Delete(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.Delete(ctx, id); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete event failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
