package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/example/school-meeting-booking/internal/config"
	"github.com/example/school-meeting-booking/internal/model"
	"github.com/example/school-meeting-booking/internal/notifier"
	"github.com/example/school-meeting-booking/internal/repository"
	"github.com/example/school-meeting-booking/internal/schedule"
	"github.com/example/school-meeting-booking/internal/verification"
)

// PublicBookingHandler implements the parent-facing booking flow:
// reading slot availability, submitting a request, and confirming it
// with the emailed verification code.
type PublicBookingHandler struct {
	Cfg      config.Config
	Events   *repository.EventRepo
	Bookings *repository.BookingRepo
	Codes    *verification.Service
	Notify   notifier.Notifier
	Log      *zap.Logger
}

func NewPublicBookingHandler(cfg config.Config, events *repository.EventRepo, bookings *repository.BookingRepo, codes *verification.Service, notify notifier.Notifier, log *zap.Logger) *PublicBookingHandler {
	return &PublicBookingHandler{Cfg: cfg, Events: events, Bookings: bookings, Codes: codes, Notify: notify, Log: log}
}

// slotView is one entry of the availability response. Hidden slots are
// never serialized; the client only ever learns about taken slots and
// the one offered slot per session.
type slotView struct {
	Time   string          `json:"time"`
	Status schedule.Status `json:"status"`
}

// Slots answers GET /v1/meeting-events/:id/slots?date=&class_id= with
// the resolved availability for one day and class. The statuses are
// recomputed from stored bookings on every call and must not be cached.
func (h *PublicBookingHandler) Slots(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date := c.QueryParam("date")
	classID := c.QueryParam("class_id")
	if date == "" || classID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date and class_id required"})
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
	if !ev.HasDate(date) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "event has no slots on that date"})
	}
	cl := ev.Class(classID)
	if cl == nil || !cl.Included {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "class not part of event"})
	}

	start, err := schedule.ParseClock(ev.StartTime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalid event window"})
	}
	end, err := schedule.ParseClock(ev.EndTime)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalid event window"})
	}

	booked, err := h.Bookings.BookedSlots(ctx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bookings failed"})
	}
	taken := make(map[int]bool)
	for _, s := range booked {
		if s.Date != date || s.ClassID != classID {
			continue
		}
		min, err := schedule.ParseClock(s.Time)
		if err != nil {
			continue
		}
		taken[min] = true
	}

	resolved := schedule.Resolve(schedule.Slots(start, end, ev.DurationMin, ev.BufferMin), taken)
	out := make([]slotView, 0, len(resolved))
	for _, s := range resolved {
		if s.Status == schedule.StatusHidden {
			continue
		}
		out = append(out, slotView{Time: schedule.FormatClock(s.Start), Status: s.Status})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id": ev.ID,
		"date":     date,
		"class_id": classID,
		"slots":    out,
	})
}

// BookedSlots answers GET /v1/meeting-bookings?event_id= with the raw
// occupied (date, class, time) tuples for an event. The public site
// uses it to grey out calendar days that are fully booked.
func (h *PublicBookingHandler) BookedSlots(c echo.Context) error {
	eventID, err := parseID(c.QueryParam("event_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Bookings.BookedSlots(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load bookings failed"})
	}
	return c.JSON(http.StatusOK, slots)
}

type createBookingReq struct {
	EventID    uint64              `json:"event_id"`
	ClassID    string              `json:"class_id"`
	Date       string              `json:"date"`
	Time       string              `json:"time"`
	ParentName string              `json:"parent_name"`
	ChildName  string              `json:"child_name"`
	Email      string              `json:"email"`
	Phone      string              `json:"phone"`
	Extras     []model.FieldAnswer `json:"extras"`
}

// Create submits a booking request. The slot tuple is checked and
// inserted atomically; a concurrent claim of the same slot answers 409.
// On success a verification code is issued and emailed best-effort —
// the parent can always request a resend.
func (h *PublicBookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ParentName = strings.TrimSpace(req.ParentName)
	req.ChildName = strings.TrimSpace(req.ChildName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.EventID == 0 || req.ClassID == "" || req.Date == "" || req.Time == "" ||
		req.ParentName == "" || req.ChildName == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing required fields"})
	}
	// The time string is the uniqueness key for the slot claim; store
	// the canonical rendering, never the client's spelling.
	timeMin, err := schedule.ParseClock(req.Time)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time"})
	}
	req.Time = schedule.FormatClock(timeMin)
	for _, a := range req.Extras {
		if err := a.Validate(); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, req.EventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	if !ev.Active {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrEventInactive.Error()})
	}
	if !ev.HasDate(req.Date) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "event has no slots on that date"})
	}
	cl := ev.Class(req.ClassID)
	if cl == nil || !cl.Included {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "class not part of event"})
	}

	b := &model.BookingRequest{
		EventID:    ev.ID,
		ClassID:    cl.ClassID,
		ClassName:  cl.Name,
		Date:       req.Date,
		Time:       req.Time,
		ParentName: req.ParentName,
		ChildName:  req.ChildName,
		Email:      req.Email,
		Phone:      req.Phone,
		Extras:     req.Extras,
	}
	if err := h.Bookings.Create(ctx, b); err != nil {
		if err == repository.ErrSlotTaken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	h.sendCode(ctx, b)
	return c.JSON(http.StatusCreated, echo.Map{
		"id":                  b.ID,
		"status":              b.Status,
		"code_expires_in_min": h.Cfg.BookingCodeTTLMin,
	})
}

type verifyReq struct {
	Code string `json:"code"`
}

// Verify confirms a booking with its emailed code. The matching code is
// consumed; submitting it again answers 401 like any wrong code.
func (h *PublicBookingHandler) Verify(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
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
	if b.Verified() {
		return c.JSON(http.StatusOK, echo.Map{"verified": true})
	}

	// Match first, consume last: if the verified stamp fails in
	// between, the code survives for the retry instead of being burnt.
	codeID, err := h.Codes.Match(ctx, verification.BookingSubject(b.ID), code)
	if err != nil {
		if err == verification.ErrCodeInvalid {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired code"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check failed"})
	}
	if err := h.Bookings.SetVerified(ctx, b.ID, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
	}
	if err := h.Codes.Consume(ctx, codeID); err != nil {
		// The booking is verified; an unconsumed code is harmless here
		// because Verify short-circuits on verified bookings.
		h.Log.Warn("consume verification code failed", zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": true})
}

// ResendCode issues a fresh verification code for an unverified
// booking. Earlier codes stay valid until their own expiry, so a parent
// who finds the first email late can still use it.
func (h *PublicBookingHandler) ResendCode(c echo.Context) error {
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
	if b.Verified() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already verified"})
	}

	h.sendCode(ctx, b)
	return c.JSON(http.StatusOK, echo.Map{"sent": true, "code_expires_in_min": h.Cfg.BookingCodeTTLMin})
}

// sendCode issues a verification code for the booking and queues the
// email. Failures are logged, not surfaced; the booking stands and the
// parent retries via resend.
func (h *PublicBookingHandler) sendCode(ctx context.Context, b *model.BookingRequest) {
	ttl := time.Duration(h.Cfg.BookingCodeTTLMin) * time.Minute
	code, err := h.Codes.Issue(ctx, verification.BookingSubject(b.ID), ttl)
	if err != nil {
		h.Log.Warn("issue verification code failed", zap.Uint64("booking_id", b.ID), zap.Error(err))
		return
	}
	body := "Your verification code is " + code + ". Enter it within " +
		ttl.String() + " to confirm the meeting request for " + b.ChildName + "."
	msg := notifier.Message{
		Kind:      notifier.KindVerification,
		To:        b.Email,
		Subject:   "Confirm your meeting request",
		Body:      body,
		BookingID: b.ID,
	}
	if err := h.Notify.Send(ctx, msg); err != nil {
		h.Log.Warn("verification code dispatch failed", zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}
