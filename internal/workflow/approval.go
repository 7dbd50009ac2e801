// Package workflow drives the administrator-side review of booking
// requests: validating status transitions, producing the calendar and
// correspondence drafts for a decision, and dispatching them through
// the notifier. The persisted status change always happens before any
// outbound notification attempt, and a failed dispatch never rolls the
// status back.
package workflow

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/school-meeting-booking/internal/calendar"
	"github.com/example/school-meeting-booking/internal/model"
	"github.com/example/school-meeting-booking/internal/notifier"
)

// ErrInvalidTransition is returned for any status change outside the
// permitted set: pending→approved, pending→rejected, and the
// administrator's reset {approved,rejected}→pending.
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidTransition reports whether from→to is a permitted status change.
func ValidTransition(from, to model.BookingStatus) bool {
	switch from {
	case model.StatusPending:
		return to == model.StatusApproved || to == model.StatusRejected
	case model.StatusApproved, model.StatusRejected:
		return to == model.StatusPending
	}
	return false
}

// BookingStore is the booking persistence surface the workflow needs.
type BookingStore interface {
	GetByID(ctx context.Context, id uint64) (*model.BookingRequest, error)
	UpdateStatusFrom(ctx context.Context, id uint64, from, to model.BookingStatus) error
}

// EventStore resolves the event a booking belongs to, for slot
// duration and staff details in drafts.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.MeetingEvent, error)
}

// DecisionDraft carries the administrator's edits from the two-step
// drafting flow. Zero-valued fields fall back to generated defaults.
type DecisionDraft struct {
	Calendar *calendar.EventDraft `json:"calendar,omitempty"`
	Subject  string               `json:"subject,omitempty"`
	Body     string               `json:"body,omitempty"`
}

// Result reports the outcome of a decision. Notified is false when the
// status change persisted but the dispatch failed; the administrator
// must retry the notification manually.
type Result struct {
	Booking  *model.BookingRequest `json:"booking"`
	Calendar *calendar.EventDraft  `json:"calendar,omitempty"`
	Notified bool                  `json:"notified"`
}

// Service applies decisions to bookings.
type Service struct {
	bookings BookingStore
	events   EventStore
	notify   notifier.Notifier
	log      *zap.Logger
}

// New returns a workflow Service.
func New(bookings BookingStore, events EventStore, notify notifier.Notifier, log *zap.Logger) *Service {
	return &Service{bookings: bookings, events: events, notify: notify, log: log}
}

// Decide transitions a booking to the next status. Approvals and
// rejections produce a calendar draft and a correspondence draft
// (admin edits take precedence over generated defaults), persist the
// status change, then dispatch the correspondence best-effort. A reset
// to pending is a bare status change with no drafting and no dispatch.
func (s *Service) Decide(ctx context.Context, bookingID uint64, next model.BookingStatus, draft DecisionDraft) (*Result, error) {
	if !next.Valid() {
		return nil, ErrInvalidTransition
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !ValidTransition(b.Status, next) {
		return nil, ErrInvalidTransition
	}
	prev := b.Status

	if next == model.StatusPending {
		if err := s.bookings.UpdateStatusFrom(ctx, bookingID, prev, next); err != nil {
			return nil, err
		}
		b.Status = next
		return &Result{Booking: b}, nil
	}

	// Step 1: calendar draft, derived from the booking and its event,
	// overridden by the administrator's edits.
	ev, err := s.events.GetByID(ctx, b.EventID)
	if err != nil {
		// The event may have been deleted after the booking was made;
		// drafting falls back to defaults rather than blocking review.
		s.log.Warn("decide: event lookup failed, using draft defaults",
			zap.Uint64("booking_id", bookingID), zap.Error(err))
		ev = nil
	}
	cal := DefaultCalendarDraft(b, ev)
	mergeCalendar(&cal, draft.Calendar)

	// Step 2: correspondence draft, with the calendar link appended to
	// approval letters.
	subject, body := DraftMessage(b, next)
	if draft.Subject != "" {
		subject = draft.Subject
	}
	if draft.Body != "" {
		body = draft.Body
	}
	msg := notifier.Message{
		Kind:      notifier.KindDecision,
		To:        b.Email,
		Subject:   subject,
		Body:      body,
		BookingID: b.ID,
	}
	if next == model.StatusApproved {
		if link, err := cal.GoogleLink(); err == nil {
			msg.Body += "\n\nAdd the meeting to your calendar: " + link
		}
		if ics, err := cal.ICS(); err == nil {
			msg.CalendarICS = ics
		} else {
			s.log.Warn("decide: calendar render failed",
				zap.Uint64("booking_id", bookingID), zap.Error(err))
		}
	}

	// Persist first. Observers of the stored status must never see a
	// notification that contradicts it.
	if err := s.bookings.UpdateStatusFrom(ctx, bookingID, prev, next); err != nil {
		return nil, err
	}
	b.Status = next

	res := &Result{Booking: b, Notified: true}
	if next == model.StatusApproved {
		res.Calendar = &cal
	}
	if err := s.notify.Send(ctx, msg); err != nil {
		// Recoverable: the decision stands, the operator re-sends.
		s.log.Warn("decide: notification dispatch failed",
			zap.Uint64("booking_id", bookingID), zap.String("status", string(next)), zap.Error(err))
		res.Notified = false
	}
	return res, nil
}

// mergeCalendar overlays the administrator's non-empty edits onto the
// generated draft.
func mergeCalendar(dst *calendar.EventDraft, edit *calendar.EventDraft) {
	if edit == nil {
		return
	}
	if edit.Title != "" {
		dst.Title = edit.Title
	}
	if edit.Date != "" {
		dst.Date = edit.Date
	}
	if edit.StartTime != "" {
		dst.StartTime = edit.StartTime
	}
	if edit.EndTime != "" {
		dst.EndTime = edit.EndTime
	}
	if edit.Location != "" {
		dst.Location = edit.Location
	}
	if edit.Description != "" {
		dst.Description = edit.Description
	}
	if edit.AttendeeEmail != "" {
		dst.AttendeeEmail = edit.AttendeeEmail
	}
}
