package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/school-meeting-booking/internal/calendar"
	"github.com/example/school-meeting-booking/internal/model"
	"github.com/example/school-meeting-booking/internal/notifier"
	"github.com/example/school-meeting-booking/internal/repository"
)

type fakeBookings struct {
	booking *model.BookingRequest
	updates []string // "from->to", appended on each successful update
}

func (f *fakeBookings) GetByID(_ context.Context, id uint64) (*model.BookingRequest, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, repository.ErrBookingNotFound
	}
	copied := *f.booking
	return &copied, nil
}

func (f *fakeBookings) UpdateStatusFrom(_ context.Context, id uint64, from, to model.BookingStatus) error {
	if f.booking == nil || f.booking.ID != id {
		return repository.ErrBookingNotFound
	}
	if f.booking.Status != from {
		return repository.ErrStatusChanged
	}
	f.booking.Status = to
	f.updates = append(f.updates, string(from)+"->"+string(to))
	return nil
}

type fakeEvents struct {
	event *model.MeetingEvent
}

func (f *fakeEvents) GetByID(_ context.Context, id uint64) (*model.MeetingEvent, error) {
	if f.event == nil || f.event.ID != id {
		return nil, repository.ErrEventNotFound
	}
	return f.event, nil
}

type fakeNotifier struct {
	sent         []notifier.Message
	failWith     error
	statusAtSend model.BookingStatus
	bookings     *fakeBookings
}

func (f *fakeNotifier) Send(_ context.Context, msg notifier.Message) error {
	if f.bookings != nil && f.bookings.booking != nil {
		f.statusAtSend = f.bookings.booking.Status
	}
	if f.failWith != nil {
		return f.failWith
	}
	f.sent = append(f.sent, msg)
	return nil
}

func verified(t time.Time) *time.Time { return &t }

var calendarEdit = calendar.EventDraft{Location: "Room 12", EndTime: "14:30"}

func fixture() (*fakeBookings, *fakeEvents, *fakeNotifier, *Service) {
	bookings := &fakeBookings{booking: &model.BookingRequest{
		ID:         1,
		EventID:    10,
		ClassID:    "3b",
		ClassName:  "Class 3B",
		Date:       "2026-03-10",
		Time:       "14:00",
		ParentName: "Noa Levi",
		ChildName:  "Dana Levi",
		Email:      "noa@example.org",
		Phone:      "050-0000000",
		Status:     model.StatusPending,
		VerifiedAt: verified(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}}
	events := &fakeEvents{event: &model.MeetingEvent{
		ID:          10,
		Title:       "Spring meetings",
		StartTime:   "09:00",
		EndTime:     "16:00",
		DurationMin: 20,
		BufferMin:   10,
		Active:      true,
		Classes: []model.ClassAssignment{{
			ClassID: "3b", Name: "Class 3B", Included: true,
			Staff: []model.StaffMember{{StaffID: "t1", Name: "R. Cohen", Role: "homeroom"}},
		}},
	}}
	notify := &fakeNotifier{bookings: bookings}
	svc := New(bookings, events, notify, zap.NewNop())
	return bookings, events, notify, svc
}

func TestValidTransition(t *testing.T) {
	allowed := map[[2]model.BookingStatus]bool{
		{model.StatusPending, model.StatusApproved}: true,
		{model.StatusPending, model.StatusRejected}: true,
		{model.StatusApproved, model.StatusPending}: true,
		{model.StatusRejected, model.StatusPending}: true,
	}
	all := []model.BookingStatus{model.StatusPending, model.StatusApproved, model.StatusRejected}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]model.BookingStatus{from, to}]
			if got := ValidTransition(from, to); got != want {
				t.Errorf("ValidTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestDecide_Approve(t *testing.T) {
	bookings, _, notify, svc := fixture()
	res, err := svc.Decide(context.Background(), 1, model.StatusApproved, DecisionDraft{})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if res.Booking.Status != model.StatusApproved {
		t.Errorf("status = %s, want approved", res.Booking.Status)
	}
	if !res.Notified {
		t.Error("expected Notified")
	}
	if bookings.booking.Status != model.StatusApproved {
		t.Errorf("persisted status = %s, want approved", bookings.booking.Status)
	}
	if res.Calendar == nil {
		t.Fatal("expected calendar draft on approval")
	}
	if res.Calendar.StartTime != "14:00" || res.Calendar.EndTime != "14:20" {
		t.Errorf("calendar window %s-%s, want 14:00-14:20 (start + configured duration)",
			res.Calendar.StartTime, res.Calendar.EndTime)
	}
	if res.Calendar.AttendeeEmail != "noa@example.org" {
		t.Errorf("attendee = %s, want booking email", res.Calendar.AttendeeEmail)
	}
	if len(notify.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(notify.sent))
	}
	msg := notify.sent[0]
	if msg.To != "noa@example.org" || msg.Kind != notifier.KindDecision {
		t.Errorf("message to=%s kind=%s", msg.To, msg.Kind)
	}
	if !strings.Contains(msg.Body, "calendar.google.com") {
		t.Error("approval body missing calendar link")
	}
	if msg.CalendarICS == "" {
		t.Error("approval message missing ICS attachment")
	}
}

func TestDecide_PersistsBeforeDispatch(t *testing.T) {
	_, _, notify, svc := fixture()
	if _, err := svc.Decide(context.Background(), 1, model.StatusApproved, DecisionDraft{}); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if notify.statusAtSend != model.StatusApproved {
		t.Errorf("status at dispatch = %s, want approved (persist happens-before notify)", notify.statusAtSend)
	}
}

func TestDecide_DispatchFailureDoesNotRollBack(t *testing.T) {
	bookings, _, notify, svc := fixture()
	notify.failWith = errors.New("smtp relay down")
	res, err := svc.Decide(context.Background(), 1, model.StatusRejected, DecisionDraft{})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if res.Notified {
		t.Error("expected Notified=false on dispatch failure")
	}
	if bookings.booking.Status != model.StatusRejected {
		t.Errorf("persisted status = %s, want rejected despite dispatch failure", bookings.booking.Status)
	}
}

func TestDecide_RejectUsesRejectionDraftWithoutCalendar(t *testing.T) {
	_, _, notify, svc := fixture()
	res, err := svc.Decide(context.Background(), 1, model.StatusRejected, DecisionDraft{})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if res.Calendar != nil {
		t.Error("rejection should not produce a calendar draft")
	}
	if len(notify.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(notify.sent))
	}
	msg := notify.sent[0]
	if msg.CalendarICS != "" {
		t.Error("rejection message should not carry an ICS attachment")
	}
	if !strings.Contains(msg.Body, "cannot hold the meeting") {
		t.Errorf("rejection body not rejection-flavored: %q", msg.Body)
	}
}

func TestDecide_ResetIsBareStatusChange(t *testing.T) {
	bookings, _, notify, svc := fixture()
	bookings.booking.Status = model.StatusApproved
	res, err := svc.Decide(context.Background(), 1, model.StatusPending, DecisionDraft{})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if res.Booking.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", res.Booking.Status)
	}
	if len(notify.sent) != 0 {
		t.Errorf("reset dispatched %d messages, want 0", len(notify.sent))
	}
	if res.Calendar != nil {
		t.Error("reset should not produce a calendar draft")
	}
}

func TestDecide_RejectsIllegalTransitions(t *testing.T) {
	bookings, _, _, svc := fixture()
	bookings.booking.Status = model.StatusApproved
	if _, err := svc.Decide(context.Background(), 1, model.StatusRejected, DecisionDraft{}); err != ErrInvalidTransition {
		t.Errorf("approved->rejected = %v, want ErrInvalidTransition", err)
	}
	bookings.booking.Status = model.StatusPending
	if _, err := svc.Decide(context.Background(), 1, model.BookingStatus("archived"), DecisionDraft{}); err != ErrInvalidTransition {
		t.Errorf("pending->archived = %v, want ErrInvalidTransition", err)
	}
	if len(bookings.updates) != 0 {
		t.Errorf("illegal transitions persisted updates: %v", bookings.updates)
	}
}

func TestDecide_AdminEditsOverrideDefaults(t *testing.T) {
	_, _, notify, svc := fixture()
	res, err := svc.Decide(context.Background(), 1, model.StatusApproved, DecisionDraft{
		Calendar: &calendarEdit,
		Subject:  "See you Tuesday",
		Body:     "Custom body.",
	})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if res.Calendar.Location != "Room 12" {
		t.Errorf("location = %s, want admin edit", res.Calendar.Location)
	}
	if res.Calendar.EndTime != "14:30" {
		t.Errorf("end = %s, want admin edit 14:30", res.Calendar.EndTime)
	}
	// Untouched fields keep their generated defaults.
	if res.Calendar.AttendeeEmail != "noa@example.org" {
		t.Errorf("attendee = %s, want default", res.Calendar.AttendeeEmail)
	}
	msg := notify.sent[0]
	if msg.Subject != "See you Tuesday" {
		t.Errorf("subject = %q, want admin edit", msg.Subject)
	}
	if !strings.HasPrefix(msg.Body, "Custom body.") {
		t.Errorf("body = %q, want admin edit first", msg.Body)
	}
}

func TestDecide_MissingEventFallsBackToDefaults(t *testing.T) {
	_, events, _, svc := fixture()
	events.event = nil
	res, err := svc.Decide(context.Background(), 1, model.StatusApproved, DecisionDraft{})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if res.Calendar.EndTime != "14:30" {
		t.Errorf("end = %s, want 14:30 (30-minute fallback)", res.Calendar.EndTime)
	}
}
