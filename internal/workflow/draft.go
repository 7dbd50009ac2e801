package workflow

import (
	"fmt"
	"strings"

	"github.com/example/school-meeting-booking/internal/calendar"
	"github.com/example/school-meeting-booking/internal/model"
	"github.com/example/school-meeting-booking/internal/schedule"
)

// fallbackDurationMin is used when the booking's event can no longer
// be resolved and the configured slot duration is unknown.
const fallbackDurationMin = 30

// DefaultCalendarDraft derives the editable calendar draft for an
// approved booking. The end time is the start plus the event's
// configured slot duration; the attendee is the booking's email; the
// description names the class's assigned staff when available.
func DefaultCalendarDraft(b *model.BookingRequest, ev *model.MeetingEvent) calendar.EventDraft {
	duration := fallbackDurationMin
	title := fmt.Sprintf("Parent meeting: %s (%s)", b.ChildName, b.ClassName)
	desc := fmt.Sprintf("Meeting with %s about %s.", b.ParentName, b.ChildName)
	if ev != nil {
		if ev.DurationMin > 0 {
			duration = ev.DurationMin
		}
		if cl := ev.Class(b.ClassID); cl != nil && len(cl.Staff) > 0 {
			names := make([]string, 0, len(cl.Staff))
			for _, st := range cl.Staff {
				names = append(names, st.Name)
			}
			desc += " Staff: " + strings.Join(names, ", ") + "."
		}
	}

	end := b.Time
	if start, err := schedule.ParseClock(b.Time); err == nil {
		end = schedule.FormatClock(start + duration)
	}
	return calendar.EventDraft{
		Title:         title,
		Date:          b.Date,
		StartTime:     b.Time,
		EndTime:       end,
		Description:   desc,
		AttendeeEmail: b.Email,
	}
}

// DraftMessage produces the default correspondence for a decision.
// Administrators edit the result in the UI before confirming; this is
// the first draft, flavored by the target status.
func DraftMessage(b *model.BookingRequest, next model.BookingStatus) (subject, body string) {
	switch next {
	case model.StatusApproved:
		subject = fmt.Sprintf("Your meeting on %s is confirmed", b.Date)
		body = fmt.Sprintf(
			"Dear %s,\n\nYour parent-teacher meeting about %s (%s) is confirmed for %s at %s.\n\nSee you then,\nThe school office",
			b.ParentName, b.ChildName, b.ClassName, b.Date, b.Time)
	case model.StatusRejected:
		subject = "About your meeting request"
		body = fmt.Sprintf(
			"Dear %s,\n\nUnfortunately we cannot hold the meeting about %s (%s) requested for %s at %s. Please pick another slot or contact the school office.\n\nThe school office",
			b.ParentName, b.ChildName, b.ClassName, b.Date, b.Time)
	}
	return subject, body
}
