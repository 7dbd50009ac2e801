// Package calendar renders the ephemeral calendar-event draft produced
// by the approval workflow: a downloadable ICS invitation and a
// prefilled external-calendar link. Drafts are never persisted.
package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventDraft is the editable representation of an approved booking as
// a calendar entry. Date is YYYY-MM-DD; StartTime and EndTime are
// HH:MM in the institution's local time.
type EventDraft struct {
	Title         string `json:"title"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	AttendeeEmail string `json:"attendee_email"`
}

const stampLayout = "20060102T150405"

// parseLocal combines the draft's date and an HH:MM value into a
// floating local timestamp.
func parseLocal(date, clock string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", date+" "+clock)
}

// escapeText escapes commas, semicolons, backslashes and newlines per
// RFC 5545 §3.3.11.
func escapeText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", ";", "\\;", ",", "\\,", "\r\n", "\\n", "\n", "\\n")
	return r.Replace(s)
}

// ICS renders the draft as a VCALENDAR document with a single VEVENT.
// Times are written floating (no zone suffix): the school operates in
// one fixed institutional timezone and the invite is read in it.
func (d EventDraft) ICS() (string, error) {
	start, err := parseLocal(d.Date, d.StartTime)
	if err != nil {
		return "", fmt.Errorf("calendar draft start: %w", err)
	}
	end, err := parseLocal(d.Date, d.EndTime)
	if err != nil {
		return "", fmt.Errorf("calendar draft end: %w", err)
	}
	if !end.After(start) {
		return "", fmt.Errorf("calendar draft end %s not after start %s", d.EndTime, d.StartTime)
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\r\n")
	}
	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//school-meeting-booking//EN")
	line("METHOD:REQUEST")
	line("BEGIN:VEVENT")
	line("UID:" + uuid.NewString())
	line("DTSTAMP:" + time.Now().UTC().Format(stampLayout) + "Z")
	line("DTSTART:" + start.Format(stampLayout))
	line("DTEND:" + end.Format(stampLayout))
	line("SUMMARY:" + escapeText(d.Title))
	if d.Location != "" {
		line("LOCATION:" + escapeText(d.Location))
	}
	if d.Description != "" {
		line("DESCRIPTION:" + escapeText(d.Description))
	}
	if d.AttendeeEmail != "" {
		line("ATTENDEE;ROLE=REQ-PARTICIPANT;RSVP=TRUE:mailto:" + d.AttendeeEmail)
	}
	line("END:VEVENT")
	line("END:VCALENDAR")
	return b.String(), nil
}

// GoogleLink returns a prefilled Google Calendar "add event" URL for
// the draft, appended to approval messages so parents can save the
// meeting with one click.
func (d EventDraft) GoogleLink() (string, error) {
	start, err := parseLocal(d.Date, d.StartTime)
	if err != nil {
		return "", fmt.Errorf("calendar draft start: %w", err)
	}
	end, err := parseLocal(d.Date, d.EndTime)
	if err != nil {
		return "", fmt.Errorf("calendar draft end: %w", err)
	}
	v := url.Values{}
	v.Set("action", "TEMPLATE")
	v.Set("text", d.Title)
	v.Set("dates", start.Format(stampLayout)+"/"+end.Format(stampLayout))
	if d.Location != "" {
		v.Set("location", d.Location)
	}
	if d.Description != "" {
		v.Set("details", d.Description)
	}
	return "https://calendar.google.com/calendar/render?" + v.Encode(), nil
}
