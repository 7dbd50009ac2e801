package calendar

import (
	"strings"
	"testing"
)

func draft() EventDraft {
	return EventDraft{
		Title:         "Parent meeting: Dana Levi, class 3B",
		Date:          "2026-03-10",
		StartTime:     "14:00",
		EndTime:       "14:20",
		Location:      "Room 12; main building",
		Description:   "Meeting with the homeroom teacher.\nPlease arrive early.",
		AttendeeEmail: "parent@example.org",
	}
}

func TestICS(t *testing.T) {
	ics, err := draft().ICS()
	if err != nil {
		t.Fatalf("ICS: %v", err)
	}
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"DTSTART:20260310T140000",
		"DTEND:20260310T142000",
		"SUMMARY:Parent meeting: Dana Levi\\, class 3B",
		"LOCATION:Room 12\\; main building",
		"DESCRIPTION:Meeting with the homeroom teacher.\\nPlease arrive early.",
		"ATTENDEE;ROLE=REQ-PARTICIPANT;RSVP=TRUE:mailto:parent@example.org",
		"END:VEVENT",
		"END:VCALENDAR",
	} {
		if !strings.Contains(ics, want) {
			t.Errorf("ICS output missing %q:\n%s", want, ics)
		}
	}
	if !strings.Contains(ics, "UID:") {
		t.Error("ICS output missing UID")
	}
	if !strings.HasSuffix(ics, "\r\n") {
		t.Error("ICS output must end with CRLF")
	}
}

func TestICSUIDsAreUnique(t *testing.T) {
	a, err := draft().ICS()
	if err != nil {
		t.Fatalf("ICS: %v", err)
	}
	b, err := draft().ICS()
	if err != nil {
		t.Fatalf("ICS: %v", err)
	}
	uid := func(s string) string {
		for _, l := range strings.Split(s, "\r\n") {
			if strings.HasPrefix(l, "UID:") {
				return l
			}
		}
		return ""
	}
	if ua, ub := uid(a), uid(b); ua == "" || ua == ub {
		t.Errorf("UIDs not unique: %q vs %q", ua, ub)
	}
}

func TestICSRejectsBadTimes(t *testing.T) {
	d := draft()
	d.EndTime = "13:00"
	if _, err := d.ICS(); err == nil {
		t.Error("expected error for end before start")
	}
	d = draft()
	d.Date = "10/03/2026"
	if _, err := d.ICS(); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestGoogleLink(t *testing.T) {
	link, err := draft().GoogleLink()
	if err != nil {
		t.Fatalf("GoogleLink: %v", err)
	}
	if !strings.HasPrefix(link, "https://calendar.google.com/calendar/render?") {
		t.Fatalf("unexpected link prefix: %s", link)
	}
	if !strings.Contains(link, "dates=20260310T140000%2F20260310T142000") {
		t.Errorf("link missing dates parameter: %s", link)
	}
	if !strings.Contains(link, "action=TEMPLATE") {
		t.Errorf("link missing action parameter: %s", link)
	}
}
