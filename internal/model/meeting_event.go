package model

import "time"

// MeetingEvent is an administrator-defined bookable period for parent
// meetings.  It spans one or more calendar dates, each sharing the same
// daily time window, and carries the per-class staff assignments that
// the public booking flow displays.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – display title shown to parents.
//  Dates       – ordered calendar dates (YYYY-MM-DD) on which slots exist.
//  StartTime   – daily window start (HH:MM).
//  EndTime     – daily window end (HH:MM); must be after StartTime.
//  DurationMin – length of a single slot in minutes; must be positive.
//  BufferMin   – gap between consecutive slots in minutes.
//  Active      – whether the event is currently open for booking.
//  Classes     – per-class participation and staff assignments.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type MeetingEvent struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Dates       []string          `json:"dates"`
	StartTime   string            `json:"start_time"`
	EndTime     string            `json:"end_time"`
	DurationMin int               `json:"duration_min"`
	BufferMin   int               `json:"buffer_min"`
	Active      bool              `json:"active"`
	Classes     []ClassAssignment `json:"classes"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// HasDate reports whether the event offers slots on the given calendar date.
func (e *MeetingEvent) HasDate(date string) bool {
	for _, d := range e.Dates {
		if d == date {
			return true
		}
	}
	return false
}

// Class returns the assignment for the given class ID, or nil when the
// class is not part of the event.
func (e *MeetingEvent) Class(classID string) *ClassAssignment {
	for i := range e.Classes {
		if e.Classes[i].ClassID == classID {
			return &e.Classes[i]
		}
	}
	return nil
}

// ClassAssignment links a class to a MeetingEvent.  The inclusion flag
// controls whether the class participates at all; excluded classes stay
// attached to the event so administrators can toggle them back on
// without losing the staff list.
type ClassAssignment struct {
	ClassID  string        `json:"class_id"`
	Name     string        `json:"name"`
	Included bool          `json:"included"`
	Staff    []StaffMember `json:"staff"`
}

// StaffMember is one assigned teacher or aide displayed for a class.
type StaffMember struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Branch  string `json:"branch"`
	Icon    string `json:"icon"`
}
