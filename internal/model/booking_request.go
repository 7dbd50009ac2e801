package model

import "time"

// BookingStatus enumerates the review states of a BookingRequest.
type BookingStatus string

const (
	StatusPending  BookingStatus = "pending"
	StatusApproved BookingStatus = "approved"
	StatusRejected BookingStatus = "rejected"
)

// Valid reports whether s is one of the known review states.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// BookingRequest is a parent's claim on a single slot of a MeetingEvent.
// A request starts as pending and unverified; it becomes actionable for
// administrators only once the parent confirms the emailed code, which
// stamps VerifiedAt.  Status is mutated exclusively through the approval
// workflow; all other fields are immutable after creation.
//
// The tuple (EventID, ClassID, Date, Time) is unique among non-rejected
// requests; the repository enforces this with a transactional
// check-and-insert.
type BookingRequest struct {
	ID         uint64        `json:"id"`
	EventID    uint64        `json:"event_id"`
	ClassID    string        `json:"class_id"`
	ClassName  string        `json:"class_name"`
	Date       string        `json:"date"`
	Time       string        `json:"time"`
	ParentName string        `json:"parent_name"`
	ChildName  string        `json:"child_name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone"`
	Status     BookingStatus `json:"status"`
	Extras     []FieldAnswer `json:"extras,omitempty"`
	VerifiedAt *time.Time    `json:"verified_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Verified reports whether the parent has confirmed the booking by code.
func (b *BookingRequest) Verified() bool { return b.VerifiedAt != nil }

// BookedSlot is the occupancy tuple consumed by the availability
// resolver: one non-rejected request claims one (date, class, time).
type BookedSlot struct {
	Date    string `json:"date"`
	ClassID string `json:"class_id"`
	Time    string `json:"time"`
}
