// Package notifier is the outbound-correspondence edge of the service.
// The core never talks SMTP or calendar APIs directly: it hands a
// Message to a Notifier and treats the result as success or failure.
package notifier

// Message is one piece of outbound correspondence: a verification
// code, a login code, or a decision letter with an optional calendar
// attachment.
type Message struct {
	Kind        string `json:"kind"` // "verification", "admin_login", "decision"
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	BookingID   uint64 `json:"booking_id,omitempty"`
	CalendarICS string `json:"calendar_ics,omitempty"`
	QueuedAt    string `json:"queued_at"`
}

const (
	KindVerification = "verification"
	KindAdminLogin   = "admin_login"
	KindDecision     = "decision"
)
