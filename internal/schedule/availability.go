package schedule

// Status classifies one theoretical slot against existing bookings.
type Status string

const (
	// StatusAvailable marks the single slot per session currently
	// offered to parents.
	StatusAvailable Status = "available"
	// StatusTaken marks a slot already claimed by a non-rejected
	// booking.
	StatusTaken Status = "taken"
	// StatusHidden marks an open slot that is deliberately withheld
	// until the earlier available slot of its session is booked.
	StatusHidden Status = "hidden"
)

// SlotStatus pairs a theoretical slot start (minutes from midnight)
// with its resolved status.
type SlotStatus struct {
	Start  int
	Status Status
}

// Resolve classifies every theoretical slot of a day for one class.
// booked holds the start times already claimed for that (date, class).
//
// The day splits into a morning and an afternoon session at 12:30.
// Within each session, slots are walked chronologically: booked slots
// are taken, the first open slot is available, and every later open
// slot is hidden.  Surfacing only the next open appointment per
// half-day keeps bookings evenly spaced; hidden slots stay in the
// sequence so the next recomputation promotes one of them once the
// available slot is claimed.
//
// Resolve is a pure function of its inputs: identical inputs always
// produce the identical classification, so callers recompute it on
// every read instead of caching.
func Resolve(slots []int, booked map[int]bool) []SlotStatus {
	out := make([]SlotStatus, 0, len(slots))
	revealedMorning := false
	revealedAfternoon := false
	for _, s := range slots {
		st := SlotStatus{Start: s}
		switch {
		case booked[s]:
			st.Status = StatusTaken
		case s < SessionSplit && !revealedMorning:
			st.Status = StatusAvailable
			revealedMorning = true
		case s >= SessionSplit && !revealedAfternoon:
			st.Status = StatusAvailable
			revealedAfternoon = true
		default:
			st.Status = StatusHidden
		}
		out = append(out, st)
	}
	return out
}
