// Package schedule contains the pure slot arithmetic of the booking
// flow: turning an event's daily window into theoretical slot start
// times and classifying those slots against existing bookings.  Nothing
// in this package touches the database or the clock.
package schedule

import "fmt"

// Times of day are handled as minutes from midnight.  The midday break
// and the morning/afternoon session split are fixed institutional
// policy, not per-event configuration.
const (
	BreakStart   = 12 * 60      // 12:00, start of the midday break
	BreakEnd     = 13*60 + 30   // 13:30, end of the midday break
	SessionSplit = 12*60 + 30   // 12:30, morning/afternoon boundary
	minutesInDay = 24 * 60
)

// ParseClock converts a canonical "HH:MM" string to minutes from
// midnight.  Exactly five characters with zero-padded fields; looser
// forms ("9:30", trailing seconds) are rejected so that equal times can
// never be written as distinct strings.  Times of day are keys in
// booking uniqueness checks, and string-keyed uniqueness only holds
// when every time has exactly one spelling.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	for _, i := range [...]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid clock value %q", s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// Slots returns the ordered theoretical slot start times (minutes from
// midnight) for a single day of the given window.  A slot is emitted
// whenever the full duration fits before end; the cursor then advances
// by duration+buffer.  A cursor landing inside the midday break is
// snapped forward to the break's end without emitting a slot.  The
// result describes what is theoretically offerable and is independent
// of any stored bookings.
//
// A non-positive duration or a non-positive advance step yields an
// empty list so the walk always terminates.
func Slots(start, end, duration, buffer int) []int {
	if duration <= 0 || duration+buffer <= 0 {
		return []int{}
	}
	if start < 0 || end > minutesInDay || start >= end {
		return []int{}
	}
	slots := make([]int, 0, (end-start)/(duration+buffer)+1)
	cur := start
	for cur+duration <= end {
		if cur >= BreakStart && cur < BreakEnd {
			cur = BreakEnd
			continue
		}
		slots = append(slots, cur)
		cur += duration + buffer
	}
	return slots
}
