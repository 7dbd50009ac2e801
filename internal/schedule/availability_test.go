package schedule

import (
	"reflect"
	"testing"
)

func statuses(res []SlotStatus) map[string]Status {
	m := make(map[string]Status, len(res))
	for _, st := range res {
		m[FormatClock(st.Start)] = st.Status
	}
	return m
}

func TestResolve_RevealOnePerSession(t *testing.T) {
	slots := Slots(540, 960, 20, 10)

	t.Run("empty day reveals first slot of each session", func(t *testing.T) {
		got := statuses(Resolve(slots, nil))
		if got["09:00"] != StatusAvailable {
			t.Errorf("09:00 = %s, want available", got["09:00"])
		}
		if got["09:30"] != StatusHidden {
			t.Errorf("09:30 = %s, want hidden", got["09:30"])
		}
		if got["13:30"] != StatusAvailable {
			t.Errorf("13:30 = %s, want available", got["13:30"])
		}
		if got["14:00"] != StatusHidden {
			t.Errorf("14:00 = %s, want hidden", got["14:00"])
		}
	})

	t.Run("booking the revealed slot promotes the next one", func(t *testing.T) {
		got := statuses(Resolve(slots, map[int]bool{540: true}))
		if got["09:00"] != StatusTaken {
			t.Errorf("09:00 = %s, want taken", got["09:00"])
		}
		if got["09:30"] != StatusAvailable {
			t.Errorf("09:30 = %s, want available", got["09:30"])
		}
		if got["10:00"] != StatusHidden {
			t.Errorf("10:00 = %s, want hidden", got["10:00"])
		}
		// Afternoon session is unaffected by morning bookings.
		if got["13:30"] != StatusAvailable {
			t.Errorf("13:30 = %s, want available", got["13:30"])
		}
	})

	t.Run("exactly one available per session while open slots remain", func(t *testing.T) {
		bookedSets := []map[int]bool{
			nil,
			{540: true},
			{540: true, 570: true, 810: true},
			{570: true, 630: true, 840: true, 900: true},
		}
		for _, booked := range bookedSets {
			res := Resolve(slots, booked)
			morning, afternoon := 0, 0
			openMorning, openAfternoon := false, false
			for _, st := range res {
				open := !booked[st.Start]
				if st.Start < SessionSplit {
					openMorning = openMorning || open
					if st.Status == StatusAvailable {
						morning++
					}
				} else {
					openAfternoon = openAfternoon || open
					if st.Status == StatusAvailable {
						afternoon++
					}
				}
			}
			if openMorning && morning != 1 {
				t.Errorf("booked=%v: %d available morning slots, want 1", booked, morning)
			}
			if openAfternoon && afternoon != 1 {
				t.Errorf("booked=%v: %d available afternoon slots, want 1", booked, afternoon)
			}
		}
	})

	t.Run("fully booked session has no available slot", func(t *testing.T) {
		booked := make(map[int]bool)
		for _, s := range slots {
			if s < SessionSplit {
				booked[s] = true
			}
		}
		for _, st := range Resolve(slots, booked) {
			if st.Start < SessionSplit && st.Status != StatusTaken {
				t.Errorf("morning slot %s = %s, want taken", FormatClock(st.Start), st.Status)
			}
		}
	})
}

func TestResolve_ClassifiesEverySlot(t *testing.T) {
	slots := Slots(540, 960, 20, 10)
	res := Resolve(slots, map[int]bool{600: true})
	if len(res) != len(slots) {
		t.Fatalf("resolved %d slots, want %d", len(res), len(slots))
	}
	for i, st := range res {
		if st.Start != slots[i] {
			t.Errorf("slot %d start %d, want %d", i, st.Start, slots[i])
		}
		switch st.Status {
		case StatusAvailable, StatusTaken, StatusHidden:
		default:
			t.Errorf("slot %s has unknown status %q", FormatClock(st.Start), st.Status)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	slots := Slots(540, 960, 20, 10)
	booked := map[int]bool{540: true, 810: true}
	first := Resolve(slots, booked)
	second := Resolve(slots, booked)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("recomputation differs:\n%v\n%v", first, second)
	}
}
