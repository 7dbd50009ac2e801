package schedule

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "09:00", want: 540},
		{in: "00:00", want: 0},
		{in: "23:59", want: 1439},
		{in: "12:30", want: 750},
		{in: "24:00", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "nope", wantErr: true},
		{in: "9:30", wantErr: true},
		{in: "09:30:59", wantErr: true},
		{in: "09-30", wantErr: true},
		{in: " 9:30", wantErr: true},
		{in: "09:3", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
		if back := FormatClock(got); back != tc.in {
			t.Errorf("FormatClock(%d) = %q, want %q", got, back, tc.in)
		}
	}
}

func TestParseClock_SingleSpellingPerTime(t *testing.T) {
	// Booking uniqueness is keyed on the time string, so every time of
	// day must have exactly one accepted spelling.
	min, err := ParseClock("09:30")
	if err != nil || min != 570 {
		t.Fatalf("ParseClock(09:30) = %d, %v; want 570", min, err)
	}
	for _, v := range []string{"9:30", "09:30:00", "9:3", "009:30"} {
		if got, err := ParseClock(v); err == nil {
			t.Errorf("ParseClock(%q) = %d, accepted a second spelling of the same time", v, got)
		}
	}
	if back := FormatClock(min); back != "09:30" {
		t.Errorf("FormatClock(570) = %q, want 09:30", back)
	}
}

func TestSlots_StandardDay(t *testing.T) {
	// 09:00-16:00, 20 minute slots, 10 minute buffer.  The 12:00
	// cursor lands inside the break and snaps to 13:30.
	got := Slots(540, 960, 20, 10)
	want := []string{
		"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
		"13:30", "14:00", "14:30", "15:00", "15:30",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if FormatClock(got[i]) != w {
			t.Errorf("slot %d = %s, want %s", i, FormatClock(got[i]), w)
		}
	}
}

func TestSlots_NeverInsideBreakAndWithinWindow(t *testing.T) {
	windows := []struct{ start, end, dur, buf int }{
		{540, 960, 20, 10},
		{540, 960, 15, 0},
		{480, 1020, 45, 5},
		{600, 840, 30, 30},
		{700, 900, 25, 5},
	}
	for _, w := range windows {
		for _, s := range Slots(w.start, w.end, w.dur, w.buf) {
			if s >= BreakStart && s < BreakEnd {
				t.Errorf("window %+v: slot %s starts inside the midday break", w, FormatClock(s))
			}
			if s+w.dur > w.end {
				t.Errorf("window %+v: slot %s overruns the daily window", w, FormatClock(s))
			}
			if s < w.start {
				t.Errorf("window %+v: slot %s precedes the window", w, FormatClock(s))
			}
		}
	}
}

func TestSlots_Ordered(t *testing.T) {
	slots := Slots(540, 960, 20, 10)
	for i := 1; i < len(slots); i++ {
		if slots[i] <= slots[i-1] {
			t.Fatalf("slots out of order at %d: %v", i, slots)
		}
	}
}

func TestSlots_NonPositiveStepTerminates(t *testing.T) {
	cases := []struct{ dur, buf int }{
		{0, 10},
		{-5, 10},
		{20, -20},
		{10, -30},
	}
	for _, tc := range cases {
		if got := Slots(540, 960, tc.dur, tc.buf); len(got) != 0 {
			t.Errorf("Slots(dur=%d buf=%d) = %v, want empty", tc.dur, tc.buf, got)
		}
	}
}

func TestSlots_DegenerateWindow(t *testing.T) {
	if got := Slots(960, 540, 20, 10); len(got) != 0 {
		t.Errorf("inverted window produced slots: %v", got)
	}
	if got := Slots(540, 540, 20, 10); len(got) != 0 {
		t.Errorf("empty window produced slots: %v", got)
	}
	// A slot that exactly fills the window is still emitted.
	got := Slots(540, 560, 20, 10)
	if len(got) != 1 || got[0] != 540 {
		t.Errorf("exact-fit window: got %v, want [540]", got)
	}
}
