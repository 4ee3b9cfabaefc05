package timetable

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", TimeOfDay(9 * 3600), false},
		{"23:59:59", TimeOfDay(23*3600 + 59*60 + 59), false},
		{"00:00", TimeOfDay(0), false},
		{"9am", 0, true},
		{"25:00", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestDayOf(t *testing.T) {
	// 2026-03-02 is a Monday, 2026-03-08 a Sunday.
	if d := DayOf(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)); d != Monday {
		t.Errorf("expected Monday, got %s", d)
	}
	if d := DayOf(time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)); d != Sunday {
		t.Errorf("expected Sunday, got %s", d)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	ten, _ := ParseTimeOfDay("10:00")
	eleven, _ := ParseTimeOfDay("11:00")
	noon, _ := ParseTimeOfDay("12:00")
	half, _ := ParseTimeOfDay("10:30")

	if overlaps(ten, eleven, eleven, noon) {
		t.Error("touching intervals must not overlap")
	}
	if !overlaps(ten, eleven, half, noon) {
		t.Error("straddling intervals must overlap")
	}
	if !overlaps(ten, noon, half, eleven) {
		t.Error("contained interval must overlap")
	}
}
