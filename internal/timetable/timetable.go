package timetable

import (
	"fmt"
	"time"
)

// Day is a day of the week, 1=Monday through 7=Sunday.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Valid reports whether d is in the Monday..Sunday range.
func (d Day) Valid() bool { return d >= Monday && d <= Sunday }

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("day(%d)", int(d))
	}
	return dayNames[d-1]
}

// DayOf maps an instant to its Day.
func DayOf(t time.Time) Day {
	if wd := t.Weekday(); wd != time.Sunday {
		return Day(wd)
	}
	return Sunday
}

// TimeOfDay is a campus-local time of day with second resolution,
// stored as seconds since midnight.
type TimeOfDay int

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	layout := "15:04"
	if len(s) > len(layout) {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second()), nil
}

// TimeOfDayAt extracts the time of day from an instant.
func TimeOfDayAt(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)/60%60, int(t)%60)
}

// Slot is a recurring weekly class interval for a course and division,
// taught by one instructor in one room. Slots are never mutated; a change
// is a delete followed by a fresh proposal.
type Slot struct {
	ID           string    `json:"id"`
	CourseID     string    `json:"course_id"`
	DivisionID   string    `json:"division_id"`
	InstructorID string    `json:"instructor_id"`
	Day          Day       `json:"day"`
	Start        TimeOfDay `json:"start"`
	End          TimeOfDay `json:"end"`
	RoomID       string    `json:"room_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// overlaps applies half-open interval semantics: [s1,e1) and [s2,e2)
// collide unless one ends at or before the other starts. Back-to-back
// slots therefore never conflict.
func overlaps(s1, e1, s2, e2 TimeOfDay) bool {
	return !(e1 <= s2 || e2 <= s1)
}

// contains reports whether t falls inside [start, end).
func contains(start, end, t TimeOfDay) bool {
	return start <= t && t < end
}
