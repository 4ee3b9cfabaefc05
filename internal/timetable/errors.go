package timetable

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the slot does not exist.
	ErrNotFound = errors.New("slot not found")
	// ErrForbidden indicates the requester is neither the owning
	// instructor nor an admin.
	ErrForbidden = errors.New("not allowed to delete this slot")
)

// ValidationError rejects malformed input before any store access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ReferentialError rejects a slot whose course, division, room, or
// instructor assignment does not exist in the directory.
type ReferentialError struct {
	Kind string
	ID   string
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.ID)
}

// ConflictKind names which booking dimension collided.
type ConflictKind string

const (
	RoomBooked       ConflictKind = "room_booked"
	InstructorBooked ConflictKind = "instructor_booked"
)

// ConflictError rejects a proposed slot that overlaps an existing one on
// the same day for the same room or instructor.
type ConflictError struct {
	Kind           ConflictKind
	ExistingSlotID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: overlaps slot %s", e.Kind, e.ExistingSlotID)
}
