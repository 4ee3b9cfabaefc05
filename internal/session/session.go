// Package session mints and redeems the short-lived tokens that stand for
// "this course is being taught right now".
package session

import (
	"errors"
	"time"
)

// DefaultWindow is how long a minted session stays redeemable.
const DefaultWindow = 15 * time.Minute

var (
	// ErrNotCurrentlyScheduled rejects minting when no active timetable
	// slot ties the instructor to the course at this instant.
	ErrNotCurrentlyScheduled = errors.New("no active timetable slot for this course and instructor")
	// ErrInvalidOrExpired rejects a scan whose token is unknown or past
	// its validity window.
	ErrInvalidOrExpired = errors.New("session token invalid or expired")
	// ErrNotEnrolled rejects a scan by a student not registered in the
	// session's course.
	ErrNotEnrolled = errors.New("student not enrolled in this course")
	// ErrAlreadyMarked rejects a second scan by the same student.
	ErrAlreadyMarked = errors.New("attendance already marked for this session")
	// ErrNotFound indicates no session exists for the token.
	ErrNotFound = errors.New("session not found")
	// ErrForbidden indicates the viewer is neither the minting
	// instructor nor an admin.
	ErrForbidden = errors.New("not allowed to view this session")
	// ErrExpired indicates the session exists but its window has passed.
	ErrExpired = errors.New("session expired")
)

// Session ties a token to the course and instructor it was minted for. The
// timetable slot that justified the mint is not stored; it was only a
// precondition, and the session stays redeemable for its whole window even
// if that slot is deleted afterwards.
type Session struct {
	Token        Token     `json:"token"`
	CourseID     string    `json:"course_id"`
	InstructorID string    `json:"instructor_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// expired applies the validity window lazily; nothing sweeps sessions at
// the moment they lapse.
func (s Session) expired(now time.Time, window time.Duration) bool {
	return now.Sub(s.CreatedAt) > window
}

// View is the renderable shape of a session, with the derived expiry.
type View struct {
	Token        Token     `json:"token"`
	CourseID     string    `json:"course_id"`
	InstructorID string    `json:"instructor_id"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}
