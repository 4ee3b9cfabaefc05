package clock

import "time"

// Clock is the time source injected into every component that makes
// scheduling or expiry decisions, so tests can pin the instant.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

// Now returns the current UTC time.
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always reports the same instant. Advance moves it forward.
type Fixed struct {
	T time.Time
}

// NewFixed pins the clock at t.
func NewFixed(t time.Time) *Fixed { return &Fixed{T: t} }

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time { return f.T }

// Advance moves the pinned instant forward by d.
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }
