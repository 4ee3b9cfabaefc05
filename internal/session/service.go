package session

import (
	"context"
	"errors"
	"time"

	"rollcall/internal/clock"
	"rollcall/internal/directory"
	"rollcall/internal/ledger"
	"rollcall/internal/timetable"
)

// Repository persists sessions. FindByToken returns (nil, nil) when no
// session exists for the token.
type Repository interface {
	Save(ctx context.Context, sess Session) error
	FindByToken(ctx context.Context, token Token) (*Session, error)
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

// Timetable is the slice of the timetable service the session manager
// needs: what is this instructor teaching right now.
type Timetable interface {
	ActiveSlotsFor(ctx context.Context, instructorID string, at time.Time) ([]timetable.Slot, error)
}

// Service mints time-bounded sessions and validates scans against them.
type Service struct {
	repo      Repository
	cache     *Cache // nil when redis is not wired
	timetable Timetable
	dir       directory.Directory
	ledger    *ledger.Service
	clock     clock.Clock
	window    time.Duration
}

// NewService creates a session manager. A nil cache disables the redis
// fast path; window <= 0 falls back to DefaultWindow.
func NewService(repo Repository, cache *Cache, tt Timetable, dir directory.Directory, led *ledger.Service, clk clock.Clock, window time.Duration) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		timetable: tt,
		dir:       dir,
		ledger:    led,
		clock:     clk,
		window:    window,
	}
}

// Window returns the configured validity window.
func (s *Service) Window() time.Duration { return s.window }

// Mint creates a session for a course the instructor is teaching at this
// exact instant, per the timetable. The slot only gates the mint; it is
// not referenced afterwards.
func (s *Service) Mint(ctx context.Context, courseID, instructorID string) (View, error) {
	now := s.clock.Now()
	active, err := s.timetable.ActiveSlotsFor(ctx, instructorID, now)
	if err != nil {
		return View{}, err
	}
	teaching := false
	for _, slot := range active {
		if slot.CourseID == courseID {
			teaching = true
			break
		}
	}
	if !teaching {
		return View{}, ErrNotCurrentlyScheduled
	}

	token, err := NewToken()
	if err != nil {
		return View{}, err
	}
	sess := Session{
		Token:        token,
		CourseID:     courseID,
		InstructorID: instructorID,
		CreatedAt:    now,
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return View{}, err
	}
	s.cache.Put(ctx, sess, s.window)
	return s.view(sess), nil
}

// Redeem marks the student present for the session behind the token. The
// checks run in order: window, enrollment, then the ledger's at-most-once
// insert. Every failure is terminal; the caller rescans or gives up.
func (s *Service) Redeem(ctx context.Context, token Token, studentID string) (string, error) {
	now := s.clock.Now()
	sess, err := s.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	if sess == nil || sess.expired(now, s.window) {
		return "", ErrInvalidOrExpired
	}

	enrolled, err := s.dir.IsEnrolled(ctx, studentID, sess.CourseID)
	if err != nil {
		return "", err
	}
	if !enrolled {
		return "", ErrNotEnrolled
	}

	recordID, err := s.ledger.Record(ctx, studentID, string(token), sess.CourseID, now)
	if errors.Is(err, ledger.ErrDuplicate) {
		return "", ErrAlreadyMarked
	}
	if err != nil {
		return "", err
	}
	return recordID, nil
}

// Display re-fetches a minted session for the instructor's page refresh,
// without minting a new one.
func (s *Service) Display(ctx context.Context, token Token, viewerID string, viewerIsAdmin bool) (View, error) {
	sess, err := s.lookup(ctx, token)
	if err != nil {
		return View{}, err
	}
	if sess == nil {
		return View{}, ErrNotFound
	}
	if !viewerIsAdmin && sess.InstructorID != viewerID {
		return View{}, ErrForbidden
	}
	if sess.expired(s.clock.Now(), s.window) {
		return View{}, ErrExpired
	}
	return s.view(*sess), nil
}

// lookup tries the cache first and falls back to the store.
func (s *Service) lookup(ctx context.Context, token Token) (*Session, error) {
	if sess := s.cache.Get(ctx, token); sess != nil {
		return sess, nil
	}
	return s.repo.FindByToken(ctx, token)
}

func (s *Service) view(sess Session) View {
	return View{
		Token:        sess.Token,
		CourseID:     sess.CourseID,
		InstructorID: sess.InstructorID,
		CreatedAt:    sess.CreatedAt,
		ExpiresAt:    sess.CreatedAt.Add(s.window),
	}
}
