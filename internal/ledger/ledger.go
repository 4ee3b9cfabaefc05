// Package ledger records attendance facts, at most one per student and
// session, and aggregates them into per-student and per-course reports.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrDuplicate indicates the student already holds a record for this
// session.
var ErrDuplicate = errors.New("attendance already recorded for this session")

// Record is one attendance fact. It is created exactly once per successful
// scan and never mutated.
type Record struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	CourseID     string    `json:"course_id"`
	SessionToken string    `json:"session_token"`
	RecordedAt   time.Time `json:"recorded_at"`
	Present      bool      `json:"present"`
}

// CourseSummary is one row of a student's attendance summary.
type CourseSummary struct {
	CourseID         string  `json:"course_id"`
	TotalSessions    int     `json:"total_sessions"`
	AttendedSessions int     `json:"attended_sessions"`
	Percentage       float64 `json:"percentage"`
}

// StudentReport is one row of a course's attendance report.
type StudentReport struct {
	StudentID        string  `json:"student_id"`
	AttendedSessions int     `json:"attended_sessions"`
	TotalSessions    int     `json:"total_sessions"`
	Percentage       float64 `json:"percentage"`
}

// Repository persists records. Insert reports inserted=false when a record
// for (StudentID, SessionToken) already exists; that check is backed by a
// uniqueness constraint in the store, not application logic, so concurrent
// duplicate scans cannot both land. The aggregate queries return raw
// counts; percentages are filled in by the Service.
type Repository interface {
	Insert(ctx context.Context, rec Record) (inserted bool, err error)
	SummaryFor(ctx context.Context, studentID string) ([]CourseSummary, error)
	ReportFor(ctx context.Context, courseID string) ([]StudentReport, error)
}

// Service is the uniqueness-enforcing write path plus read aggregations.
type Service struct {
	repo Repository
}

// NewService creates a ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record persists one attendance fact and returns its ID, or ErrDuplicate
// when the student already scanned this session.
func (s *Service) Record(ctx context.Context, studentID, sessionToken, courseID string, now time.Time) (string, error) {
	rec := Record{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		CourseID:     courseID,
		SessionToken: sessionToken,
		RecordedAt:   now,
		Present:      true,
	}
	inserted, err := s.repo.Insert(ctx, rec)
	if err != nil {
		return "", err
	}
	if !inserted {
		return "", ErrDuplicate
	}
	return rec.ID, nil
}

// SummaryFor reports the student's attendance per enrolled course.
func (s *Service) SummaryFor(ctx context.Context, studentID string) ([]CourseSummary, error) {
	rows, err := s.repo.SummaryFor(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Percentage = percentage(rows[i].AttendedSessions, rows[i].TotalSessions)
	}
	return rows, nil
}

// ReportFor reports per-student attendance for a course.
func (s *Service) ReportFor(ctx context.Context, courseID string) ([]StudentReport, error) {
	rows, err := s.repo.ReportFor(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Percentage = percentage(rows[i].AttendedSessions, rows[i].TotalSessions)
	}
	return rows, nil
}

// percentage guards the zero-session case: a course with no held sessions
// reports 0, never a division by zero.
func percentage(attended, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(attended) / float64(total) * 100
}
