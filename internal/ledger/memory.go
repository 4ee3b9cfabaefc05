package ledger

import (
	"context"
	"sync"

	"rollcall/internal/directory"
)

// SessionCounter supplies the number of sessions held per course; the
// in-memory session repository implements it.
type SessionCounter interface {
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

// MemoryRepository keeps records in maps, for tests and embedded dev runs.
// Enrollment and session counts come from the injected collaborators, the
// same shape the SQL joins take them from.
type MemoryRepository struct {
	dir      directory.Directory
	sessions SessionCounter

	mu      sync.Mutex
	byPair  map[[2]string]Record // (studentID, sessionToken)
	records []Record
}

// NewMemoryRepository creates an empty in-memory repo.
func NewMemoryRepository(dir directory.Directory, sessions SessionCounter) *MemoryRepository {
	return &MemoryRepository{
		dir:      dir,
		sessions: sessions,
		byPair:   make(map[[2]string]Record),
	}
}

// Insert adds a record unless the (student, session) pair is taken. The
// map update happens under one lock, mirroring the unique-index semantics
// of the SQL repo.
func (r *MemoryRepository) Insert(_ context.Context, rec Record) (bool, error) {
	key := [2]string{rec.StudentID, rec.SessionToken}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPair[key]; exists {
		return false, nil
	}
	r.byPair[key] = rec
	r.records = append(r.records, rec)
	return true, nil
}

func (r *MemoryRepository) SummaryFor(ctx context.Context, studentID string) ([]CourseSummary, error) {
	courses, err := r.dir.CoursesFor(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var res []CourseSummary
	for _, courseID := range courses {
		total, err := r.sessions.CountByCourse(ctx, courseID)
		if err != nil {
			return nil, err
		}
		res = append(res, CourseSummary{
			CourseID:         courseID,
			TotalSessions:    total,
			AttendedSessions: r.countRecords(studentID, courseID),
		})
	}
	return res, nil
}

func (r *MemoryRepository) ReportFor(ctx context.Context, courseID string) ([]StudentReport, error) {
	total, err := r.sessions.CountByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	students, err := r.dir.StudentsIn(ctx, courseID)
	if err != nil {
		return nil, err
	}
	var res []StudentReport
	for _, studentID := range students {
		res = append(res, StudentReport{
			StudentID:        studentID,
			AttendedSessions: r.countRecords(studentID, courseID),
			TotalSessions:    total,
		})
	}
	return res, nil
}

func (r *MemoryRepository) countRecords(studentID, courseID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.StudentID == studentID && rec.CourseID == courseID {
			n++
		}
	}
	return n
}
