package ledger

import (
	"context"
	"database/sql"
)

// SQLRepository stores attendance records behind a unique index on
// (student_id, session_token). Inserts go through ON CONFLICT DO NOTHING
// so a duplicate scan is detected by the store itself, which stays correct
// when two redemptions for the same pair race.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository creates a repo.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Insert writes a record unless one already exists for the same student
// and session.
func (r *SQLRepository) Insert(ctx context.Context, rec Record) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, course_id, session_token, recorded_at, present)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, session_token) DO NOTHING
	`, rec.ID, rec.StudentID, rec.CourseID, rec.SessionToken, rec.RecordedAt, rec.Present)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SummaryFor counts held and attended sessions per course the student is
// enrolled in. Courses without sessions still appear, with zero counts.
func (r *SQLRepository) SummaryFor(ctx context.Context, studentID string) ([]CourseSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.course_id,
		       (SELECT COUNT(*) FROM attendance_sessions s WHERE s.course_id = e.course_id),
		       (SELECT COUNT(*) FROM attendance_records a WHERE a.student_id = e.student_id AND a.course_id = e.course_id)
		FROM enrollments e
		WHERE e.student_id = $1
		ORDER BY e.course_id
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []CourseSummary
	for rows.Next() {
		var row CourseSummary
		if err := rows.Scan(&row.CourseID, &row.TotalSessions, &row.AttendedSessions); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

// ReportFor counts attendance per enrolled student for one course.
func (r *SQLRepository) ReportFor(ctx context.Context, courseID string) ([]StudentReport, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.student_id,
		       (SELECT COUNT(*) FROM attendance_records a WHERE a.student_id = e.student_id AND a.course_id = e.course_id),
		       (SELECT COUNT(*) FROM attendance_sessions s WHERE s.course_id = e.course_id)
		FROM enrollments e
		WHERE e.course_id = $1
		ORDER BY e.student_id
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []StudentReport
	for rows.Next() {
		var row StudentReport
		if err := rows.Scan(&row.StudentID, &row.AttendedSessions, &row.TotalSessions); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}
