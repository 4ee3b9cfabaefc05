package directory

import (
	"context"
	"database/sql"
	"errors"
)

// SQL reads the roster tables (courses, divisions, rooms, enrollments,
// teacher_assignments) written by the registration side of the application.
type SQL struct {
	db *sql.DB
}

// NewSQL creates a directory over the shared database.
func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func (d *SQL) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	return d.exists(ctx, `SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
}

func (d *SQL) IsAssigned(ctx context.Context, instructorID, courseID string) (bool, error) {
	return d.exists(ctx, `SELECT 1 FROM teacher_assignments WHERE instructor_id = $1 AND course_id = $2`, instructorID, courseID)
}

func (d *SQL) CourseExists(ctx context.Context, courseID string) (bool, error) {
	return d.exists(ctx, `SELECT 1 FROM courses WHERE id = $1`, courseID)
}

func (d *SQL) DivisionExists(ctx context.Context, divisionID string) (bool, error) {
	return d.exists(ctx, `SELECT 1 FROM divisions WHERE id = $1`, divisionID)
}

func (d *SQL) RoomExists(ctx context.Context, roomID string) (bool, error) {
	return d.exists(ctx, `SELECT 1 FROM rooms WHERE id = $1`, roomID)
}

func (d *SQL) CoursesFor(ctx context.Context, studentID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT course_id FROM enrollments WHERE student_id = $1 ORDER BY course_id`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var courses []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		courses = append(courses, id)
	}
	return courses, rows.Err()
}

func (d *SQL) StudentsIn(ctx context.Context, courseID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT student_id FROM enrollments WHERE course_id = $1 ORDER BY student_id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		students = append(students, id)
	}
	return students, rows.Err()
}

func (d *SQL) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
