package session

import (
	"context"
	"database/sql"
	"errors"
)

// SQLRepository persists sessions keyed by token.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository creates a repo.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Save writes a new session.
func (r *SQLRepository) Save(ctx context.Context, sess Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_sessions (token, course_id, instructor_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, string(sess.Token), sess.CourseID, sess.InstructorID, sess.CreatedAt)
	return err
}

// FindByToken returns the session for the token, or nil when absent.
func (r *SQLRepository) FindByToken(ctx context.Context, token Token) (*Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT token, course_id, instructor_id, created_at
		FROM attendance_sessions WHERE token = $1
	`, string(token))
	var sess Session
	var tok string
	if err := row.Scan(&tok, &sess.CourseID, &sess.InstructorID, &sess.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	sess.Token = Token(tok)
	return &sess, nil
}

// CountByCourse counts sessions ever held for a course. Sessions are kept
// forever; they expire by time but are never deleted, so this count is the
// denominator of every attendance percentage.
func (r *SQLRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_sessions WHERE course_id = $1`, courseID).Scan(&n)
	return n, err
}
