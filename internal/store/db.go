package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB. Postgres via pgx is the production backend; sqlite3
// serves single-node and dev deployments. All SQL in the repositories is
// written to run unchanged on both.
type DB struct {
	Client *sql.DB
}

// NewDB opens a connection with sane defaults and applies the schema.
func NewDB(driver, connString string) (*DB, error) {
	if driver == "" {
		driver = "pgx"
	}
	db, err := sql.Open(driver, connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// migrate applies the schema one statement at a time; the pgx driver does
// not accept multi-statement strings.
func migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS courses (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS divisions (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS enrollments (
			student_id TEXT NOT NULL,
			course_id  TEXT NOT NULL,
			PRIMARY KEY (student_id, course_id)
		)`,
		`CREATE TABLE IF NOT EXISTS teacher_assignments (
			instructor_id TEXT NOT NULL,
			course_id     TEXT NOT NULL,
			PRIMARY KEY (instructor_id, course_id)
		)`,
		`CREATE TABLE IF NOT EXISTS timetable_slots (
			id            TEXT PRIMARY KEY,
			course_id     TEXT NOT NULL,
			division_id   TEXT NOT NULL,
			instructor_id TEXT NOT NULL,
			day           INTEGER NOT NULL,
			start_sec     INTEGER NOT NULL,
			end_sec       INTEGER NOT NULL,
			room_id       TEXT NOT NULL,
			created_at    TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_room_day ON timetable_slots (room_id, day)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_instructor_day ON timetable_slots (instructor_id, day)`,
		`CREATE TABLE IF NOT EXISTS attendance_sessions (
			token         TEXT PRIMARY KEY,
			course_id     TEXT NOT NULL,
			instructor_id TEXT NOT NULL,
			created_at    TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_course ON attendance_sessions (course_id)`,
		`CREATE TABLE IF NOT EXISTS attendance_records (
			id            TEXT PRIMARY KEY,
			student_id    TEXT NOT NULL,
			course_id     TEXT NOT NULL,
			session_token TEXT NOT NULL,
			recorded_at   TIMESTAMP NOT NULL,
			present       BOOLEAN NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_records_student_session ON attendance_records (student_id, session_token)`,
		`CREATE TABLE IF NOT EXISTS device_sightings (
			student_id TEXT PRIMARY KEY,
			device_id  TEXT NOT NULL,
			seen_at    TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
