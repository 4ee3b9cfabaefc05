package timetable

import (
	"context"
	"database/sql"
	"errors"
)

// SQLRepository persists slots in the shared relational store. Time-of-day
// values are stored as integer seconds since midnight so the same SQL runs
// on both the pgx and sqlite3 drivers.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository creates a repo.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const slotColumns = `id, course_id, division_id, instructor_id, day, start_sec, end_sec, room_id, created_at`

// Insert writes a new slot.
func (r *SQLRepository) Insert(ctx context.Context, slot Slot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timetable_slots (id, course_id, division_id, instructor_id, day, start_sec, end_sec, room_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, slot.ID, slot.CourseID, slot.DivisionID, slot.InstructorID, int(slot.Day), int(slot.Start), int(slot.End), slot.RoomID, slot.CreatedAt)
	return err
}

// Get returns a slot by id, or nil when absent.
func (r *SQLRepository) Get(ctx context.Context, id string) (*Slot, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM timetable_slots WHERE id = $1`, id)
	slot, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Delete removes a slot by id.
func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM timetable_slots WHERE id = $1`, id)
	return err
}

// ListByRoomDay returns all slots for a room on a day.
func (r *SQLRepository) ListByRoomDay(ctx context.Context, roomID string, day Day) ([]Slot, error) {
	return r.list(ctx, `SELECT `+slotColumns+` FROM timetable_slots WHERE room_id = $1 AND day = $2 ORDER BY start_sec`, roomID, int(day))
}

// ListByInstructorDay returns all slots for an instructor on a day.
func (r *SQLRepository) ListByInstructorDay(ctx context.Context, instructorID string, day Day) ([]Slot, error) {
	return r.list(ctx, `SELECT `+slotColumns+` FROM timetable_slots WHERE instructor_id = $1 AND day = $2 ORDER BY start_sec`, instructorID, int(day))
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]Slot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, slot)
	}
	return res, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSlot(row scanner) (Slot, error) {
	var slot Slot
	var day, start, end int
	err := row.Scan(&slot.ID, &slot.CourseID, &slot.DivisionID, &slot.InstructorID, &day, &start, &end, &slot.RoomID, &slot.CreatedAt)
	if err != nil {
		return Slot{}, err
	}
	slot.Day = Day(day)
	slot.Start = TimeOfDay(start)
	slot.End = TimeOfDay(end)
	return slot, nil
}
