package devicelog

import (
	"context"
	"database/sql"
	"time"
)

// Recorder persists the latest device sighting per student.
type Recorder struct {
	db *sql.DB
}

// NewRecorder creates a recorder.
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// Apply upserts the student's last seen device.
func (r *Recorder) Apply(ctx context.Context, s Sighting) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO device_sightings (student_id, device_id, seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (student_id) DO UPDATE SET device_id = EXCLUDED.device_id, seen_at = EXCLUDED.seen_at
	`, s.StudentID, s.DeviceID, s.SeenAt)
	return err
}

// PruneBefore drops sightings not refreshed since the cutoff.
func (r *Recorder) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM device_sightings WHERE seen_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
