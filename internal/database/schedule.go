package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

// ScheduleRepository reads gift_generation_schedule and advances it via
// update_generation_schedule
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Get returns the profile's schedule entry, or ErrNotFound if it has never run
func (r *ScheduleRepository) Get(ctx context.Context, profileID uuid.UUID) (*models.GenerationScheduleEntry, error) {
	query := `
		SELECT profile_id, last_run_at, next_run_at, last_success, consecutive_failures, updated_at
		FROM gift_generation_schedule
		WHERE profile_id = $1
	`
	e := &models.GenerationScheduleEntry{}
	var lastRun sql.NullTime
	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&e.ProfileID, &lastRun, &e.NextRunAt, &e.LastSuccess, &e.ConsecutiveFailures, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get generation schedule: %w", err)
	}
	if lastRun.Valid {
		t := lastRun.Time
		e.LastRunAt = &t
	}
	return e, nil
}

// Advance records an attempt through the update_generation_schedule
// procedure, which owns the row layout and the next-run arithmetic. The
// interval is passed in whole hours.
func (r *ScheduleRepository) Advance(ctx context.Context, profileID uuid.UUID, success bool, interval time.Duration) error {
	hours := int(interval / time.Hour)
	if hours < 1 {
		hours = 1
	}
	if _, err := r.db.ExecContext(ctx, `SELECT update_generation_schedule($1, $2, $3)`, profileID, success, hours); err != nil {
		return fmt.Errorf("failed to advance generation schedule: %w", err)
	}
	return nil
}

// Due lists profiles eligible for generation, as decided by the
// get_profiles_needing_generation() database function.
func (r *ScheduleRepository) Due(ctx context.Context, limit int) ([]uuid.UUID, error) {
	query := `SELECT profile_id FROM get_profiles_needing_generation() LIMIT $1`
	return queryList(ctx, r.db, "due profiles", query, func(rows *sql.Rows) (uuid.UUID, error) {
		var id uuid.UUID
		err := rows.Scan(&id)
		return id, err
	}, limit)
}
