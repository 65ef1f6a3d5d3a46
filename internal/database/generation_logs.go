package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

// GenerationLogRepository appends to gift_generation_logs. Rows are never
// updated or deleted.
type GenerationLogRepository struct {
	db *DB
}

// NewGenerationLogRepository creates a new generation log repository
func NewGenerationLogRepository(db *DB) *GenerationLogRepository {
	return &GenerationLogRepository{db: db}
}

// Append writes one log row. ID and CreatedAt are filled in when zero.
func (r *GenerationLogRepository) Append(ctx context.Context, entry *models.GenerationLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO gift_generation_logs (
			id, profile_id, generation_batch_id, suggestions_count, duration_ms, model,
			prompt_tokens, completion_tokens, cost, status, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.ProfileID, entry.BatchID, entry.SuggestionsCount, entry.DurationMS, entry.Model,
		entry.PromptTokens, entry.CompletionTokens, entry.Cost, entry.Status, entry.ErrorMessage, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append generation log: %w", err)
	}
	return nil
}

// ListByProfile returns the most recent log rows for a profile
func (r *GenerationLogRepository) ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]models.GenerationLogEntry, error) {
	query := `
		SELECT id, profile_id, generation_batch_id, suggestions_count, duration_ms, model,
		       prompt_tokens, completion_tokens, cost, status, error_message, created_at
		FROM gift_generation_logs
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return queryList(ctx, r.db, "generation logs", query, func(rows *sql.Rows) (models.GenerationLogEntry, error) {
		var e models.GenerationLogEntry
		var msg sql.NullString
		err := rows.Scan(&e.ID, &e.ProfileID, &e.BatchID, &e.SuggestionsCount, &e.DurationMS, &e.Model,
			&e.PromptTokens, &e.CompletionTokens, &e.Cost, &e.Status, &msg, &e.CreatedAt)
		if err != nil {
			return e, err
		}
		e.ErrorMessage = nullString(msg)
		return e, nil
	}, profileID, limit)
}
