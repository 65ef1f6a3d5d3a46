package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

// DefaultSuggestionTTL is how long a generated batch stays active
const DefaultSuggestionTTL = 24 * time.Hour

// SuggestionRepository owns the ai_gift_suggestions table
type SuggestionRepository struct {
	db  *DB
	ttl time.Duration
}

// NewSuggestionRepository creates a new suggestion repository. A non-positive
// ttl falls back to DefaultSuggestionTTL.
func NewSuggestionRepository(db *DB, ttl time.Duration) *SuggestionRepository {
	if ttl <= 0 {
		ttl = DefaultSuggestionTTL
	}
	return &SuggestionRepository{db: db, ttl: ttl}
}

// ReplaceActive expires the profile's pending and saved suggestions and then
// inserts the new batch as pending, all in one transaction. Readers never see
// two active batches or a profile with its old batch expired and nothing new.
func (r *SuggestionRepository) ReplaceActive(ctx context.Context, profileID, batchID uuid.UUID, suggestions []models.Suggestion, now time.Time) ([]models.StoredSuggestion, error) {
	expiresAt := now.Add(r.ttl)
	stored := make([]models.StoredSuggestion, 0, len(suggestions))

	activeStatuses := make([]string, len(models.ActiveSuggestionStatuses))
	for i, s := range models.ActiveSuggestionStatuses {
		activeStatuses[i] = string(s)
	}

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE ai_gift_suggestions
			SET status = $1, updated_at = $2
			WHERE profile_id = $3 AND status = ANY($4)
		`, models.SuggestionStatusExpired, now, profileID, pq.Array(activeStatuses))
		if err != nil {
			return fmt.Errorf("failed to expire active suggestions: %w", err)
		}

		insert := `
			INSERT INTO ai_gift_suggestions (
				id, profile_id, title, reason, price, occasion, confidence_score,
				product_link, status, generation_batch_id, expires_at, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		`
		for _, s := range suggestions {
			row := models.StoredSuggestion{
				ID:                uuid.New(),
				ProfileID:         profileID,
				Suggestion:        s,
				Status:            models.SuggestionStatusPending,
				GenerationBatchID: batchID,
				ExpiresAt:         expiresAt,
				CreatedAt:         now,
			}
			_, err := tx.ExecContext(ctx, insert,
				row.ID, row.ProfileID, s.Title, s.Reason, s.Price, s.Occasion, s.ConfidenceScore,
				s.ProductLink, row.Status, row.GenerationBatchID, row.ExpiresAt, row.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert suggestion %q: %w", s.Title, err)
			}
			stored = append(stored, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ListActive returns the profile's pending and saved suggestions
func (r *SuggestionRepository) ListActive(ctx context.Context, profileID uuid.UUID) ([]models.StoredSuggestion, error) {
	activeStatuses := make([]string, len(models.ActiveSuggestionStatuses))
	for i, s := range models.ActiveSuggestionStatuses {
		activeStatuses[i] = string(s)
	}

	query := `
		SELECT id, profile_id, title, reason, price, occasion, confidence_score,
		       product_link, status, generation_batch_id, expires_at, created_at
		FROM ai_gift_suggestions
		WHERE profile_id = $1 AND status = ANY($2)
		ORDER BY confidence_score DESC, created_at DESC
	`
	return queryList(ctx, r.db, "active suggestions", query, func(rows *sql.Rows) (models.StoredSuggestion, error) {
		var s models.StoredSuggestion
		var link sql.NullString
		err := rows.Scan(&s.ID, &s.ProfileID, &s.Title, &s.Reason, &s.Price, &s.Occasion,
			&s.ConfidenceScore, &link, &s.Status, &s.GenerationBatchID, &s.ExpiresAt, &s.CreatedAt)
		if err != nil {
			return s, err
		}
		s.ProductLink = nullString(link)
		return s, nil
	}, profileID, pq.Array(activeStatuses))
}
