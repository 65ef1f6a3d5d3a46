package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/ulule/limiter/v3"
)

// RatelimitConfigRepository stores per-scope limiter rates
type RatelimitConfigRepository struct {
	db *DB
}

// NewRatelimitConfigRepository creates a new ratelimit config repository
func NewRatelimitConfigRepository(db *DB) *RatelimitConfigRepository {
	return &RatelimitConfigRepository{db: db}
}

// Get returns the rate for scope, or nil when none is stored
func (r *RatelimitConfigRepository) Get(ctx context.Context, scope string) (*models.RatelimitConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT scope, rate, created_at, updated_at
		FROM gift_ratelimit_config WHERE scope = $1
	`, scope)
	c := &models.RatelimitConfig{}
	err := row.Scan(&c.Scope, &c.Rate, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ratelimit config %q: %w", scope, err)
	}
	return c, nil
}

// List returns every stored scope
func (r *RatelimitConfigRepository) List(ctx context.Context) ([]models.RatelimitConfig, error) {
	query := `SELECT scope, rate, created_at, updated_at FROM gift_ratelimit_config ORDER BY scope`
	return queryList(ctx, r.db, "ratelimit configs", query, func(rows *sql.Rows) (models.RatelimitConfig, error) {
		var c models.RatelimitConfig
		err := rows.Scan(&c.Scope, &c.Rate, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	})
}

// Set upserts a scope's rate after checking that the limiter can parse it
func (r *RatelimitConfigRepository) Set(ctx context.Context, c *models.RatelimitConfig) error {
	rate := strings.TrimSpace(c.Rate)
	if rate == "" {
		return fmt.Errorf("rate cannot be empty")
	}
	if _, err := limiter.NewRateFromFormatted(rate); err != nil {
		return fmt.Errorf("invalid rate %q: %w", rate, err)
	}
	scope := strings.TrimSpace(c.Scope)
	if scope == "" {
		scope = models.RatelimitScopeDefault
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO gift_ratelimit_config (scope, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (scope) DO UPDATE SET
			rate = EXCLUDED.rate,
			updated_at = EXCLUDED.updated_at
	`, scope, rate, now)
	if err != nil {
		return fmt.Errorf("failed to set ratelimit config %q: %w", scope, err)
	}
	return nil
}
