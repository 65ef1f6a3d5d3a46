package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

// ProfileDataSource reads the eight record sets behind one profile aggregate
type ProfileDataSource interface {
	GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error)
	ListInterests(ctx context.Context, profileID uuid.UUID) ([]models.Interest, error)
	ListConversations(ctx context.Context, profileID uuid.UUID, limit int) ([]models.Conversation, error)
	ListMemories(ctx context.Context, profileID uuid.UUID, limit int) ([]models.Memory, error)
	ListNotes(ctx context.Context, profileID uuid.UUID, limit int) ([]models.Note, error)
	ListDates(ctx context.Context, profileID uuid.UUID, limit int) ([]models.PastDate, error)
	ListGiftHistory(ctx context.Context, profileID uuid.UUID) ([]models.GiftHistoryItem, error)
	ListGiftIdeas(ctx context.Context, profileID uuid.UUID) ([]models.GiftIdea, error)
}

// SuggestionStore persists generated batches
type SuggestionStore interface {
	ReplaceActive(ctx context.Context, profileID, batchID uuid.UUID, suggestions []models.Suggestion, now time.Time) ([]models.StoredSuggestion, error)
	ListActive(ctx context.Context, profileID uuid.UUID) ([]models.StoredSuggestion, error)
}

// GenerationLogStore is the append-only attempt log
type GenerationLogStore interface {
	Append(ctx context.Context, entry *models.GenerationLogEntry) error
	ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]models.GenerationLogEntry, error)
}

// ScheduleStore reads per-profile schedule entries and advances them through
// the datastore's update_generation_schedule procedure
type ScheduleStore interface {
	Get(ctx context.Context, profileID uuid.UUID) (*models.GenerationScheduleEntry, error)
	Advance(ctx context.Context, profileID uuid.UUID, success bool, interval time.Duration) error
	Due(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// RatelimitConfigStore stores limiter rates per scope
type RatelimitConfigStore interface {
	Get(ctx context.Context, scope string) (*models.RatelimitConfig, error)
	List(ctx context.Context) ([]models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// Ensure concrete types implement the interfaces
var (
	_ ProfileDataSource    = (*ProfileRepository)(nil)
	_ SuggestionStore      = (*SuggestionRepository)(nil)
	_ GenerationLogStore   = (*GenerationLogRepository)(nil)
	_ ScheduleStore        = (*ScheduleRepository)(nil)
	_ RatelimitConfigStore = (*RatelimitConfigRepository)(nil)
)
