package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationStatus is the outcome recorded for one generation attempt
type GenerationStatus string

const (
	GenerationStatusSuccess GenerationStatus = "success"
	GenerationStatusFailed  GenerationStatus = "failed"
)

// GenerationLogEntry is an append-only record of one generation attempt
type GenerationLogEntry struct {
	ID               uuid.UUID        `json:"id"`
	ProfileID        uuid.UUID        `json:"profile_id"`
	BatchID          uuid.UUID        `json:"generation_batch_id"`
	SuggestionsCount int              `json:"suggestions_count"`
	DurationMS       int64            `json:"duration_ms"`
	Model            string           `json:"model"`
	PromptTokens     int64            `json:"prompt_tokens"`
	CompletionTokens int64            `json:"completion_tokens"`
	Cost             float64          `json:"cost"`
	Status           GenerationStatus `json:"status"`
	ErrorMessage     *string          `json:"error_message,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// GenerationScheduleEntry tracks when a profile is next eligible for generation
type GenerationScheduleEntry struct {
	ProfileID           uuid.UUID  `json:"profile_id"`
	LastRunAt           *time.Time `json:"last_run_at,omitempty"`
	NextRunAt           time.Time  `json:"next_run_at"`
	LastSuccess         bool       `json:"last_success"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
