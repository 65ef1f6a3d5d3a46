package models

import (
	"time"

	"github.com/google/uuid"
)

// SuggestionStatus represents the lifecycle state of a stored suggestion
type SuggestionStatus string

const (
	SuggestionStatusPending   SuggestionStatus = "pending"
	SuggestionStatusSaved     SuggestionStatus = "saved"
	SuggestionStatusExpired   SuggestionStatus = "expired"
	SuggestionStatusPurchased SuggestionStatus = "purchased"
	SuggestionStatusDismissed SuggestionStatus = "dismissed"
)

// ActiveSuggestionStatuses are the statuses replaced when a new batch lands.
// TODO: keep saved suggestions alive across batches once the client shows
// them apart from the pending set.
var ActiveSuggestionStatuses = []SuggestionStatus{
	SuggestionStatusPending,
	SuggestionStatusSaved,
}

// IsActive reports whether a suggestion with this status belongs to the live batch
func (s SuggestionStatus) IsActive() bool {
	for _, active := range ActiveSuggestionStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// Suggestion is one gift suggestion as produced by the model
type Suggestion struct {
	Title           string  `json:"title"`
	Reason          string  `json:"reason"`
	Price           string  `json:"price"`
	Occasion        string  `json:"occasion"`
	ConfidenceScore int     `json:"confidence_score"`
	ProductLink     *string `json:"product_link"`
}

// StoredSuggestion is a suggestion persisted for a profile
type StoredSuggestion struct {
	ID                uuid.UUID        `json:"id"`
	ProfileID         uuid.UUID        `json:"profile_id"`
	Suggestion
	Status            SuggestionStatus `json:"status"`
	GenerationBatchID uuid.UUID        `json:"generation_batch_id"`
	ExpiresAt         time.Time        `json:"expires_at"`
	CreatedAt         time.Time        `json:"created_at"`
}
