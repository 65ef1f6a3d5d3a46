package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the basic facts about a partner profile
type Profile struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Age                *int       `json:"age,omitempty"`
	RelationshipStatus *string    `json:"relationship_status,omitempty"`
	HowWeMet           *string    `json:"how_we_met,omitempty"`
	RelationshipStart  *time.Time `json:"relationship_start_date,omitempty"`
	FavoriteColor      *string    `json:"favorite_color,omitempty"`
	FavoriteFlower     *string    `json:"favorite_flower,omitempty"`
	FavoriteFood       *string    `json:"favorite_food,omitempty"`
	FavoriteDrink      *string    `json:"favorite_drink,omitempty"`
	FavoriteMusic      *string    `json:"favorite_music,omitempty"`
	FavoriteMovie      *string    `json:"favorite_movie,omitempty"`
}

// Interest is a hobby or interest recorded for a profile
type Interest struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Notes    *string `json:"notes,omitempty"`
}

// Conversation is a summarized conversation with the partner
type Conversation struct {
	Date    time.Time `json:"date"`
	Topic   string    `json:"topic"`
	Summary string    `json:"summary"`
}

// Memory is a special moment shared with the partner
type Memory struct {
	Date        time.Time `json:"date"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

// Note is a free-form note about the partner
type Note struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Category *string `json:"category,omitempty"`
}

// PastDate is a date or activity done together
type PastDate struct {
	Date     time.Time `json:"date"`
	Activity string    `json:"activity"`
	Location string    `json:"location"`
}

// GiftHistoryItem is a gift that was already given
type GiftHistoryItem struct {
	Title    string  `json:"title"`
	Occasion string  `json:"occasion"`
	Price    *string `json:"price,omitempty"`
	Reaction *string `json:"reaction,omitempty"`
}

// GiftIdeaStatusIdea marks a gift idea that is still open
const GiftIdeaStatusIdea = "idea"

// GiftIdea is an open gift idea saved by the user
type GiftIdea struct {
	Title    string  `json:"title"`
	Priority string  `json:"priority"`
	Occasion *string `json:"occasion,omitempty"`
}

// Record set caps applied by the gatherer (newest first)
const (
	MaxConversations = 20
	MaxMemories      = 10
	MaxNotes         = 10
	MaxDates         = 10
)

// ProfileAggregate is everything known about a profile, assembled for one
// generation attempt. It is never mutated after gathering.
type ProfileAggregate struct {
	Profile       Profile           `json:"profile"`
	Interests     []Interest        `json:"interests"`
	Conversations []Conversation    `json:"conversations"`
	Memories      []Memory          `json:"memories"`
	Notes         []Note            `json:"notes"`
	Dates         []PastDate        `json:"dates"`
	GiftHistory   []GiftHistoryItem `json:"gift_history"`
	GiftIdeas     []GiftIdea        `json:"gift_ideas"`
}
