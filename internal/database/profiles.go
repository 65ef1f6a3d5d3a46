package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

// ProfileRepository reads the partner records a generation attempt draws on.
// It never writes.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetProfile retrieves the base profile, or ErrNotFound
func (r *ProfileRepository) GetProfile(ctx context.Context, profileID uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT id, name, age, relationship_status, how_we_met, relationship_start_date,
		       favorite_color, favorite_flower, favorite_food, favorite_drink,
		       favorite_music, favorite_movie
		FROM partner_profiles
		WHERE id = $1
	`

	p := &models.Profile{}
	var age sql.NullInt64
	var start sql.NullTime
	var status, howWeMet, color, flower, food, drink, music, movie sql.NullString

	err := r.db.QueryRowContext(ctx, query, profileID).Scan(
		&p.ID, &p.Name, &age, &status, &howWeMet, &start,
		&color, &flower, &food, &drink, &music, &movie,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	if start.Valid {
		v := start.Time
		p.RelationshipStart = &v
	}
	p.RelationshipStatus = nullString(status)
	p.HowWeMet = nullString(howWeMet)
	p.FavoriteColor = nullString(color)
	p.FavoriteFlower = nullString(flower)
	p.FavoriteFood = nullString(food)
	p.FavoriteDrink = nullString(drink)
	p.FavoriteMusic = nullString(music)
	p.FavoriteMovie = nullString(movie)

	return p, nil
}

// ListInterests returns all interests, newest first
func (r *ProfileRepository) ListInterests(ctx context.Context, profileID uuid.UUID) ([]models.Interest, error) {
	query := `
		SELECT category, name, notes
		FROM partner_interests
		WHERE profile_id = $1
		ORDER BY created_at DESC
	`
	return queryList(ctx, r.db, "interests", query, func(rows *sql.Rows) (models.Interest, error) {
		var i models.Interest
		var notes sql.NullString
		if err := rows.Scan(&i.Category, &i.Name, &notes); err != nil {
			return i, err
		}
		i.Notes = nullString(notes)
		return i, nil
	}, profileID)
}

// ListConversations returns up to limit conversations, newest first
func (r *ProfileRepository) ListConversations(ctx context.Context, profileID uuid.UUID, limit int) ([]models.Conversation, error) {
	query := `
		SELECT conversation_date, topic, summary
		FROM partner_conversations
		WHERE profile_id = $1
		ORDER BY conversation_date DESC
		LIMIT $2
	`
	return queryList(ctx, r.db, "conversations", query, func(rows *sql.Rows) (models.Conversation, error) {
		var c models.Conversation
		err := rows.Scan(&c.Date, &c.Topic, &c.Summary)
		return c, err
	}, profileID, limit)
}

// ListMemories returns up to limit memories, newest first
func (r *ProfileRepository) ListMemories(ctx context.Context, profileID uuid.UUID, limit int) ([]models.Memory, error) {
	query := `
		SELECT memory_date, title, description
		FROM partner_memories
		WHERE profile_id = $1
		ORDER BY memory_date DESC
		LIMIT $2
	`
	return queryList(ctx, r.db, "memories", query, func(rows *sql.Rows) (models.Memory, error) {
		var m models.Memory
		err := rows.Scan(&m.Date, &m.Title, &m.Description)
		return m, err
	}, profileID, limit)
}

// ListNotes returns up to limit notes, newest first
func (r *ProfileRepository) ListNotes(ctx context.Context, profileID uuid.UUID, limit int) ([]models.Note, error) {
	query := `
		SELECT title, content, category
		FROM partner_notes
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return queryList(ctx, r.db, "notes", query, func(rows *sql.Rows) (models.Note, error) {
		var n models.Note
		var category sql.NullString
		if err := rows.Scan(&n.Title, &n.Content, &category); err != nil {
			return n, err
		}
		n.Category = nullString(category)
		return n, nil
	}, profileID, limit)
}

// ListDates returns up to limit past dates, newest first
func (r *ProfileRepository) ListDates(ctx context.Context, profileID uuid.UUID, limit int) ([]models.PastDate, error) {
	query := `
		SELECT date, activity, location
		FROM partner_dates
		WHERE profile_id = $1
		ORDER BY date DESC
		LIMIT $2
	`
	return queryList(ctx, r.db, "dates", query, func(rows *sql.Rows) (models.PastDate, error) {
		var d models.PastDate
		err := rows.Scan(&d.Date, &d.Activity, &d.Location)
		return d, err
	}, profileID, limit)
}

// ListGiftHistory returns every gift already given
func (r *ProfileRepository) ListGiftHistory(ctx context.Context, profileID uuid.UUID) ([]models.GiftHistoryItem, error) {
	query := `
		SELECT title, occasion, price, reaction
		FROM gift_history
		WHERE profile_id = $1
		ORDER BY created_at DESC
	`
	return queryList(ctx, r.db, "gift history", query, func(rows *sql.Rows) (models.GiftHistoryItem, error) {
		var g models.GiftHistoryItem
		var price, reaction sql.NullString
		if err := rows.Scan(&g.Title, &g.Occasion, &price, &reaction); err != nil {
			return g, err
		}
		g.Price = nullString(price)
		g.Reaction = nullString(reaction)
		return g, nil
	}, profileID)
}

// ListGiftIdeas returns open gift ideas only
func (r *ProfileRepository) ListGiftIdeas(ctx context.Context, profileID uuid.UUID) ([]models.GiftIdea, error) {
	query := `
		SELECT title, priority, occasion
		FROM gift_ideas
		WHERE profile_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	return queryList(ctx, r.db, "gift ideas", query, func(rows *sql.Rows) (models.GiftIdea, error) {
		var g models.GiftIdea
		var occasion sql.NullString
		if err := rows.Scan(&g.Title, &g.Priority, &occasion); err != nil {
			return g, err
		}
		g.Occasion = nullString(occasion)
		return g, nil
	}, profileID, models.GiftIdeaStatusIdea)
}

// queryList runs a read query and scans every row with scan. A query with no
// rows yields an empty, non-nil slice.
func queryList[T any](ctx context.Context, db *DB, what, query string, scan func(*sql.Rows) (T, error), args ...interface{}) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", what, err)
	}
	return items, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
