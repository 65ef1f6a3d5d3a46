package gifts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultQueryTimeout bounds each record-set query
const DefaultQueryTimeout = 10 * time.Second

// Gatherer assembles a ProfileAggregate from the datastore
type Gatherer struct {
	source       database.ProfileDataSource
	queryTimeout time.Duration
}

// NewGatherer creates a gatherer. A non-positive timeout uses DefaultQueryTimeout.
func NewGatherer(source database.ProfileDataSource, queryTimeout time.Duration) *Gatherer {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &Gatherer{source: source, queryTimeout: queryTimeout}
}

// Gather fetches all eight record sets concurrently. The first failure
// cancels the remaining queries and fails the whole call; no partial
// aggregate is ever returned. A missing base profile yields ErrNotFound.
func (g *Gatherer) Gather(ctx context.Context, profileID uuid.UUID) (*models.ProfileAggregate, error) {
	var agg models.ProfileAggregate
	grp, gctx := errgroup.WithContext(ctx)

	run := func(what string, fetch func(ctx context.Context) error) {
		grp.Go(func() error {
			qctx, cancel := context.WithTimeout(gctx, g.queryTimeout)
			defer cancel()
			if err := fetch(qctx); err != nil {
				return fmt.Errorf("gather %s: %w", what, err)
			}
			return nil
		})
	}

	run("profile", func(ctx context.Context) error {
		p, err := g.source.GetProfile(ctx, profileID)
		if err != nil {
			return err
		}
		if p == nil {
			return ErrNotFound
		}
		agg.Profile = *p
		return nil
	})
	run("interests", func(ctx context.Context) (err error) {
		agg.Interests, err = g.source.ListInterests(ctx, profileID)
		return err
	})
	run("conversations", func(ctx context.Context) (err error) {
		agg.Conversations, err = g.source.ListConversations(ctx, profileID, models.MaxConversations)
		return err
	})
	run("memories", func(ctx context.Context) (err error) {
		agg.Memories, err = g.source.ListMemories(ctx, profileID, models.MaxMemories)
		return err
	})
	run("notes", func(ctx context.Context) (err error) {
		agg.Notes, err = g.source.ListNotes(ctx, profileID, models.MaxNotes)
		return err
	})
	run("dates", func(ctx context.Context) (err error) {
		agg.Dates, err = g.source.ListDates(ctx, profileID, models.MaxDates)
		return err
	})
	run("gift history", func(ctx context.Context) (err error) {
		agg.GiftHistory, err = g.source.ListGiftHistory(ctx, profileID)
		return err
	})
	run("gift ideas", func(ctx context.Context) (err error) {
		agg.GiftIdeas, err = g.source.ListGiftIdeas(ctx, profileID)
		return err
	})

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	// adapters may return more than asked for; the caps are part of the contract
	agg.Conversations = capList(agg.Conversations, models.MaxConversations)
	agg.Memories = capList(agg.Memories, models.MaxMemories)
	agg.Notes = capList(agg.Notes, models.MaxNotes)
	agg.Dates = capList(agg.Dates, models.MaxDates)

	return &agg, nil
}

func capList[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
