package gifts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/database"
	"github.com/nidrosoft/rizzer-sub001/internal/lock"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/nidrosoft/rizzer-sub001/internal/services/ai"
)

// mockProfileSource serves a fixed aggregate; errs forces a failure for a
// named record set ("profile", "interests", ...).
type mockProfileSource struct {
	agg   *models.ProfileAggregate
	errs  map[string]error
	mu    sync.Mutex
	calls map[string]int
	// block, when set, makes every list query wait for ctx cancellation
	block bool
}

func (m *mockProfileSource) record(what string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[what]++
	return m.errs[what]
}

func (m *mockProfileSource) data() *models.ProfileAggregate {
	if m.agg == nil {
		return &models.ProfileAggregate{}
	}
	return m.agg
}

func (m *mockProfileSource) wait(ctx context.Context) error {
	if !m.block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockProfileSource) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	if err := m.record("profile"); err != nil {
		return nil, err
	}
	if m.agg == nil {
		return nil, database.ErrNotFound
	}
	p := m.agg.Profile
	p.ID = id
	return &p, nil
}

func (m *mockProfileSource) ListInterests(ctx context.Context, id uuid.UUID) ([]models.Interest, error) {
	if err := m.record("interests"); err != nil {
		return nil, err
	}
	return m.data().Interests, m.wait(ctx)
}

func (m *mockProfileSource) ListConversations(ctx context.Context, id uuid.UUID, limit int) ([]models.Conversation, error) {
	if err := m.record("conversations"); err != nil {
		return nil, err
	}
	return m.data().Conversations, m.wait(ctx)
}

func (m *mockProfileSource) ListMemories(ctx context.Context, id uuid.UUID, limit int) ([]models.Memory, error) {
	if err := m.record("memories"); err != nil {
		return nil, err
	}
	return m.data().Memories, m.wait(ctx)
}

func (m *mockProfileSource) ListNotes(ctx context.Context, id uuid.UUID, limit int) ([]models.Note, error) {
	if err := m.record("notes"); err != nil {
		return nil, err
	}
	return m.data().Notes, m.wait(ctx)
}

func (m *mockProfileSource) ListDates(ctx context.Context, id uuid.UUID, limit int) ([]models.PastDate, error) {
	if err := m.record("dates"); err != nil {
		return nil, err
	}
	return m.data().Dates, m.wait(ctx)
}

func (m *mockProfileSource) ListGiftHistory(ctx context.Context, id uuid.UUID) ([]models.GiftHistoryItem, error) {
	if err := m.record("gift_history"); err != nil {
		return nil, err
	}
	return m.data().GiftHistory, m.wait(ctx)
}

func (m *mockProfileSource) ListGiftIdeas(ctx context.Context, id uuid.UUID) ([]models.GiftIdea, error) {
	if err := m.record("gift_ideas"); err != nil {
		return nil, err
	}
	return m.data().GiftIdeas, m.wait(ctx)
}

// mockCompletion is a func-field CompletionClient
type mockCompletion struct {
	generateFunc func(ctx context.Context, systemPrompt, userPrompt string) (*ai.RawModelResponse, error)
	calls        int
}

func (m *mockCompletion) Generate(ctx context.Context, systemPrompt, userPrompt string) (*ai.RawModelResponse, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, systemPrompt, userPrompt)
	}
	return &ai.RawModelResponse{
		Content:          `{"suggestions":[{"title":"Vinyl","reason":"Loves jazz","price":"$30","occasion":"Birthday","confidence_score":92,"product_link":null}]}`,
		PromptTokens:     100,
		CompletionTokens: 50,
		Model:            "gpt-4o-mini",
	}, nil
}

// memSuggestionStore mimics the table semantics of ReplaceActive
type memSuggestionStore struct {
	mu         sync.Mutex
	rows       []models.StoredSuggestion
	replaceErr error
	// expiredBeforeInsert records, per call, how many rows were still active
	// at the moment the new batch was inserted
	expiredBeforeInsert []int
}

func (m *memSuggestionStore) ReplaceActive(ctx context.Context, profileID, batchID uuid.UUID, suggestions []models.Suggestion, now time.Time) ([]models.StoredSuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	for i := range m.rows {
		if m.rows[i].ProfileID == profileID && m.rows[i].Status.IsActive() {
			m.rows[i].Status = models.SuggestionStatusExpired
		}
	}
	stillActive := 0
	for _, r := range m.rows {
		if r.ProfileID == profileID && r.Status.IsActive() {
			stillActive++
		}
	}
	m.expiredBeforeInsert = append(m.expiredBeforeInsert, stillActive)

	out := make([]models.StoredSuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		row := models.StoredSuggestion{
			ID:                uuid.New(),
			ProfileID:         profileID,
			Suggestion:        s,
			Status:            models.SuggestionStatusPending,
			GenerationBatchID: batchID,
			ExpiresAt:         now.Add(database.DefaultSuggestionTTL),
			CreatedAt:         now,
		}
		m.rows = append(m.rows, row)
		out = append(out, row)
	}
	return out, nil
}

func (m *memSuggestionStore) ListActive(ctx context.Context, profileID uuid.UUID) ([]models.StoredSuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StoredSuggestion
	for _, r := range m.rows {
		if r.ProfileID == profileID && r.Status.IsActive() {
			out = append(out, r)
		}
	}
	return out, nil
}

type memLogStore struct {
	mu        sync.Mutex
	entries   []models.GenerationLogEntry
	appendErr error
}

func (m *memLogStore) Append(ctx context.Context, entry *models.GenerationLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memLogStore) ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]models.GenerationLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.GenerationLogEntry
	for _, e := range m.entries {
		if e.ProfileID == profileID {
			out = append(out, e)
		}
	}
	return out, nil
}

// memScheduleStore stands in for update_generation_schedule by applying
// AdvanceSchedule at a fixed clock
type memScheduleStore struct {
	mu        sync.Mutex
	now       time.Time
	entries   map[uuid.UUID]models.GenerationScheduleEntry
	due       []uuid.UUID
	advances  int
	intervals []time.Duration
}

func newMemScheduleStore(now time.Time) *memScheduleStore {
	return &memScheduleStore{now: now, entries: make(map[uuid.UUID]models.GenerationScheduleEntry)}
}

func (m *memScheduleStore) Get(ctx context.Context, profileID uuid.UUID) (*models.GenerationScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[profileID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &e, nil
}

func (m *memScheduleStore) Advance(ctx context.Context, profileID uuid.UUID, success bool, interval time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var prev *models.GenerationScheduleEntry
	if e, ok := m.entries[profileID]; ok {
		prev = &e
	}
	m.entries[profileID] = AdvanceSchedule(prev, profileID, success, m.now, interval)
	m.advances++
	m.intervals = append(m.intervals, interval)
	return nil
}

func (m *memScheduleStore) Due(ctx context.Context, limit int) ([]uuid.UUID, error) {
	return m.due, nil
}

// busyLocker refuses every lock
type busyLocker struct{}

func (busyLocker) TryLock(ctx context.Context, key string) (lock.Unlock, bool, error) {
	return nil, false, nil
}

var (
	_ database.ProfileDataSource  = (*mockProfileSource)(nil)
	_ database.SuggestionStore    = (*memSuggestionStore)(nil)
	_ database.GenerationLogStore = (*memLogStore)(nil)
	_ database.ScheduleStore      = (*memScheduleStore)(nil)
	_ ai.CompletionClient         = (*mockCompletion)(nil)
	_ lock.Locker                 = busyLocker{}
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

// richAggregate is a profile with something in every section
func richAggregate() *models.ProfileAggregate {
	day := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	start := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	return &models.ProfileAggregate{
		Profile: models.Profile{
			Name:               "Jordan",
			Age:                intPtr(31),
			RelationshipStatus: strPtr("dating"),
			HowWeMet:           strPtr("Book club"),
			RelationshipStart:  &start,
			FavoriteColor:      strPtr("teal"),
			FavoriteMusic:      strPtr("bossa nova"),
		},
		Interests: []models.Interest{
			{Category: "hobby", Name: "Pottery", Notes: strPtr("wants a wheel")},
			{Category: "sport", Name: "Bouldering"},
		},
		Conversations: []models.Conversation{
			{Date: day, Topic: "Travel", Summary: "Wants to see Lisbon"},
		},
		Memories: []models.Memory{
			{Date: day, Title: "First trip", Description: "Rainy weekend in Porto"},
		},
		Notes: []models.Note{
			{Title: "Allergy", Content: "No lilies", Category: strPtr("health")},
		},
		Dates: []models.PastDate{
			{Date: day, Activity: "Jazz night", Location: "Blue Room"},
		},
		GiftHistory: []models.GiftHistoryItem{
			{Title: "Scarf", Occasion: "Winter", Price: strPtr("$40"), Reaction: strPtr("loved it")},
		},
		GiftIdeas: []models.GiftIdea{
			{Title: "Pasta class", Priority: "high", Occasion: strPtr("Anniversary")},
		},
	}
}
