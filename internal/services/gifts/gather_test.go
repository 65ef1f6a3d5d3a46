package gifts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

func TestGather(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")

	tests := []struct {
		name        string
		source      *mockProfileSource
		wantErr     error
		wantErrText string
	}{
		{
			name:   "all record sets",
			source: &mockProfileSource{agg: richAggregate()},
		},
		{
			name:    "missing profile",
			source:  &mockProfileSource{agg: nil},
			wantErr: ErrNotFound,
		},
		{
			name:        "one failing set fails the whole gather",
			source:      &mockProfileSource{agg: richAggregate(), errs: map[string]error{"memories": boom}},
			wantErr:     boom,
			wantErrText: "gather memories: connection reset",
		},
		{
			name:    "profile query failure",
			source:  &mockProfileSource{agg: richAggregate(), errs: map[string]error{"profile": boom}},
			wantErr: boom,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := NewGatherer(tt.source, time.Second)
			id := uuid.New()
			agg, err := g.Gather(context.Background(), id)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Gather() error = %v, want %v", err, tt.wantErr)
				}
				if agg != nil {
					t.Error("expected no aggregate on failure")
				}
				if tt.wantErrText != "" && err.Error() != tt.wantErrText {
					t.Errorf("error text = %q, want %q", err.Error(), tt.wantErrText)
				}
				return
			}
			if err != nil {
				t.Fatalf("Gather() unexpected error: %v", err)
			}
			if agg.Profile.ID != id || agg.Profile.Name != "Jordan" {
				t.Errorf("unexpected profile: %+v", agg.Profile)
			}
			if len(agg.Interests) != 2 || len(agg.GiftIdeas) != 1 {
				t.Errorf("unexpected record sets: %d interests, %d gift ideas", len(agg.Interests), len(agg.GiftIdeas))
			}
			for _, what := range []string{"profile", "interests", "conversations", "memories", "notes", "dates", "gift_history", "gift_ideas"} {
				if tt.source.calls[what] != 1 {
					t.Errorf("%s queried %d times, want 1", what, tt.source.calls[what])
				}
			}
		})
	}
}

func TestGather_FailureCancelsSiblings(t *testing.T) {
	t.Parallel()

	boom := errors.New("notes table locked")
	source := &mockProfileSource{
		agg:   richAggregate(),
		errs:  map[string]error{"notes": boom},
		block: true,
	}
	g := NewGatherer(source, time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := g.Gather(context.Background(), uuid.New())
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, boom) {
			t.Fatalf("Gather() error = %v, want %v", err, boom)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Gather did not cancel the blocked queries")
	}
}

func TestGather_PerQueryTimeout(t *testing.T) {
	t.Parallel()

	source := &mockProfileSource{agg: richAggregate(), block: true}
	g := NewGatherer(source, 20*time.Millisecond)

	_, err := g.Gather(context.Background(), uuid.New())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Gather() error = %v, want deadline exceeded", err)
	}
}

func TestGather_CapsRecordSets(t *testing.T) {
	t.Parallel()

	agg := richAggregate()
	agg.Conversations = make([]models.Conversation, models.MaxConversations+7)
	agg.Memories = make([]models.Memory, models.MaxMemories+1)
	agg.Notes = make([]models.Note, models.MaxNotes+3)
	agg.Dates = make([]models.PastDate, models.MaxDates+2)

	got, err := NewGatherer(&mockProfileSource{agg: agg}, 0).Gather(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Conversations) != models.MaxConversations ||
		len(got.Memories) != models.MaxMemories ||
		len(got.Notes) != models.MaxNotes ||
		len(got.Dates) != models.MaxDates {
		t.Errorf("caps not applied: %d conversations, %d memories, %d notes, %d dates",
			len(got.Conversations), len(got.Memories), len(got.Notes), len(got.Dates))
	}
}
