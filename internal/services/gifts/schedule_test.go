package gifts

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

func TestAdvanceSchedule(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-5 * time.Hour)

	tests := []struct {
		name         string
		prev         *models.GenerationScheduleEntry
		success      bool
		interval     time.Duration
		wantNext     time.Time
		wantFailures int
	}{
		{name: "first run success", prev: nil, success: true, interval: 5 * time.Hour, wantNext: now.Add(5 * time.Hour)},
		{name: "first run failure", prev: nil, success: false, interval: 5 * time.Hour, wantNext: now.Add(5 * time.Hour), wantFailures: 1},
		{
			name:         "failure after failures",
			prev:         &models.GenerationScheduleEntry{ProfileID: id, LastRunAt: &earlier, ConsecutiveFailures: 2},
			success:      false,
			interval:     5 * time.Hour,
			wantNext:     now.Add(5 * time.Hour),
			wantFailures: 3,
		},
		{
			name:     "success resets failures",
			prev:     &models.GenerationScheduleEntry{ProfileID: id, ConsecutiveFailures: 4},
			success:  true,
			interval: 5 * time.Hour,
			wantNext: now.Add(5 * time.Hour),
		},
		{name: "zero interval uses default", success: true, interval: 0, wantNext: now.Add(DefaultScheduleInterval)},
		{name: "custom interval", success: true, interval: 2 * time.Hour, wantNext: now.Add(2 * time.Hour)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var before models.GenerationScheduleEntry
			if tt.prev != nil {
				before = *tt.prev
			}

			got := AdvanceSchedule(tt.prev, id, tt.success, now, tt.interval)

			if got.ProfileID != id {
				t.Errorf("ProfileID = %v, want %v", got.ProfileID, id)
			}
			if !got.NextRunAt.Equal(tt.wantNext) {
				t.Errorf("NextRunAt = %v, want %v", got.NextRunAt, tt.wantNext)
			}
			if got.LastRunAt == nil || !got.LastRunAt.Equal(now) {
				t.Errorf("LastRunAt = %v, want %v", got.LastRunAt, now)
			}
			if got.LastSuccess != tt.success {
				t.Errorf("LastSuccess = %v, want %v", got.LastSuccess, tt.success)
			}
			if got.ConsecutiveFailures != tt.wantFailures {
				t.Errorf("ConsecutiveFailures = %d, want %d", got.ConsecutiveFailures, tt.wantFailures)
			}
			if tt.prev != nil && tt.prev.ConsecutiveFailures != before.ConsecutiveFailures {
				t.Error("AdvanceSchedule mutated its input")
			}
		})
	}
}
