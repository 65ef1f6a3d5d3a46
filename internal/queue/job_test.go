package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewGenerationJob(t *testing.T) {
	t.Parallel()

	profileID := uuid.New()
	job := NewGenerationJob(profileID)

	if job.ID == uuid.Nil {
		t.Error("Expected job ID to be set")
	}
	if job.Type != JobTypeGiftGeneration {
		t.Errorf("Expected job type to be %s, got %s", JobTypeGiftGeneration, job.Type)
	}
	if job.ProfileID == nil || *job.ProfileID != profileID {
		t.Errorf("Expected profile ID to be %s, got %v", profileID, job.ProfileID)
	}
	if job.Metadata == nil {
		t.Error("Expected metadata to be initialized")
	}
	if err := job.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestNewSweepJob(t *testing.T) {
	t.Parallel()

	job := NewSweepJob(time.Hour)
	if job.Type != JobTypeGiftSweep || job.ProfileID != nil {
		t.Errorf("unexpected sweep job: %+v", job)
	}
	if job.NotAfter == nil || !job.NotAfter.Equal(job.CreatedAt.Add(time.Hour)) {
		t.Errorf("NotAfter = %v, want created_at + 1h", job.NotAfter)
	}
	if !job.ShouldProcess() {
		t.Error("fresh sweep job should be processed")
	}

	if NewSweepJob(0).NotAfter != nil {
		t.Error("zero ttl should not expire")
	}
}

func TestJob_Validate(t *testing.T) {
	t.Parallel()

	nilID := uuid.Nil
	id := uuid.New()

	tests := []struct {
		name    string
		job     *Job
		wantErr bool
	}{
		{name: "generation with profile", job: &Job{Type: JobTypeGiftGeneration, ProfileID: &id}},
		{name: "generation without profile", job: &Job{Type: JobTypeGiftGeneration}, wantErr: true},
		{name: "generation with nil uuid", job: &Job{Type: JobTypeGiftGeneration, ProfileID: &nilID}, wantErr: true},
		{name: "sweep", job: &Job{Type: JobTypeGiftSweep}},
		{name: "unknown type", job: &Job{Type: "task_analysis"}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.job.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJob_ShouldProcess(t *testing.T) {
	t.Parallel()

	now := time.Now()

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{name: "no time constraints", want: true},
		{name: "not before in past", notBefore: timePtr(now.Add(-time.Hour)), want: true},
		{name: "not before in future", notBefore: timePtr(now.Add(time.Hour)), want: false},
		{name: "not after in past", notAfter: timePtr(now.Add(-time.Hour)), want: false},
		{name: "not after in future", notAfter: timePtr(now.Add(time.Hour)), want: true},
		{name: "within time window", notBefore: timePtr(now.Add(-time.Hour)), notAfter: timePtr(now.Add(time.Hour)), want: true},
		{name: "window already closed", notBefore: timePtr(now.Add(-2 * time.Hour)), notAfter: timePtr(now.Add(-time.Hour)), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{ID: uuid.New(), Type: JobTypeGiftSweep, NotBefore: tt.notBefore, NotAfter: tt.notAfter}
			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name     string
		notAfter *time.Time
		want     bool
	}{
		{name: "no expiration", want: false},
		{name: "expired", notAfter: timePtr(now.Add(-time.Hour)), want: true},
		{name: "not expired", notAfter: timePtr(now.Add(time.Hour)), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			job := &Job{Type: JobTypeGiftSweep, NotAfter: tt.notAfter}
			if got := job.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJob_WireFormat(t *testing.T) {
	t.Parallel()

	job := NewGenerationJob(uuid.MustParse("8a3f7c9e-0000-4000-8000-000000000001"))
	body, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["type"] != "gift_generation" {
		t.Errorf("type = %v, want gift_generation", raw["type"])
	}
	if raw["profile_id"] != "8a3f7c9e-0000-4000-8000-000000000001" {
		t.Errorf("profile_id = %v", raw["profile_id"])
	}
	if _, ok := raw["not_before"]; ok {
		t.Error("unset not_before should be omitted")
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
