package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeGiftGeneration generates suggestions for one profile
	JobTypeGiftGeneration JobType = "gift_generation"
	// JobTypeGiftSweep runs the batch over every profile that is due
	JobTypeGiftSweep JobType = "gift_sweep"
)

// Job represents a job in the queue
type Job struct {
	ID        uuid.UUID      `json:"id"`
	Type      JobType        `json:"type"`
	ProfileID *uuid.UUID     `json:"profile_id,omitempty"` // gift_generation only
	NotBefore *time.Time     `json:"not_before,omitempty"` // nil = immediate
	NotAfter  *time.Time     `json:"not_after,omitempty"`  // nil = no expiration
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewJob creates a new job. Jobs are never retried; a failed generation
// waits for the next sweep.
func NewJob(jobType JobType, profileID *uuid.UUID) *Job {
	return &Job{
		ID:        uuid.New(),
		Type:      jobType,
		ProfileID: profileID,
		Metadata:  make(map[string]any),
		CreatedAt: time.Now(),
	}
}

// NewGenerationJob creates a single-profile generation job
func NewGenerationJob(profileID uuid.UUID) *Job {
	return NewJob(JobTypeGiftGeneration, &profileID)
}

// NewSweepJob creates a batch sweep job. Sweep jobs go stale after ttl so a
// backed-up queue does not run the same sweep several times in a row.
func NewSweepJob(ttl time.Duration) *Job {
	job := NewJob(JobTypeGiftSweep, nil)
	if ttl > 0 {
		notAfter := job.CreatedAt.Add(ttl)
		job.NotAfter = &notAfter
	}
	return job
}

// Validate checks the job carries what its type needs
func (j *Job) Validate() error {
	switch j.Type {
	case JobTypeGiftGeneration:
		if j.ProfileID == nil || *j.ProfileID == uuid.Nil {
			return fmt.Errorf("%s job %s has no profile_id", j.Type, j.ID)
		}
	case JobTypeGiftSweep:
	default:
		return fmt.Errorf("unknown job type %q", j.Type)
	}
	return nil
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	return !j.IsExpired()
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	return j.NotAfter != nil && time.Now().After(*j.NotAfter)
}
