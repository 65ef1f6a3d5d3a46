package gifts

import (
	"time"

	"github.com/google/uuid"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
)

// DefaultScheduleInterval is the gap between runs for a profile
const DefaultScheduleInterval = 5 * time.Hour

// AdvanceSchedule returns the entry after an attempt finished at now. The
// next run is now+interval whatever the outcome; failures only bump the
// counter. prev may be nil for a profile that has never run.
func AdvanceSchedule(prev *models.GenerationScheduleEntry, profileID uuid.UUID, success bool, now time.Time, interval time.Duration) models.GenerationScheduleEntry {
	if interval <= 0 {
		interval = DefaultScheduleInterval
	}
	next := models.GenerationScheduleEntry{ProfileID: profileID}
	if prev != nil {
		next = *prev
		next.ProfileID = profileID
	}

	ranAt := now
	next.LastRunAt = &ranAt
	next.NextRunAt = now.Add(interval)
	next.LastSuccess = success
	next.UpdatedAt = now
	if success {
		next.ConsecutiveFailures = 0
	} else {
		next.ConsecutiveFailures++
	}
	return next
}
