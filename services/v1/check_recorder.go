package v1

import (
	"context"
	"log"
	"time"

	"statuspulse/models"
	"statuspulse/retry"
)

type RecorderStore interface {
	CreateStatusCheck(ctx context.Context, c *models.StatusCheck) error
	UpdateServiceStatus(ctx context.Context, serviceID int64, level models.Level, checkedAt time.Time) error
}

// CheckRecorder persists observations as status checks. It never fails
// from the caller's point of view; Record reports whether a row was written.
type CheckRecorder struct {
	store  RecorderStore
	policy retry.Policy
	now    func() time.Time
}

func NewCheckRecorder(store RecorderStore, attempts int, backoff time.Duration) *CheckRecorder {
	return &CheckRecorder{
		store:  store,
		policy: retry.Policy{Attempts: attempts, Backoff: backoff, Jitter: retry.DefaultJitter},
		now:    time.Now,
	}
}

func (r *CheckRecorder) Record(ctx context.Context, svc models.Service, obs models.Observation) bool {
	check := &models.StatusCheck{
		ServiceID:    svc.ID,
		IsUp:         obs.IsUp,
		Level:        obs.Level,
		StatusCode:   obs.StatusCode,
		ResponseTime: obs.ResponseTime,
		CheckedAt:    r.now().UTC(),
	}
	if obs.FetchFailed {
		check.IsUp = false
		check.StatusCode = nil
	}
	if check.Level == "" {
		check.Level = models.Unknown
	}

	err := retry.Do(ctx, r.policy, func(attempt int) error {
		err := r.store.CreateStatusCheck(ctx, check)
		if err != nil {
			log.Printf("[RECORDER] Attempt %d/%d to store check for %s (ID: %d) failed: %v",
				attempt, r.policy.Attempts, svc.Name, svc.ID, err)
		}
		return err
	})
	if err != nil {
		log.Printf("[RECORDER] Giving up on check for %s (ID: %d): %v", svc.Name, svc.ID, err)
		return false
	}

	if err := r.store.UpdateServiceStatus(ctx, svc.ID, check.Level, check.CheckedAt); err != nil {
		log.Printf("[RECORDER] Error updating current status for %s (ID: %d): %v", svc.Name, svc.ID, err)
	}
	return true
}
