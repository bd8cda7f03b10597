// Package retry runs an operation with bounded exponential backoff.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// DefaultJitter is the upper bound of the random delay added to every backoff.
const DefaultJitter = 100 * time.Millisecond

// MaxDelay caps the exponential part of a wait.
const MaxDelay = 5 * time.Minute

type Policy struct {
	Attempts int
	Backoff  time.Duration
	Jitter   time.Duration
}

// Delay returns the wait before the given retry (1-based):
// min(backoff * 2^(attempt-1), MaxDelay) + rand[0, jitter).
func (p Policy) Delay(attempt int) time.Duration {
	d := p.Backoff
	for i := 1; i < attempt && d > 0 && d < MaxDelay; i++ {
		d *= 2
	}
	if d > MaxDelay {
		d = MaxDelay
	}
	if p.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(p.Jitter)))
	}
	return d
}

// Do calls fn until it succeeds, the attempts run out, or ctx is done. It
// returns the last error from fn, or ctx.Err() if the wait was interrupted.
func Do(ctx context.Context, p Policy, fn func(attempt int) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(p.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
