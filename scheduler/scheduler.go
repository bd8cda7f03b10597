package scheduler

import (
	"context"
	"log"
	"time"

	"statuspulse/queue"
)

type Mode string

const (
	ModeEmbedded            Mode = "embedded"
	ModeDistributed         Mode = "distributed"
	ModeDistributedFallback Mode = "distributed_fallback"
)

// JobScheduler registers the recurring jobs and drives them in one of the
// two modes.
type JobScheduler interface {
	Register(ctx context.Context, jobs []Job) error
	Start()
	Stop()
	Mode() Mode
}

// QueueConnector builds the distributed backend. An error means the
// backend is unreachable.
type QueueConnector func(ctx context.Context) (queue.Queue, error)

// New picks the scheduler implementation. When distributed mode is
// requested but the queue cannot be reached, it falls back to the embedded
// scheduler instead of running nothing.
func New(ctx context.Context, distributed bool, connect QueueConnector, jobTimeout time.Duration) JobScheduler {
	if !distributed {
		return NewEmbedded(jobTimeout)
	}

	q, err := connect(ctx)
	if err != nil {
		log.Printf("[SCHEDULER] Distributed backend unavailable, falling back to embedded timers: %v", err)
		e := NewEmbedded(jobTimeout)
		e.mode = ModeDistributedFallback
		return e
	}
	return NewDistributed(q)
}
