package scheduler

import (
	"context"
	"fmt"
	"log"

	"statuspulse/queue"
)

// Distributed registers each job as a repeatable entry on its queue.
// Worker processes execute them.
type Distributed struct {
	queue queue.Queue
}

func NewDistributed(q queue.Queue) *Distributed {
	return &Distributed{queue: q}
}

func (d *Distributed) Mode() Mode { return ModeDistributed }

// Register adds a repeatable only when no entry with the same job name and
// schedule exists. Entries for the same job with an old schedule are removed.
func (d *Distributed) Register(ctx context.Context, jobs []Job) error {
	for _, job := range jobs {
		existing, err := d.queue.ListRepeatables(ctx, job.Queue)
		if err != nil {
			return fmt.Errorf("list repeatables on %s: %w", job.Queue, err)
		}

		present := false
		for _, r := range existing {
			if r.Name != job.Name {
				continue
			}
			if r.Cron == job.Schedule {
				// An entry without a fire time would never run; let
				// EnqueueRepeatable reschedule it.
				present = !r.Next.IsZero()
				continue
			}
			log.Printf("[SCHEDULER] Removing stale schedule %q for %s", r.Cron, job.Name)
			if err := d.queue.RemoveRepeatable(ctx, job.Queue, r.Key); err != nil {
				return err
			}
		}
		if present {
			log.Printf("[SCHEDULER] Repeatable %s (%s) already registered on %s", job.Name, job.Schedule, job.Queue)
			continue
		}

		added, err := d.queue.EnqueueRepeatable(ctx, job.Queue, job.Name, job.Schedule)
		if err != nil {
			return fmt.Errorf("register %s on %s: %w", job.Name, job.Queue, err)
		}
		if added {
			log.Printf("[SCHEDULER] Registered repeatable %s (%s) on %s", job.Name, job.Schedule, job.Queue)
		} else {
			log.Printf("[SCHEDULER] Rescheduled repeatable %s (%s) on %s", job.Name, job.Schedule, job.Queue)
		}
	}
	return nil
}

func (d *Distributed) Start() {
	log.Println("[SCHEDULER] Distributed mode: jobs run on worker processes")
}

func (d *Distributed) Stop() {
	if err := d.queue.Close(); err != nil {
		log.Printf("[SCHEDULER] Error closing queue: %v", err)
	}
}
