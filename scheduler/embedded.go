package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type entry struct {
	EntryID  cron.EntryID
	CronExpr string
}

// Embedded runs jobs on in-process cron timers. A job still running when
// its next tick arrives skips that tick.
type Embedded struct {
	cron       *cron.Cron
	jobTimeout time.Duration
	mode       Mode

	mu      sync.Mutex
	entries map[string]entry
}

func NewEmbedded(jobTimeout time.Duration) *Embedded {
	return &Embedded{
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default())))),
		jobTimeout: jobTimeout,
		mode:       ModeEmbedded,
		entries:    make(map[string]entry),
	}
}

func (e *Embedded) Mode() Mode { return e.mode }

// Register adds one cron entry per job. Re-registering a job replaces its
// entry, so a job never has two timers.
func (e *Embedded) Register(_ context.Context, jobs []Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, job := range jobs {
		if existing, ok := e.entries[job.Name]; ok {
			log.Printf("[CRON] Updating job %s: %s -> %s", job.Name, existing.CronExpr, job.Schedule)
			e.cron.Remove(existing.EntryID)
			delete(e.entries, job.Name)
		}

		jobCopy := job
		id, err := e.cron.AddFunc(job.Schedule, func() {
			RunJob(context.Background(), jobCopy, nil, e.jobTimeout)
		})
		if err != nil {
			return fmt.Errorf("schedule %s with %q: %w", job.Name, job.Schedule, err)
		}
		e.entries[job.Name] = entry{EntryID: id, CronExpr: job.Schedule}
		log.Printf("[CRON] Added job %s - %s", job.Name, job.Schedule)
	}
	return nil
}

func (e *Embedded) Start() {
	e.cron.Start()
	log.Printf("[CRON] Scheduler started (%s)", e.mode)
}

// Stop clears the timers and waits for running jobs to return.
func (e *Embedded) Stop() {
	<-e.cron.Stop().Done()
	log.Println("[CRON] Scheduler stopped")
}

// Entries returns the number of registered timers.
func (e *Embedded) Entries() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}
