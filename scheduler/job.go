package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"
)

// TaskFunc is a job body. Both scheduling modes call the same function.
type TaskFunc func(ctx context.Context, params map[string]string) error

// Job is one recurring task: which queue carries it in distributed mode
// and the cron schedule it fires on.
type Job struct {
	Name     string
	Queue    string
	Schedule string
	Run      TaskFunc
}

// RunJob is the task boundary: errors and panics are logged, never returned.
func RunJob(ctx context.Context, job Job, params map[string]string, timeout time.Duration) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := safeRun(ctx, job, params)
	if err != nil {
		log.Printf("[SCHEDULER] Job %s failed after %s: %v", job.Name, time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("[SCHEDULER] Job %s completed in %s", job.Name, time.Since(start).Round(time.Millisecond))
}

func safeRun(ctx context.Context, job Job, params map[string]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return job.Run(ctx, params)
}
