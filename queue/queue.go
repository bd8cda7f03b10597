// Package queue is a small Redis-backed job queue with cron-driven
// repeatable entries and a pub/sub control channel.
package queue

import (
	"context"
	"time"
)

// Control commands published on the control channel.
const (
	CommandShutdown = "shutdown"
)

// Repeatable is a job definition that re-fires on a cron schedule.
type Repeatable struct {
	Key   string    `json:"key"`
	Queue string    `json:"queue"`
	Name  string    `json:"name"`
	Cron  string    `json:"cron"`
	Next  time.Time `json:"-"`
}

// Message is one dequeued job.
type Message struct {
	ID         string            `json:"id"`
	Queue      string            `json:"queue"`
	Name       string            `json:"name"`
	Params     map[string]string `json:"params,omitempty"`
	Repeat     bool              `json:"repeat"`
	EnqueuedAt time.Time         `json:"enqueuedAt"`
}

type Handler func(msg Message)

type Queue interface {
	// EnqueueRepeatable adds a repeatable entry unless an identical
	// name+schedule pair already exists. It reports whether one was added.
	EnqueueRepeatable(ctx context.Context, queueName, jobName, cronExpr string) (bool, error)
	ListRepeatables(ctx context.Context, queueName string) ([]Repeatable, error)
	RemoveRepeatable(ctx context.Context, queueName, key string) error
	// Enqueue pushes a one-off job and returns its id.
	Enqueue(ctx context.Context, queueName, jobName string, params map[string]string) (string, error)
	// Consume blocks, handing jobs to handler one at a time, until ctx is
	// done. A job already dequeued is always handed over.
	Consume(ctx context.Context, queueName string, handler Handler) error
	PublishControl(ctx context.Context, command string) error
	SubscribeControl(ctx context.Context) (<-chan string, func() error, error)
	Close() error
}

func RepeatKey(jobName, cronExpr string) string {
	return jobName + "::" + cronExpr
}
