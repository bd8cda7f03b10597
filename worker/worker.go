// Package worker consumes the job queues in distributed mode and runs the
// same task bodies the embedded scheduler runs.
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"statuspulse/queue"
	"statuspulse/scheduler"
)

const (
	stateIdle int32 = iota
	stateRunning
	stateStopping
	stateStopped
)

type Runtime struct {
	queue         queue.Queue
	jobs          map[string]scheduler.Job
	queues        []string
	jobTimeout    time.Duration
	shutdownGrace time.Duration

	state     int32
	cancel    context.CancelFunc
	closeCtrl func() error
	consumers sync.WaitGroup
	done      chan struct{}
}

func New(q queue.Queue, jobs []scheduler.Job, jobTimeout, shutdownGrace time.Duration) *Runtime {
	r := &Runtime{
		queue:         q,
		jobs:          make(map[string]scheduler.Job, len(jobs)),
		jobTimeout:    jobTimeout,
		shutdownGrace: shutdownGrace,
		done:          make(chan struct{}),
	}
	seen := make(map[string]bool)
	for _, j := range jobs {
		r.jobs[j.Name] = j
		if !seen[j.Queue] {
			seen[j.Queue] = true
			r.queues = append(r.queues, j.Queue)
		}
	}
	return r
}

// Start subscribes to the control channel and starts one consumer per
// queue. It returns immediately.
func (r *Runtime) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&r.state, stateIdle, stateRunning) {
		return fmt.Errorf("worker already started")
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	ctrl, closeCtrl, err := r.queue.SubscribeControl(consumeCtx)
	if err != nil {
		cancel()
		atomic.StoreInt32(&r.state, stateIdle)
		return err
	}
	r.closeCtrl = closeCtrl

	for _, name := range r.queues {
		r.consumers.Add(1)
		go func(name string) {
			defer r.consumers.Done()
			log.Printf("[WORKER] Consuming %s", name)
			if err := r.queue.Consume(consumeCtx, name, r.handle); err != nil {
				log.Printf("[WORKER] Consumer for %s stopped: %v", name, err)
			}
		}(name)
	}

	go r.watchControl(consumeCtx, ctrl)
	go func() {
		select {
		case <-ctx.Done():
			r.Shutdown()
		case <-r.done:
		}
	}()

	log.Printf("[WORKER] Started with %d queue(s)", len(r.queues))
	return nil
}

func (r *Runtime) watchControl(ctx context.Context, ctrl <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-ctrl:
			if !ok {
				return
			}
			switch cmd {
			case queue.CommandShutdown:
				log.Println("[WORKER] Shutdown requested on control channel")
				go r.Shutdown()
			default:
				log.Printf("[WORKER] Ignoring unknown control command %q", cmd)
			}
		}
	}
}

// handle runs a dequeued job. The job context is not tied to the consumer
// context, so a shutdown lets in-flight work finish.
func (r *Runtime) handle(msg queue.Message) {
	job, ok := r.jobs[msg.Name]
	if !ok {
		log.Printf("[WORKER] No handler for job %s on %s, dropping", msg.Name, msg.Queue)
		return
	}
	log.Printf("[WORKER] Running %s (id %s)", msg.Name, msg.ID)
	scheduler.RunJob(context.Background(), job, msg.Params, r.jobTimeout)
}

// Shutdown stops accepting jobs, waits for in-flight jobs up to the grace
// period, and closes the control subscription. Calling it more than once
// is harmless.
func (r *Runtime) Shutdown() {
	if !atomic.CompareAndSwapInt32(&r.state, stateRunning, stateStopping) {
		return
	}
	log.Println("[WORKER] Shutting down")

	r.cancel()

	drained := make(chan struct{})
	go func() {
		r.consumers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(r.shutdownGrace):
		log.Printf("[WORKER] In-flight jobs still running after %s, exiting anyway", r.shutdownGrace)
	}

	if r.closeCtrl != nil {
		if err := r.closeCtrl(); err != nil {
			log.Printf("[WORKER] Error closing control subscription: %v", err)
		}
	}

	atomic.StoreInt32(&r.state, stateStopped)
	close(r.done)
	log.Println("[WORKER] Stopped")
}

// Done is closed once shutdown has completed.
func (r *Runtime) Done() <-chan struct{} {
	return r.done
}
