package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"statuspulse/queue"
)

func noop(context.Context, map[string]string) error { return nil }

func testJobs(schedule string) []Job {
	return []Job{
		{Name: "poll-statuses", Queue: "status-polling", Schedule: schedule, Run: noop},
		{Name: "audit-incidents", Queue: "incident-audit", Schedule: "*/5 * * * *", Run: noop},
	}
}

func redisConnector(t *testing.T) QueueConnector {
	t.Helper()
	mr := miniredis.RunT(t)
	return func(ctx context.Context) (queue.Queue, error) {
		return queue.NewRedisQueue(redis.NewClient(&redis.Options{Addr: mr.Addr()})), nil
	}
}

func TestNew_EmbeddedByDefault(t *testing.T) {
	called := false
	s := New(context.Background(), false, func(context.Context) (queue.Queue, error) {
		called = true
		return nil, nil
	}, time.Minute)

	if s.Mode() != ModeEmbedded {
		t.Errorf("expected embedded, got %s", s.Mode())
	}
	if called {
		t.Error("connector should not be used in embedded mode")
	}
}

func TestNew_FallsBackWhenQueueUnreachable(t *testing.T) {
	s := New(context.Background(), true, func(context.Context) (queue.Queue, error) {
		return nil, errors.New("connection refused")
	}, time.Minute)

	if s.Mode() != ModeDistributedFallback {
		t.Fatalf("expected fallback mode, got %s", s.Mode())
	}
	if _, ok := s.(*Embedded); !ok {
		t.Errorf("fallback should run embedded timers, got %T", s)
	}
}

func TestNew_Distributed(t *testing.T) {
	s := New(context.Background(), true, redisConnector(t), time.Minute)
	if s.Mode() != ModeDistributed {
		t.Errorf("expected distributed, got %s", s.Mode())
	}
}

func TestEmbedded_RegisterTwiceKeepsOneEntryPerJob(t *testing.T) {
	e := NewEmbedded(time.Minute)
	ctx := context.Background()

	if err := e.Register(ctx, testJobs("*/2 * * * *")); err != nil {
		t.Fatal(err)
	}
	if err := e.Register(ctx, testJobs("*/3 * * * *")); err != nil {
		t.Fatal(err)
	}
	if e.Entries() != 2 {
		t.Errorf("expected 2 entries, got %d", e.Entries())
	}
	if n := len(e.cron.Entries()); n != 2 {
		t.Errorf("expected 2 cron timers, got %d", n)
	}
}

func TestEmbedded_SkipsTickWhileJobStillRunning(t *testing.T) {
	e := NewEmbedded(time.Minute)
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	runs := 0

	job := Job{Name: "poll-statuses", Schedule: "*/2 * * * *", Run: func(context.Context, map[string]string) error {
		runs++
		started <- struct{}{}
		<-release
		return nil
	}}
	if err := e.Register(context.Background(), []Job{job}); err != nil {
		t.Fatal(err)
	}
	wrapped := e.cron.Entry(e.entries["poll-statuses"].EntryID).WrappedJob

	done := make(chan struct{})
	go func() {
		wrapped.Run()
		close(done)
	}()
	<-started

	// Second tick while the first is in flight returns without running.
	wrapped.Run()
	close(release)
	<-done

	if runs != 1 {
		t.Errorf("expected the overlapping tick to be skipped, got %d runs", runs)
	}
}

func TestEmbedded_InvalidSchedule(t *testing.T) {
	e := NewEmbedded(time.Minute)
	err := e.Register(context.Background(), []Job{{Name: "bad", Schedule: "every now and then", Run: noop}})
	if err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestDistributed_RegistrationIsIdempotent(t *testing.T) {
	s := New(context.Background(), true, redisConnector(t), time.Minute)
	d := s.(*Distributed)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := d.Register(ctx, testJobs("*/2 * * * *")); err != nil {
			t.Fatalf("Register #%d: %v", i+1, err)
		}
	}

	reps, err := d.queue.ListRepeatables(ctx, "status-polling")
	if err != nil {
		t.Fatal(err)
	}
	if len(reps) != 1 {
		t.Errorf("expected exactly one repeatable, got %d", len(reps))
	}
}

func TestDistributed_ScheduleChangeReplacesEntry(t *testing.T) {
	s := New(context.Background(), true, redisConnector(t), time.Minute)
	d := s.(*Distributed)
	ctx := context.Background()

	d.Register(ctx, testJobs("*/2 * * * *"))
	d.Register(ctx, testJobs("*/10 * * * *"))

	reps, _ := d.queue.ListRepeatables(ctx, "status-polling")
	if len(reps) != 1 || reps[0].Cron != "*/10 * * * *" {
		t.Errorf("expected only the new schedule, got %+v", reps)
	}
}

func TestDistributed_RegisterHealsEntryWithoutFireTime(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	d := NewDistributed(queue.NewRedisQueue(rdb))
	ctx := context.Background()

	// Definition present, fire time lost.
	mr.HSet("statuspulse:queue:status-polling:repeat", queue.RepeatKey("poll-statuses", "*/2 * * * *"),
		`{"key":"poll-statuses::*/2 * * * *","queue":"status-polling","name":"poll-statuses","cron":"*/2 * * * *"}`)

	for i := 0; i < 2; i++ {
		if err := d.Register(ctx, testJobs("*/2 * * * *")); err != nil {
			t.Fatalf("Register #%d: %v", i+1, err)
		}
	}

	reps, err := d.queue.ListRepeatables(ctx, "status-polling")
	if err != nil {
		t.Fatal(err)
	}
	if len(reps) != 1 || reps[0].Next.IsZero() {
		t.Fatalf("expected one repeatable with a fire time, got %+v", reps)
	}
	if n, _ := rdb.ZCard(ctx, "statuspulse:queue:status-polling:delayed").Result(); n != 1 {
		t.Errorf("expected 1 scheduled fire time, got %d", n)
	}
}

func TestRunJob_RecoversPanic(t *testing.T) {
	job := Job{Name: "explodes", Run: func(context.Context, map[string]string) error {
		panic("boom")
	}}
	// Must not panic.
	RunJob(context.Background(), job, nil, time.Second)
}

func TestRunJob_PassesParamsAndTimeout(t *testing.T) {
	var gotParams map[string]string
	var hasDeadline bool
	job := Job{Name: "cleanup", Run: func(ctx context.Context, p map[string]string) error {
		gotParams = p
		_, hasDeadline = ctx.Deadline()
		return errors.New("logged, not returned")
	}}

	RunJob(context.Background(), job, map[string]string{"serviceId": "7"}, time.Second)
	if gotParams["serviceId"] != "7" {
		t.Errorf("params not passed through: %v", gotParams)
	}
	if !hasDeadline {
		t.Error("expected job context to carry the timeout")
	}
}
