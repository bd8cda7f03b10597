package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statuspulse/api"
	"statuspulse/client"
	"statuspulse/config"
	"statuspulse/queue"
	"statuspulse/repository"
	"statuspulse/scheduler"
	v1 "statuspulse/services/v1"
)

func main() {
	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := client.ConnectPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatalf("[POSTGRES] %v", err)
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatalf("[POSTGRES] Migration failed: %v", err)
	}
	store := repository.NewPostgres(db)

	tasks := v1.NewTasksFromConfig(cfg, store)

	// Distributed mode only registers the repeatable jobs here; workers
	// started with cmd/worker execute them.
	sched := scheduler.New(ctx, cfg.Distributed, queue.Connect(cfg.RedisURI), cfg.WorkerJobTimeout)
	if err := sched.Register(ctx, tasks.Jobs(v1.SchedulesFromConfig(cfg))); err != nil {
		log.Fatalf("[SCHEDULER] Failed to register jobs: %v", err)
	}
	sched.Start()
	log.Printf("[SCHEDULER] Running in %s mode", sched.Mode())

	srv := api.NewServer(sched)
	go func() {
		log.Printf("[API] Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[SCHEDULER] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.WorkerShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		sched.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(cfg.WorkerShutdownGrace):
		log.Println("[SCHEDULER] Running jobs did not finish in time")
	}
}
