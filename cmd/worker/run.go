package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"statuspulse/client"
	"statuspulse/config"
	"statuspulse/repository"
	v1 "statuspulse/services/v1"
	"statuspulse/worker"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Consume job queues until shut down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := config.AppConfig

		db, err := client.ConnectPostgres(cfg.PostgresURI)
		if err != nil {
			return err
		}
		defer db.Close()
		store := repository.NewPostgres(db)

		q, err := connectQueue(ctx)
		if err != nil {
			return err
		}
		defer q.Close()

		tasks := v1.NewTasksFromConfig(cfg, store)
		rt := worker.New(q, tasks.Jobs(v1.SchedulesFromConfig(cfg)), cfg.WorkerJobTimeout, cfg.WorkerShutdownGrace)
		if err := rt.Start(ctx); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}

		<-rt.Done()
		log.Println("[WORKER] Exiting")
		return nil
	},
}
