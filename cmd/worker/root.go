package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"statuspulse/config"
	"statuspulse/queue"
)

var rootCmd = &cobra.Command{
	Use:   "statuspulse-worker",
	Short: "Worker and operator commands for distributed job scheduling",
	Long: `Consumes the status-polling, incident-audit and retention-cleanup queues
when the scheduler runs in distributed mode, and sends operational commands
to running workers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func connectQueue(ctx context.Context) (queue.Queue, error) {
	q, err := queue.Connect(config.AppConfig.RedisURI)(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to queue backend: %w", err)
	}
	return q, nil
}
