package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"statuspulse/queue"
)

func init() {
	rootCmd.AddCommand(shutdownCmd)
}

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Ask every running worker to finish in-flight jobs and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := connectQueue(cmd.Context())
		if err != nil {
			return err
		}
		defer q.Close()

		if err := q.PublishControl(cmd.Context(), queue.CommandShutdown); err != nil {
			return fmt.Errorf("publish shutdown: %w", err)
		}
		fmt.Println("shutdown requested")
		return nil
	},
}
