package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	v1 "statuspulse/services/v1"
)

var (
	cleanupServiceID   int64
	cleanupServiceSlug string
)

// enqueueTargets maps a command argument to the job it pushes.
var enqueueTargets = map[string]struct{ job, queue string }{
	"poll":    {v1.JobPollStatuses, v1.QueueStatusPolling},
	"audit":   {v1.JobAuditIncidents, v1.QueueIncidentAudit},
	"cleanup": {v1.JobCleanupRetention, v1.QueueRetentionCleanup},
}

func init() {
	rootCmd.AddCommand(enqueueCmd)
	enqueueCmd.Flags().Int64Var(&cleanupServiceID, "service-id", 0, "restrict cleanup to one service id")
	enqueueCmd.Flags().StringVar(&cleanupServiceSlug, "service", "", "restrict cleanup to one service slug")
}

var enqueueCmd = &cobra.Command{
	Use:       "enqueue <poll|audit|cleanup>",
	Short:     "Push a one-off run of a recurring job",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"poll", "audit", "cleanup"},
	RunE: func(cmd *cobra.Command, args []string) error {
		target := enqueueTargets[args[0]]
		params, err := enqueueParams(args[0])
		if err != nil {
			return err
		}

		q, err := connectQueue(cmd.Context())
		if err != nil {
			return err
		}
		defer q.Close()

		id, err := q.Enqueue(cmd.Context(), target.queue, target.job, params)
		if err != nil {
			return fmt.Errorf("enqueue %s: %w", target.job, err)
		}
		fmt.Printf("enqueued %s on %s (id %s)\n", target.job, target.queue, id)
		return nil
	},
}

func enqueueParams(name string) (map[string]string, error) {
	scoped := cleanupServiceID != 0 || cleanupServiceSlug != ""
	if name != "cleanup" {
		if scoped {
			return nil, fmt.Errorf("--service-id and --service only apply to cleanup")
		}
		return nil, nil
	}

	params := map[string]string{}
	if cleanupServiceID != 0 {
		params[v1.ParamServiceID] = strconv.FormatInt(cleanupServiceID, 10)
	}
	if cleanupServiceSlug != "" {
		params[v1.ParamServiceSlug] = cleanupServiceSlug
	}
	return params, nil
}
