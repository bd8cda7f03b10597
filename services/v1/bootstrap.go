package v1

import (
	"statuspulse/config"
	"statuspulse/notify"
	"statuspulse/retry"
	"statuspulse/scraper"
)

// NewTasksFromConfig wires the polling pipeline and the task bodies. Both
// the server and the worker build their tasks here.
func NewTasksFromConfig(cfg *config.Config, store Store) *Tasks {
	fetcher := scraper.NewFetcher(scraper.FetchOptions{
		Timeout:  cfg.FetchTimeout,
		Attempts: cfg.FetchRetries,
		Backoff:  cfg.FetchBackoff,
		Jitter:   retry.DefaultJitter,
	})
	registry := scraper.NewDefaultRegistry(fetcher)

	recorder := NewCheckRecorder(store, cfg.DBRetryAttempts, cfg.DBRetryBackoff)
	dispatcher := NewNotificationDispatcher(store, Channels{
		Email:   notify.NewEmailChannel(cfg.ResendAPIKey, cfg.EmailFrom),
		Slack:   &notify.SlackChannel{},
		Discord: &notify.DiscordChannel{},
	}, cfg.NotificationMaxAttempts, cfg.NotificationBackoff)

	monitor := NewMonitor(store, registry, recorder, dispatcher)
	return NewTasks(store, monitor, cfg.RetentionDays, cfg.IncidentStaleAfter)
}

func SchedulesFromConfig(cfg *config.Config) Schedules {
	return Schedules{
		Poll:    cfg.PollSchedule,
		Audit:   cfg.AuditSchedule,
		Cleanup: cfg.CleanupSchedule,
	}
}
