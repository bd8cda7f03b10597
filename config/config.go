package config

import (
	"time"
)

type Config struct {
	Port        string
	PostgresURI string
	RedisURI    string

	// Distributed switches the scheduler from in-process cron timers to
	// repeatable jobs on the Redis queue.
	Distributed bool

	DBRetryAttempts int
	DBRetryBackoff  time.Duration

	FetchTimeout time.Duration
	FetchRetries int
	FetchBackoff time.Duration

	ResendAPIKey            string
	EmailFrom               string
	NotificationMaxAttempts int
	NotificationBackoff     time.Duration

	RetentionDays       int
	IncidentStaleAfter  time.Duration
	PollSchedule        string
	AuditSchedule       string
	CleanupSchedule     string
	WorkerShutdownGrace time.Duration
	WorkerJobTimeout    time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	loadDotEnv()

	AppConfig = &Config{
		Port:        getEnv("PORT", "8081"),
		PostgresURI: getEnv("POSTGRES_URI", "postgres://localhost:5432/statuspulse?sslmode=disable"),
		RedisURI:    getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Distributed: getEnvBool("DISTRIBUTED_SCHEDULER", false),

		DBRetryAttempts: getEnvInt("DB_RETRY_ATTEMPTS", 5),
		DBRetryBackoff:  getEnvMillis("DB_RETRY_BACKOFF_MS", 300),

		FetchTimeout: getEnvMillis("FETCH_TIMEOUT_MS", 10000),
		FetchRetries: getEnvInt("FETCH_RETRIES", 3),
		FetchBackoff: getEnvMillis("FETCH_BACKOFF_MS", 500),

		ResendAPIKey:            getEnv("RESEND_API_KEY", ""),
		EmailFrom:               getEnv("EMAIL_FROM", "alerts@statuspulse.local"),
		NotificationMaxAttempts: getEnvInt("NOTIFICATION_MAX_ATTEMPTS", 3),
		NotificationBackoff:     getEnvMillis("NOTIFICATION_BACKOFF_MS", 1000),

		RetentionDays:       getEnvInt("RETENTION_DAYS", 30),
		IncidentStaleAfter:  time.Duration(getEnvInt("INCIDENT_STALE_AFTER_HOURS", 24)) * time.Hour,
		PollSchedule:        getEnv("POLL_SCHEDULE", "*/2 * * * *"),
		AuditSchedule:       getEnv("AUDIT_SCHEDULE", "*/5 * * * *"),
		CleanupSchedule:     getEnv("CLEANUP_SCHEDULE", "0 3 * * *"),
		WorkerShutdownGrace: time.Duration(getEnvInt("WORKER_SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second,
		WorkerJobTimeout:    time.Duration(getEnvInt("WORKER_JOB_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	return AppConfig
}
