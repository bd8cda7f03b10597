package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"DISTRIBUTED_SCHEDULER", "DB_RETRY_ATTEMPTS", "DB_RETRY_BACKOFF_MS", "RESEND_API_KEY", "POLL_SCHEDULE", "FETCH_BACKOFF_MS", "NOTIFICATION_BACKOFF_MS"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	if cfg.Distributed {
		t.Error("distributed mode should be off by default")
	}
	if cfg.DBRetryAttempts != 5 {
		t.Errorf("expected 5 retry attempts, got %d", cfg.DBRetryAttempts)
	}
	if cfg.DBRetryBackoff != 300*time.Millisecond {
		t.Errorf("expected 300ms backoff, got %v", cfg.DBRetryBackoff)
	}
	if cfg.PollSchedule != "*/2 * * * *" {
		t.Errorf("unexpected poll schedule %q", cfg.PollSchedule)
	}
	if cfg.NotificationBackoff != time.Second {
		t.Errorf("expected 1s notification backoff, got %v", cfg.NotificationBackoff)
	}
	if cfg.ResendAPIKey != "" {
		t.Error("expected empty API key")
	}
	if AppConfig != cfg {
		t.Error("AppConfig should point at the loaded config")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DISTRIBUTED_SCHEDULER", "yes")
	t.Setenv("DB_RETRY_ATTEMPTS", "2")
	t.Setenv("DB_RETRY_BACKOFF_MS", "10")
	t.Setenv("INCIDENT_STALE_AFTER_HOURS", "6")
	t.Setenv("FETCH_BACKOFF_MS", "50")
	t.Setenv("NOTIFICATION_BACKOFF_MS", "2500")

	cfg := LoadConfig()
	if !cfg.Distributed {
		t.Error("expected distributed mode on")
	}
	if cfg.DBRetryAttempts != 2 || cfg.DBRetryBackoff != 10*time.Millisecond {
		t.Errorf("unexpected retry settings: %d / %v", cfg.DBRetryAttempts, cfg.DBRetryBackoff)
	}
	if cfg.FetchBackoff != 50*time.Millisecond || cfg.NotificationBackoff != 2500*time.Millisecond {
		t.Errorf("fetch and notification backoff are independent: %v / %v", cfg.FetchBackoff, cfg.NotificationBackoff)
	}
	if cfg.IncidentStaleAfter != 6*time.Hour {
		t.Errorf("expected 6h stale window, got %v", cfg.IncidentStaleAfter)
	}
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	if got := getEnvInt("SOME_INT", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
}
