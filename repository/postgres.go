// Package repository is the Postgres-backed store used by the monitoring
// pipeline.
package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) DB() *sql.DB { return p.db }

// Migrate creates the tables the pipeline reads and writes. Safe to run
// repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS services (
			id                      BIGSERIAL PRIMARY KEY,
			slug                    TEXT NOT NULL UNIQUE,
			name                    TEXT NOT NULL,
			category                TEXT NOT NULL DEFAULT '',
			url                     TEXT NOT NULL DEFAULT '',
			is_custom               BOOLEAN NOT NULL DEFAULT FALSE,
			is_active               BOOLEAN NOT NULL DEFAULT TRUE,
			check_interval          INTEGER NOT NULL DEFAULT 120,
			expected_status_code    INTEGER NOT NULL DEFAULT 200,
			response_time_threshold INTEGER NOT NULL DEFAULT 5000,
			check_type              TEXT NOT NULL DEFAULT 'http',
			current_status          TEXT NOT NULL DEFAULT 'unknown',
			last_checked_at         TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS status_checks (
			id            BIGSERIAL PRIMARY KEY,
			service_id    BIGINT NOT NULL REFERENCES services(id) ON DELETE CASCADE,
			is_up         BOOLEAN NOT NULL,
			level         TEXT NOT NULL DEFAULT 'unknown',
			status_code   INTEGER,
			response_time INTEGER,
			checked_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_status_checks_service_time
			ON status_checks(service_id, checked_at DESC);

		CREATE TABLE IF NOT EXISTS incidents (
			id          BIGSERIAL PRIMARY KEY,
			service_id  BIGINT NOT NULL REFERENCES services(id) ON DELETE CASCADE,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'investigating',
			severity    TEXT NOT NULL DEFAULT 'none',
			started_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			resolved_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_incidents_service_status ON incidents(service_id, status);

		CREATE TABLE IF NOT EXISTS users (
			id    BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name  TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS user_monitors (
			user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			service_id BIGINT NOT NULL REFERENCES services(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, service_id)
		);

		CREATE TABLE IF NOT EXISTS alert_preferences (
			user_id         BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			email_enabled   BOOLEAN NOT NULL DEFAULT TRUE,
			slack_webhook   TEXT NOT NULL DEFAULT '',
			discord_webhook TEXT NOT NULL DEFAULT '',
			severity_filter TEXT NOT NULL DEFAULT 'all',
			only_monitored  BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id         BIGSERIAL PRIMARY KEY,
			user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type       TEXT NOT NULL,
			channel    TEXT NOT NULL,
			title      TEXT NOT NULL,
			message    TEXT NOT NULL DEFAULT '',
			sent       BOOLEAN NOT NULL DEFAULT FALSE,
			attempts   INTEGER NOT NULL DEFAULT 0,
			last_error TEXT NOT NULL DEFAULT '',
			sent_at    TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
