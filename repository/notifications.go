package repository

import (
	"context"
	"database/sql"
	"fmt"

	"statuspulse/models"
)

// FindSubscribers returns every user monitoring the service, with their
// alert preference when one exists.
func (p *Postgres) FindSubscribers(ctx context.Context, serviceID int64) ([]models.Subscriber, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT u.id, u.email, u.name,
		       ap.user_id, ap.email_enabled, ap.slack_webhook, ap.discord_webhook,
		       ap.severity_filter, ap.only_monitored
		FROM user_monitors um
		JOIN users u ON u.id = um.user_id
		LEFT JOIN alert_preferences ap ON ap.user_id = u.id
		WHERE um.service_id = $1
		ORDER BY u.id`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("find subscribers for service %d: %w", serviceID, err)
	}
	defer rows.Close()

	var subs []models.Subscriber
	for rows.Next() {
		var (
			s                       models.Subscriber
			prefUser                sql.NullInt64
			emailOn, onlyMonitored  sql.NullBool
			slack, discord, sevFilt sql.NullString
		)
		if err := rows.Scan(&s.UserID, &s.Email, &s.Name, &prefUser, &emailOn, &slack, &discord, &sevFilt, &onlyMonitored); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		if prefUser.Valid {
			s.Preference = &models.AlertPreference{
				UserID:         prefUser.Int64,
				EmailEnabled:   emailOn.Bool,
				SlackWebhook:   slack.String,
				DiscordWebhook: discord.String,
				SeverityFilter: sevFilt.String,
				OnlyMonitored:  onlyMonitored.Bool,
			}
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (p *Postgres) CreateNotification(ctx context.Context, n *models.Notification) error {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO notifications (user_id, type, channel, title, message, sent, attempts, last_error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		n.UserID, n.Type, n.Channel, n.Title, n.Message, n.Sent, n.Attempts, n.LastError, n.SentAt,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
