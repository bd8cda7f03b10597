package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"statuspulse/models"
)

// CreateIncident inserts the incident only when the service has no open
// incident. It reports whether a row was written.
func (p *Postgres) CreateIncident(ctx context.Context, inc *models.Incident) (bool, error) {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO incidents (service_id, title, description, status, severity, started_at)
		SELECT $1::bigint, $2::text, $3::text, $4::text, $5::text, $6::timestamptz
		WHERE NOT EXISTS (
			SELECT 1 FROM incidents WHERE service_id = $1 AND status <> 'resolved'
		)
		RETURNING id`,
		inc.ServiceID, inc.Title, inc.Description, string(inc.Status), string(inc.Severity), inc.StartedAt,
	).Scan(&inc.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert incident: %w", err)
	}
	return true, nil
}

// ResolveOpenIncidents closes every open incident of a service in one
// update. Resolving a service with nothing open is a no-op.
func (p *Postgres) ResolveOpenIncidents(ctx context.Context, serviceID int64, at time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE incidents SET status = 'resolved', resolved_at = $2
		WHERE service_id = $1 AND status <> 'resolved'`, serviceID, at)
	if err != nil {
		return 0, fmt.Errorf("resolve incidents for service %d: %w", serviceID, err)
	}
	return res.RowsAffected()
}

func (p *Postgres) FindOpenIncidents(ctx context.Context) ([]models.Incident, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, service_id, title, description, status, severity, started_at, resolved_at
		FROM incidents WHERE status <> 'resolved' ORDER BY started_at`)
	if err != nil {
		return nil, fmt.Errorf("open incidents: %w", err)
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var (
			inc              models.Incident
			status, severity string
			resolvedAt       sql.NullTime
		)
		if err := rows.Scan(&inc.ID, &inc.ServiceID, &inc.Title, &inc.Description, &status, &severity, &inc.StartedAt, &resolvedAt); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		inc.Status = models.IncidentStatus(status)
		inc.Severity = models.Severity(severity)
		if resolvedAt.Valid {
			t := resolvedAt.Time
			inc.ResolvedAt = &t
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}
