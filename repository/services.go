package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"statuspulse/models"
)

var ErrNotFound = errors.New("not found")

const serviceColumns = `id, slug, name, category, url, is_custom, is_active, check_interval,
	expected_status_code, response_time_threshold, check_type, current_status, last_checked_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(row rowScanner) (models.Service, error) {
	var (
		s           models.Service
		status      string
		lastChecked sql.NullTime
	)
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Category, &s.URL, &s.IsCustom, &s.IsActive,
		&s.CheckInterval, &s.ExpectedStatusCode, &s.ResponseTimeThreshold, &s.CheckType,
		&status, &lastChecked)
	if err != nil {
		return s, err
	}
	s.CurrentStatus = models.Level(status)
	if lastChecked.Valid {
		t := lastChecked.Time
		s.LastCheckedAt = &t
	}
	return s, nil
}

func (p *Postgres) FindService(ctx context.Context, slug string) (*models.Service, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE slug = $1`, slug)
	s, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find service %s: %w", slug, err)
	}
	return &s, nil
}

func (p *Postgres) ListActiveServices(ctx context.Context) ([]models.Service, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (p *Postgres) UpdateServiceStatus(ctx context.Context, serviceID int64, level models.Level, checkedAt time.Time) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE services SET current_status = $1, last_checked_at = $2 WHERE id = $3`,
		string(level), checkedAt, serviceID)
	if err != nil {
		return fmt.Errorf("update service %d status: %w", serviceID, err)
	}
	return nil
}
