package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"statuspulse/models"
)

func (p *Postgres) CreateStatusCheck(ctx context.Context, c *models.StatusCheck) error {
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO status_checks (service_id, is_up, level, status_code, response_time, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		c.ServiceID, c.IsUp, string(c.Level), nullInt(c.StatusCode), nullInt(c.ResponseTime), c.CheckedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert status check: %w", err)
	}
	return nil
}

// FindRecentStatusChecks returns up to limit checks, newest first.
func (p *Postgres) FindRecentStatusChecks(ctx context.Context, serviceID int64, limit int) ([]models.StatusCheck, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, service_id, is_up, level, status_code, response_time, checked_at
		FROM status_checks
		WHERE service_id = $1
		ORDER BY checked_at DESC, id DESC
		LIMIT $2`, serviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent status checks: %w", err)
	}
	defer rows.Close()

	var checks []models.StatusCheck
	for rows.Next() {
		var (
			c            models.StatusCheck
			level        string
			code, respMs sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.ServiceID, &c.IsUp, &level, &code, &respMs, &c.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan status check: %w", err)
		}
		c.Level = models.Level(level)
		c.StatusCode = intPtr(code)
		c.ResponseTime = intPtr(respMs)
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

// DeleteStatusChecksOlderThan removes checks before cutoff, optionally for a
// single service.
func (p *Postgres) DeleteStatusChecksOlderThan(ctx context.Context, cutoff time.Time, serviceID *int64) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if serviceID != nil {
		res, err = p.db.ExecContext(ctx, `DELETE FROM status_checks WHERE checked_at < $1 AND service_id = $2`, cutoff, *serviceID)
	} else {
		res, err = p.db.ExecContext(ctx, `DELETE FROM status_checks WHERE checked_at < $1`, cutoff)
	}
	if err != nil {
		return 0, fmt.Errorf("delete old status checks: %w", err)
	}
	return res.RowsAffected()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
