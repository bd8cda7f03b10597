package v1

import (
	"context"
	"time"

	"statuspulse/models"
)

// The store owns every persisted row. The pipeline keeps no state between
// polling cycles; each decision is re-derived from what is stored here.

type ServiceStore interface {
	FindService(ctx context.Context, slug string) (*models.Service, error)
	ListActiveServices(ctx context.Context) ([]models.Service, error)
	UpdateServiceStatus(ctx context.Context, serviceID int64, level models.Level, checkedAt time.Time) error
}

type CheckStore interface {
	CreateStatusCheck(ctx context.Context, c *models.StatusCheck) error
	// FindRecentStatusChecks returns checks newest first.
	FindRecentStatusChecks(ctx context.Context, serviceID int64, limit int) ([]models.StatusCheck, error)
	DeleteStatusChecksOlderThan(ctx context.Context, cutoff time.Time, serviceID *int64) (int64, error)
}

type IncidentStore interface {
	// CreateIncident writes nothing and returns false when the service
	// already has an open incident.
	CreateIncident(ctx context.Context, inc *models.Incident) (bool, error)
	ResolveOpenIncidents(ctx context.Context, serviceID int64, at time.Time) (int64, error)
	FindOpenIncidents(ctx context.Context) ([]models.Incident, error)
}

type NotificationStore interface {
	FindSubscribers(ctx context.Context, serviceID int64) ([]models.Subscriber, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
}

type Store interface {
	ServiceStore
	CheckStore
	IncidentStore
	NotificationStore
}
