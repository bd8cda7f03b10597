package v1

import (
	"context"
	"fmt"
	"log"
	"time"

	"statuspulse/models"
)

// IncidentLifecycleManager opens an incident on degrade and resolves open
// incidents on recovery. The store is the only source of truth; failures
// are logged and left for the next cycle or the audit job to converge.
type IncidentLifecycleManager struct {
	store IncidentStore
	now   func() time.Time
}

func NewIncidentLifecycleManager(store IncidentStore) *IncidentLifecycleManager {
	return &IncidentLifecycleManager{store: store, now: time.Now}
}

// Apply performs the lifecycle action for a change. It reports whether
// the store was modified.
func (m *IncidentLifecycleManager) Apply(ctx context.Context, svc models.Service, change Change, message string) bool {
	switch change.Transition {
	case Degrade:
		return m.open(ctx, svc, change.Current.Level, message)
	case Recover:
		return m.resolve(ctx, svc)
	default:
		return false
	}
}

func (m *IncidentLifecycleManager) open(ctx context.Context, svc models.Service, level models.Level, message string) bool {
	if message == "" {
		message = "Status check reported the service as unavailable."
	}
	inc := &models.Incident{
		ServiceID:   svc.ID,
		Title:       incidentTitle(svc.Name, level),
		Description: message,
		Status:      models.IncidentInvestigating,
		Severity:    models.SeverityForLevel(level),
		StartedAt:   m.now().UTC(),
	}

	created, err := m.store.CreateIncident(ctx, inc)
	if err != nil {
		log.Printf("[INCIDENT] Error opening incident for %s (ID: %d): %v", svc.Name, svc.ID, err)
		return false
	}
	if !created {
		log.Printf("[INCIDENT] %s (ID: %d) already has an open incident, not opening another", svc.Name, svc.ID)
		return false
	}
	log.Printf("[INCIDENT] Opened incident %d for %s (ID: %d) severity=%s", inc.ID, svc.Name, svc.ID, inc.Severity)
	return true
}

// resolve is idempotent: resolving with nothing open changes nothing.
func (m *IncidentLifecycleManager) resolve(ctx context.Context, svc models.Service) bool {
	n, err := m.store.ResolveOpenIncidents(ctx, svc.ID, m.now().UTC())
	if err != nil {
		log.Printf("[INCIDENT] Error resolving incidents for %s (ID: %d): %v", svc.Name, svc.ID, err)
		return false
	}
	if n > 0 {
		log.Printf("[INCIDENT] Resolved %d incident(s) for %s (ID: %d)", n, svc.Name, svc.ID)
	}
	return n > 0
}

func incidentTitle(name string, level models.Level) string {
	switch level {
	case models.MajorOutage:
		return fmt.Sprintf("%s is down", name)
	case models.PartialOutage:
		return fmt.Sprintf("%s partial outage", name)
	case models.Degraded:
		return fmt.Sprintf("%s degraded performance", name)
	default:
		return fmt.Sprintf("%s is unavailable", name)
	}
}
