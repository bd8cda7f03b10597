package v1

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"statuspulse/models"
	"statuspulse/scheduler"
)

const (
	JobPollStatuses     = "poll-statuses"
	JobAuditIncidents   = "audit-incidents"
	JobCleanupRetention = "cleanup-retention"

	QueueStatusPolling    = "status-polling"
	QueueIncidentAudit    = "incident-audit"
	QueueRetentionCleanup = "retention-cleanup"
)

// Cleanup job parameters. Both are optional; without either the whole
// table is swept.
const (
	ParamServiceID   = "serviceId"
	ParamServiceSlug = "service"
)

type Schedules struct {
	Poll    string
	Audit   string
	Cleanup string
}

// Tasks holds the three recurring task bodies. The embedded scheduler and
// the worker call the same methods.
type Tasks struct {
	store         Store
	monitor       *Monitor
	retentionDays int
	staleAfter    time.Duration
	now           func() time.Time
}

func NewTasks(store Store, monitor *Monitor, retentionDays int, staleAfter time.Duration) *Tasks {
	return &Tasks{
		store:         store,
		monitor:       monitor,
		retentionDays: retentionDays,
		staleAfter:    staleAfter,
		now:           time.Now,
	}
}

// Jobs is the job table registered with the scheduler.
func (t *Tasks) Jobs(s Schedules) []scheduler.Job {
	return []scheduler.Job{
		{Name: JobPollStatuses, Queue: QueueStatusPolling, Schedule: s.Poll, Run: t.PollStatuses},
		{Name: JobAuditIncidents, Queue: QueueIncidentAudit, Schedule: s.Audit, Run: t.AuditIncidents},
		{Name: JobCleanupRetention, Queue: QueueRetentionCleanup, Schedule: s.Cleanup, Run: t.CleanupRetention},
	}
}

func (t *Tasks) PollStatuses(ctx context.Context, _ map[string]string) error {
	log.Println("[CRON] Polling service statuses...")
	n, err := t.monitor.CheckAll(ctx)
	if err != nil {
		return fmt.Errorf("list active services: %w", err)
	}
	log.Printf("[CRON] Polled %d service(s)", n)
	return nil
}

// AuditIncidents resolves open incidents whose service is up again and
// warns about incidents that have been open for too long.
func (t *Tasks) AuditIncidents(ctx context.Context, _ map[string]string) error {
	open, err := t.store.FindOpenIncidents(ctx)
	if err != nil {
		return fmt.Errorf("find open incidents: %w", err)
	}
	if len(open) == 0 {
		log.Println("[AUDIT] No open incidents")
		return nil
	}

	now := t.now().UTC()
	byService := make(map[int64][]models.Incident)
	var order []int64
	for _, inc := range open {
		if _, seen := byService[inc.ServiceID]; !seen {
			order = append(order, inc.ServiceID)
		}
		byService[inc.ServiceID] = append(byService[inc.ServiceID], inc)
	}

	for _, serviceID := range order {
		incidents := byService[serviceID]
		if len(incidents) > 1 {
			log.Printf("[AUDIT] Service %d has %d open incidents", serviceID, len(incidents))
		}

		latest, err := t.store.FindRecentStatusChecks(ctx, serviceID, 1)
		if err != nil {
			log.Printf("[AUDIT] Error loading latest check for service %d: %v", serviceID, err)
			continue
		}
		if len(latest) > 0 && latest[0].IsUp {
			n, err := t.store.ResolveOpenIncidents(ctx, serviceID, now)
			if err != nil {
				log.Printf("[AUDIT] Error resolving incidents for service %d: %v", serviceID, err)
				continue
			}
			log.Printf("[AUDIT] Service %d is up again, resolved %d incident(s)", serviceID, n)
			continue
		}

		for _, inc := range incidents {
			if t.staleAfter > 0 && now.Sub(inc.StartedAt) > t.staleAfter {
				log.Printf("[AUDIT] Incident %d (%s) has been open since %s",
					inc.ID, inc.Title, inc.StartedAt.Format(time.RFC3339))
			}
		}
	}
	return nil
}

// CleanupRetention deletes status checks older than the retention window,
// optionally scoped to one service.
func (t *Tasks) CleanupRetention(ctx context.Context, params map[string]string) error {
	scope, err := t.cleanupScope(ctx, params)
	if err != nil {
		return err
	}

	cutoff := t.now().UTC().AddDate(0, 0, -t.retentionDays)
	n, err := t.store.DeleteStatusChecksOlderThan(ctx, cutoff, scope)
	if err != nil {
		return fmt.Errorf("delete checks older than %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if scope != nil {
		log.Printf("[CLEANUP] Deleted %d check(s) older than %s for service %d", n, cutoff.Format(time.RFC3339), *scope)
	} else {
		log.Printf("[CLEANUP] Deleted %d check(s) older than %s", n, cutoff.Format(time.RFC3339))
	}
	return nil
}

func (t *Tasks) cleanupScope(ctx context.Context, params map[string]string) (*int64, error) {
	if raw := params[ParamServiceID]; raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", ParamServiceID, raw, err)
		}
		return &id, nil
	}
	if slug := params[ParamServiceSlug]; slug != "" {
		svc, err := t.store.FindService(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("find service %s: %w", slug, err)
		}
		return &svc.ID, nil
	}
	return nil, nil
}
