package v1

import (
	"context"
	"log"
	"sync"

	"statuspulse/models"
	"statuspulse/scraper"
)

// Monitor runs the per-service pipeline:
// scrape -> record -> detect -> incident lifecycle -> notify.
type Monitor struct {
	store     ServiceStore
	registry  *scraper.Registry
	recorder  *CheckRecorder
	detector  *ChangeDetector
	incidents *IncidentLifecycleManager
	notifier  StatusNotifier
}

func NewMonitor(store Store, registry *scraper.Registry, recorder *CheckRecorder, notifier StatusNotifier) *Monitor {
	return &Monitor{
		store:     store,
		registry:  registry,
		recorder:  recorder,
		detector:  NewChangeDetector(store),
		incidents: NewIncidentLifecycleManager(store),
		notifier:  notifier,
	}
}

// CheckAll checks every active service concurrently, one goroutine per
// service, and waits for all of them.
func (m *Monitor) CheckAll(ctx context.Context) (int, error) {
	services, err := m.store.ListActiveServices(ctx)
	if err != nil {
		return 0, err
	}

	var wg sync.WaitGroup
	for _, svc := range services {
		wg.Add(1)
		go func(svc models.Service) {
			defer wg.Done()
			m.CheckService(ctx, svc)
		}(svc)
	}
	wg.Wait()
	return len(services), nil
}

// CheckService never panics or returns an error: one service failing must
// not affect the others in the same cycle.
func (m *Monitor) CheckService(ctx context.Context, svc models.Service) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[HEALTH] Panic while checking %s (ID: %d): %v", svc.Name, svc.ID, r)
		}
	}()

	adapter, ok := m.registry.ForService(svc)
	if !ok {
		log.Printf("[HEALTH] No adapter registered for %s (slug: %s), skipping", svc.Name, svc.Slug)
		return
	}

	obs := adapter.Scrape(ctx)
	if !m.recorder.Record(ctx, svc, obs) {
		return
	}

	change, err := m.detector.Detect(ctx, svc.ID)
	if err != nil {
		log.Printf("[HEALTH] Error detecting change for %s (ID: %d): %v", svc.Name, svc.ID, err)
		return
	}
	if change.Transition == NoChange {
		log.Printf("[HEALTH] %s (ID: %d) check completed with status %s", svc.Name, svc.ID, obs.Level)
		return
	}

	log.Printf("[HEALTH] %s (ID: %d) transition %s (%s -> %s)",
		svc.Name, svc.ID, change.Transition, change.Previous.Level, change.Current.Level)

	m.incidents.Apply(ctx, svc, change, obs.Message)
	if m.notifier != nil {
		m.notifier.NotifyStatusChange(ctx, statusChangeFor(svc, change, obs.Message))
	}
}

func statusChangeFor(svc models.Service, change Change, message string) StatusChange {
	sc := StatusChange{ServiceID: svc.ID, ServiceName: svc.Name, Message: message}
	switch change.Transition {
	case Degrade:
		sc.OldLevel = models.Operational
		sc.NewLevel = downLevel(change.Current.Level)
	case Recover:
		sc.OldLevel = downLevel(change.Previous.Level)
		sc.NewLevel = change.Current.Level
		if sc.NewLevel == "" {
			sc.NewLevel = models.Operational
		}
	}
	return sc
}

// downLevel normalizes the level of a check that was down.
func downLevel(l models.Level) models.Level {
	if l == "" || l.IsUp() {
		return models.MajorOutage
	}
	return l
}
