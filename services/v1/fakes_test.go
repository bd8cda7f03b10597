package v1

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"statuspulse/models"
	"statuspulse/notify"
)

var errStore = errors.New("store unavailable")

// memStore is an in-memory Store. failChecksFor makes every check write
// for that service fail.
type memStore struct {
	mu            sync.Mutex
	services      []models.Service
	checks        []models.StatusCheck
	incidents     []models.Incident
	subscribers   map[int64][]models.Subscriber
	notifications []models.Notification
	nextID        int64

	failChecksFor map[int64]bool
	checkAttempts map[int64]int
	failNotify    bool
}

func newMemStore(services ...models.Service) *memStore {
	return &memStore{
		services:      services,
		subscribers:   make(map[int64][]models.Subscriber),
		failChecksFor: make(map[int64]bool),
		checkAttempts: make(map[int64]int),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) FindService(_ context.Context, slug string) (*models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.services {
		if s.Slug == slug {
			svc := s
			return &svc, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memStore) ListActiveServices(context.Context) ([]models.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Service
	for _, s := range m.services {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) UpdateServiceStatus(_ context.Context, serviceID int64, level models.Level, checkedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.services {
		if m.services[i].ID == serviceID {
			m.services[i].CurrentStatus = level
			at := checkedAt
			m.services[i].LastCheckedAt = &at
		}
	}
	return nil
}

func (m *memStore) CreateStatusCheck(_ context.Context, c *models.StatusCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkAttempts[c.ServiceID]++
	if m.failChecksFor[c.ServiceID] {
		return errStore
	}
	c.ID = m.id()
	m.checks = append(m.checks, *c)
	return nil
}

// seedCheck appends a check without counting it as a write attempt.
func (m *memStore) seedCheck(serviceID int64, up bool, level models.Level, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, models.StatusCheck{ID: m.id(), ServiceID: serviceID, IsUp: up, Level: level, CheckedAt: at})
}

func (m *memStore) FindRecentStatusChecks(_ context.Context, serviceID int64, limit int) ([]models.StatusCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StatusCheck
	for _, c := range m.checks {
		if c.ServiceID == serviceID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CheckedAt.Equal(out[j].CheckedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CheckedAt.After(out[j].CheckedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) DeleteStatusChecksOlderThan(_ context.Context, cutoff time.Time, serviceID *int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models.StatusCheck
	var n int64
	for _, c := range m.checks {
		if c.CheckedAt.Before(cutoff) && (serviceID == nil || c.ServiceID == *serviceID) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	m.checks = kept
	return n, nil
}

func (m *memStore) checksFor(serviceID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.checks {
		if c.ServiceID == serviceID {
			n++
		}
	}
	return n
}

func (m *memStore) CreateIncident(_ context.Context, inc *models.Incident) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.incidents {
		if existing.ServiceID == inc.ServiceID && existing.IsOpen() {
			return false, nil
		}
	}
	inc.ID = m.id()
	m.incidents = append(m.incidents, *inc)
	return true, nil
}

func (m *memStore) ResolveOpenIncidents(_ context.Context, serviceID int64, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.incidents {
		if m.incidents[i].ServiceID == serviceID && m.incidents[i].IsOpen() {
			resolvedAt := at
			m.incidents[i].Status = models.IncidentResolved
			m.incidents[i].ResolvedAt = &resolvedAt
			n++
		}
	}
	return n, nil
}

func (m *memStore) FindOpenIncidents(context.Context) ([]models.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Incident
	for _, inc := range m.incidents {
		if inc.IsOpen() {
			out = append(out, inc)
		}
	}
	return out, nil
}

func (m *memStore) incidentsFor(serviceID int64) []models.Incident {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Incident
	for _, inc := range m.incidents {
		if inc.ServiceID == serviceID {
			out = append(out, inc)
		}
	}
	return out
}

func (m *memStore) FindSubscribers(_ context.Context, serviceID int64) ([]models.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribers[serviceID], nil
}

func (m *memStore) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNotify {
		return errStore
	}
	n.ID = m.id()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *memStore) notificationsFor(userID int64) []models.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// stubAdapter returns a fixed observation.
type stubAdapter struct {
	slug string
	obs  models.Observation
	hook func()
}

func (a *stubAdapter) Slug() string { return a.slug }

func (a *stubAdapter) Scrape(context.Context) models.Observation {
	if a.hook != nil {
		a.hook()
	}
	return a.obs
}

type sent struct {
	Target string
	Msg    notify.Message
}

// recordingChannel records deliveries and fails the first failFirst sends,
// or every send when failAlways is set.
type recordingChannel struct {
	name       string
	failFirst  int
	failAlways bool

	mu    sync.Mutex
	calls int
	sent  []sent
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(_ context.Context, target string, msg notify.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.failAlways || c.calls <= c.failFirst {
		return errors.New("webhook returned 500")
	}
	c.sent = append(c.sent, sent{Target: target, Msg: msg})
	return nil
}

func (c *recordingChannel) deliveries() []sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sent(nil), c.sent...)
}

// recordingNotifier captures status changes handed to the dispatcher.
type recordingNotifier struct {
	mu      sync.Mutex
	changes []StatusChange
}

func (n *recordingNotifier) NotifyStatusChange(_ context.Context, c StatusChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
}

func (n *recordingNotifier) all() []StatusChange {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]StatusChange(nil), n.changes...)
}

func intp(v int) *int { return &v }
