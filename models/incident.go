package models

import "time"

type IncidentStatus string

const (
	IncidentInvestigating IncidentStatus = "investigating"
	IncidentIdentified    IncidentStatus = "identified"
	IncidentMonitoring    IncidentStatus = "monitoring"
	IncidentResolved      IncidentStatus = "resolved"
)

// Incident tracks one outage of a service. At most one incident per
// service has a status other than resolved.
type Incident struct {
	ID          int64
	ServiceID   int64
	Title       string
	Description string
	Status      IncidentStatus
	Severity    Severity
	StartedAt   time.Time
	ResolvedAt  *time.Time
}

func (i Incident) IsOpen() bool {
	return i.Status != IncidentResolved
}
