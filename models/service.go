package models

import "time"

// Service is a monitored dependency. Rows are owned by the store; the
// monitoring core only writes the status-derived fields.
type Service struct {
	ID                    int64
	Slug                  string
	Name                  string
	Category              string
	URL                   string
	IsCustom              bool
	IsActive              bool
	CheckInterval         int // seconds
	ExpectedStatusCode    int
	ResponseTimeThreshold int // milliseconds
	CheckType             string
	CurrentStatus         Level
	LastCheckedAt         *time.Time
}

// StatusCheck is one append-only probe result.
type StatusCheck struct {
	ID           int64
	ServiceID    int64
	IsUp         bool
	Level        Level
	StatusCode   *int
	ResponseTime *int // milliseconds
	CheckedAt    time.Time
}

// ProviderIncident is an incident reported by an upstream status page.
type ProviderIncident struct {
	Name      string
	Status    string
	Impact    string
	URL       string
	CreatedAt *time.Time
}

// Observation is the normalized output of scraping one service once. It
// is never stored directly.
type Observation struct {
	IsUp         bool
	Level        Level
	Message      string
	StatusCode   *int
	ResponseTime *int
	Incidents    []ProviderIncident
	// FetchFailed marks observations produced from a terminal fetch error.
	FetchFailed bool
}
