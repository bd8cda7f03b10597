package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"statuspulse/models"
)

const (
	DefaultExpectedStatus        = http.StatusOK
	DefaultResponseTimeThreshold = 5000 // milliseconds
)

// ProbeAdapter checks a user-defined endpoint by status code and latency.
type ProbeAdapter struct {
	service models.Service
	fetcher *Fetcher
}

func NewProbeAdapter(svc models.Service, fetcher *Fetcher) *ProbeAdapter {
	return &ProbeAdapter{service: svc, fetcher: fetcher}
}

func (p *ProbeAdapter) Slug() string { return p.service.Slug }

func (p *ProbeAdapter) Scrape(ctx context.Context) models.Observation {
	opts := p.fetcher.Options
	opts.RequireOK = false

	payload, err := p.fetcher.FetchWith(ctx, p.service.URL, opts)
	if err != nil {
		log.Printf("[SCRAPER] Probe %s (ID: %d) failed: %v", p.service.Name, p.service.ID, err)
		return models.Observation{
			IsUp:        false,
			Level:       models.MajorOutage,
			Message:     err.Error(),
			FetchFailed: true,
			Incidents:   []models.ProviderIncident{},
		}
	}

	code := payload.StatusCode
	ms := int(payload.Elapsed.Milliseconds())
	isUp, level, message := classifyProbe(p.expectedStatus(), p.threshold(), code, ms)

	return models.Observation{
		IsUp:         isUp,
		Level:        level,
		Message:      message,
		StatusCode:   &code,
		ResponseTime: &ms,
		Incidents:    []models.ProviderIncident{},
	}
}

func (p *ProbeAdapter) expectedStatus() int {
	if p.service.ExpectedStatusCode > 0 {
		return p.service.ExpectedStatusCode
	}
	return DefaultExpectedStatus
}

func (p *ProbeAdapter) threshold() int {
	if p.service.ResponseTimeThreshold > 0 {
		return p.service.ResponseTimeThreshold
	}
	return DefaultResponseTimeThreshold
}

// classifyProbe: a wrong status code is a major outage; the right code
// over the latency threshold is degraded but still up.
func classifyProbe(expected, thresholdMs, code, ms int) (bool, models.Level, string) {
	if code != expected {
		return false, models.MajorOutage, fmt.Sprintf("expected HTTP %d, got %d", expected, code)
	}
	if thresholdMs > 0 && ms > thresholdMs {
		return true, models.Degraded, fmt.Sprintf("slow response: %dms exceeds %dms threshold", ms, thresholdMs)
	}
	return true, models.Operational, fmt.Sprintf("HTTP %d in %dms", code, ms)
}
