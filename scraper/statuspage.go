package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"strings"
	"time"

	"statuspulse/models"
)

// Provider describes a status page that speaks the Atlassian Statuspage API.
type Provider struct {
	Slug    string
	Name    string
	BaseURL string
	// HTMLFallback enables DOM scraping when the JSON endpoint answers
	// with something other than JSON.
	HTMLFallback bool
}

var BuiltinProviders = []Provider{
	{Slug: "github", Name: "GitHub", BaseURL: "https://www.githubstatus.com"},
	{Slug: "cloudflare", Name: "Cloudflare", BaseURL: "https://www.cloudflarestatus.com"},
	{Slug: "discord", Name: "Discord", BaseURL: "https://discordstatus.com"},
	{Slug: "vercel", Name: "Vercel", BaseURL: "https://www.vercel-status.com"},
	{Slug: "openai", Name: "OpenAI", BaseURL: "https://status.openai.com", HTMLFallback: true},
}

type StatuspageAdapter struct {
	provider Provider
	fetcher  *Fetcher
}

func NewStatuspageAdapter(p Provider, fetcher *Fetcher) *StatuspageAdapter {
	p.BaseURL = strings.TrimSuffix(p.BaseURL, "/")
	return &StatuspageAdapter{provider: p, fetcher: fetcher}
}

func (a *StatuspageAdapter) Slug() string { return a.provider.Slug }

type statusResponse struct {
	Status struct {
		Indicator   string `json:"indicator"`
		Description string `json:"description"`
	} `json:"status"`
}

type incidentsResponse struct {
	Incidents []struct {
		Name      string     `json:"name"`
		Status    string     `json:"status"`
		Impact    string     `json:"impact"`
		Shortlink string     `json:"shortlink"`
		CreatedAt *time.Time `json:"created_at"`
	} `json:"incidents"`
}

func (a *StatuspageAdapter) Scrape(ctx context.Context) models.Observation {
	opts := a.fetcher.Options
	opts.RequireOK = true

	payload, err := a.fetcher.FetchWith(ctx, a.provider.BaseURL+"/api/v2/status.json", opts)
	if err != nil {
		log.Printf("[SCRAPER] %s status fetch failed: %v", a.provider.Name, err)
		obs := models.Observation{
			IsUp:        false,
			Level:       models.Unknown,
			Message:     err.Error(),
			FetchFailed: true,
			Incidents:   []models.ProviderIncident{},
		}
		var fe *FetchError
		if errors.As(err, &fe) && fe.StatusCode != 0 {
			code := fe.StatusCode
			obs.StatusCode = &code
		}
		return obs
	}

	code := payload.StatusCode
	ms := int(payload.Elapsed.Milliseconds())

	var (
		level   models.Level
		message string
	)
	if !isJSON(payload.ContentType) && a.provider.HTMLFallback {
		level, message, err = parseStatusHTML(payload.Body)
	} else {
		level, message, err = parseStatusJSON(payload.Body)
	}
	if err != nil {
		perr := &ParseError{Provider: a.provider.Slug, Err: err}
		log.Printf("[SCRAPER] %v", perr)
		level = models.Unknown
		message = perr.Error()
	}

	return models.Observation{
		IsUp:         level.IsUp(),
		Level:        level,
		Message:      message,
		StatusCode:   &code,
		ResponseTime: &ms,
		Incidents:    a.fetchIncidents(ctx),
	}
}

// fetchIncidents is best effort; any failure yields an empty list.
func (a *StatuspageAdapter) fetchIncidents(ctx context.Context) []models.ProviderIncident {
	incidents := []models.ProviderIncident{}

	opts := a.fetcher.Options
	opts.RequireOK = true
	payload, err := a.fetcher.FetchWith(ctx, a.provider.BaseURL+"/api/v2/incidents/unresolved.json", opts)
	if err != nil {
		log.Printf("[SCRAPER] %s incidents fetch failed: %v", a.provider.Name, err)
		return incidents
	}
	if !isJSON(payload.ContentType) {
		return incidents
	}

	var resp incidentsResponse
	if err := json.Unmarshal(payload.Body, &resp); err != nil {
		log.Printf("[SCRAPER] %s incidents payload unreadable: %v", a.provider.Name, err)
		return incidents
	}
	for _, inc := range resp.Incidents {
		incidents = append(incidents, models.ProviderIncident{
			Name:      inc.Name,
			Status:    inc.Status,
			Impact:    inc.Impact,
			URL:       inc.Shortlink,
			CreatedAt: inc.CreatedAt,
		})
	}
	return incidents
}

func parseStatusJSON(body []byte) (models.Level, string, error) {
	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.Unknown, "", err
	}
	level, ok := levelForIndicator(resp.Status.Indicator)
	if !ok {
		return models.Unknown, "", fmt.Errorf("unknown indicator %q", resp.Status.Indicator)
	}
	return level, resp.Status.Description, nil
}

func levelForIndicator(indicator string) (models.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(indicator)) {
	case "none":
		return models.Operational, true
	case "minor", "maintenance":
		return models.Degraded, true
	case "major":
		return models.PartialOutage, true
	case "critical":
		return models.MajorOutage, true
	}
	return models.Unknown, false
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
