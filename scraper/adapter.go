package scraper

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"statuspulse/models"
)

// Adapter turns one monitored source into a normalized observation.
// Scrape never returns an error: failures become a down or unknown
// observation.
type Adapter interface {
	Slug() string
	Scrape(ctx context.Context) models.Observation
}

// ParseError marks a payload the adapter could not understand.
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s payload: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Registry maps service slugs to built-in adapters and builds probe
// adapters for custom services. It is constructed once and passed to the
// components that need it.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	fetcher  *Fetcher
}

func NewRegistry(fetcher *Fetcher) *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
		fetcher:  fetcher,
	}
}

// NewDefaultRegistry returns a registry holding every built-in provider.
func NewDefaultRegistry(fetcher *Fetcher) *Registry {
	r := NewRegistry(fetcher)
	for _, p := range BuiltinProviders {
		r.Register(NewStatuspageAdapter(p, fetcher))
	}
	return r
}

func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[a.Slug()]; exists {
		log.Printf("[SCRAPER] Replacing adapter for slug %s", a.Slug())
	}
	r.adapters[a.Slug()] = a
}

func (r *Registry) Lookup(slug string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[slug]
	return a, ok
}

func (r *Registry) Slugs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slugs := make([]string, 0, len(r.adapters))
	for s := range r.adapters {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs
}

// ForService picks the adapter for a service: a probe for custom services,
// the registered provider otherwise.
func (r *Registry) ForService(svc models.Service) (Adapter, bool) {
	if svc.IsCustom {
		return NewProbeAdapter(svc, r.fetcher), true
	}
	return r.Lookup(svc.Slug)
}
