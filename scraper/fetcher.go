package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"statuspulse/retry"
)

const maxBodyBytes = 2 << 20

// Payload is the raw result of a successful fetch.
type Payload struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Elapsed     time.Duration
}

type FetchOptions struct {
	Timeout  time.Duration
	Attempts int
	Backoff  time.Duration
	Jitter   time.Duration
	// RequireOK treats any non-2xx response as a retryable failure.
	RequireOK bool
}

// FetchError is returned once every attempt has failed. Callers must not
// retry it further.
type FetchError struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %v after %d attempt(s)", e.URL, e.Err, e.Attempts)
}

func (e *FetchError) Unwrap() error { return e.Err }

type badStatusError struct{ code int }

func (e *badStatusError) Error() string { return fmt.Sprintf("unexpected HTTP status %d", e.code) }

type Fetcher struct {
	Client  *http.Client
	Options FetchOptions
}

func NewFetcher(opts FetchOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	return &Fetcher{
		Client:  &http.Client{},
		Options: opts,
	}
}

// Fetch performs a GET with the fetcher's default options.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Payload, error) {
	return f.FetchWith(ctx, url, f.Options)
}

// FetchWith performs a GET with timeout and bounded exponential-backoff retry.
func (f *Fetcher) FetchWith(ctx context.Context, url string, opts FetchOptions) (*Payload, error) {
	var (
		payload  *Payload
		lastCode int
		tries    int
	)

	policy := retry.Policy{Attempts: opts.Attempts, Backoff: opts.Backoff, Jitter: opts.Jitter}
	err := retry.Do(ctx, policy, func(attempt int) error {
		tries = attempt
		p, err := f.once(ctx, url, opts.Timeout)
		if err != nil {
			return err
		}
		lastCode = p.StatusCode
		if opts.RequireOK && (p.StatusCode < 200 || p.StatusCode > 299) {
			return &badStatusError{code: p.StatusCode}
		}
		payload = p
		return nil
	})
	if err != nil {
		fe := &FetchError{URL: url, Attempts: tries, Err: err}
		if _, ok := err.(*badStatusError); ok {
			fe.StatusCode = lastCode
		}
		return nil, fe
	}
	return payload, nil
}

func (f *Fetcher) once(ctx context.Context, url string, timeout time.Duration) (*Payload, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "statuspulse/1.0")
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")

	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Payload{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Elapsed:     time.Since(start),
	}, nil
}
