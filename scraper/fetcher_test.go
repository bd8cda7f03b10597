package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testFetcher() *Fetcher {
	return NewFetcher(FetchOptions{Timeout: 2 * time.Second, Attempts: 3, Backoff: time.Millisecond})
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p, err := testFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", p.StatusCode)
	}
	if string(p.Body) != `{"ok":true}` {
		t.Errorf("unexpected body %q", p.Body)
	}
	if !isJSON(p.ContentType) {
		t.Errorf("expected JSON content type, got %q", p.ContentType)
	}
}

func TestFetch_RetriesBadStatusWhenOKRequired(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := testFetcher()
	opts := f.Options
	opts.RequireOK = true
	if _, err := f.FetchWith(context.Background(), srv.URL, opts); err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestFetch_ExhaustedReturnsFetchError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := testFetcher()
	opts := f.Options
	opts.RequireOK = true
	_, err := f.FetchWith(context.Background(), srv.URL, opts)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %T %v", err, err)
	}
	if fe.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected status 503 on error, got %d", fe.StatusCode)
	}
	if fe.Attempts != 3 || calls != 3 {
		t.Errorf("expected 3 attempts, got %d (server saw %d)", fe.Attempts, calls)
	}
}

func TestFetch_NonOKAcceptedWhenNotRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p, err := testFetcher().Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", p.StatusCode)
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewFetcher(FetchOptions{Timeout: 20 * time.Millisecond, Attempts: 2, Backoff: time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fe.StatusCode != 0 {
		t.Errorf("timeouts carry no status code, got %d", fe.StatusCode)
	}
}
