package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// TestFetchAuthenticatedJSONRetriesOnceOnInvalidCrumb covers spec §8
// scenario 5: the first quoteSummary call returns the Yahoo-level
// {"quoteSummary":{"error":{"description":"Invalid Crumb"}}} body, which
// must trigger exactly one further cookie GET and crumb GET (on top of the
// initial credential pass, since the client starts without credentials),
// and a second quoteSummary call carrying the fresh crumb.
func TestFetchAuthenticatedJSONRetriesOnceOnInvalidCrumb(t *testing.T) {
	var cookieHits, crumbHits, summaryHits int32

	cookieSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cookieHits, 1)
		http.SetCookie(w, &http.Cookie{Name: "A1", Value: "fresh"})
		w.WriteHeader(http.StatusOK)
	}))
	defer cookieSrv.Close()

	crumbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&crumbHits, 1)
		w.Write([]byte("fresh-crumb"))
	}))
	defer crumbSrv.Close()

	summarySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&summaryHits, 1)
		if n == 1 {
			w.Write([]byte(`{"quoteSummary":{"error":{"description":"Invalid Crumb"}}}`))
			return
		}
		w.Write([]byte(`{"quoteSummary":{"result":[{}]}}`))
	}))
	defer summarySrv.Close()

	c, err := NewClientBuilder().
		WithCookieURL(cookieSrv.URL).
		WithCrumbURL(crumbSrv.URL).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	buildURL := func(crumb string) string {
		return summarySrv.URL + "?crumb=" + crumb
	}

	body, err := c.FetchAuthenticatedJSON(context.Background(), buildURL, CacheUse, nil)
	if err != nil {
		t.Fatalf("FetchAuthenticatedJSON: %v", err)
	}
	if body != `{"quoteSummary":{"result":[{}]}}` {
		t.Errorf("body = %q", body)
	}
	// EnsureCredentials re-derives both cookie and crumb whenever the
	// crumb is unset, so the Invalid-Crumb retry (which clears only the
	// crumb) still triggers a second cookie GET alongside the second
	// crumb GET: two full credential passes for one Invalid-Crumb retry.
	if got := atomic.LoadInt32(&cookieHits); got != 2 {
		t.Errorf("cookie hits = %d, want 2", got)
	}
	if got := atomic.LoadInt32(&crumbHits); got != 2 {
		t.Errorf("crumb hits = %d, want 2", got)
	}
	if got := atomic.LoadInt32(&summaryHits); got != 2 {
		t.Errorf("quoteSummary hits = %d, want 2", got)
	}
	if crumb, _ := c.Crumb(); crumb != "fresh-crumb" {
		t.Errorf("cached crumb = %q, want fresh-crumb", crumb)
	}
}

// TestFetchTextSignalsAuthRetryableOn401 covers spec §8 scenario 6: the
// unauthenticated quote v7 pipeline sees a 401 and signals the caller to
// retry with credentials, rather than treating it as a hard error.
func TestFetchTextSignalsAuthRetryableOn401(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClientBuilder().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	_, err = c.FetchText(context.Background(), srv.URL, CacheUse, nil)
	if err == nil {
		t.Fatal("expected an error on 401")
	}
	if !IsAuthRetryable(err) {
		t.Errorf("expected IsAuthRetryable(err) == true, got err = %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("hits = %d, want 1 (no retry loop for 401)", got)
	}
}

// TestQuoteV7AuthFallbackSequence covers the full scenario 6 flow: an
// unauthenticated GET returns 401, the caller (mimicking the quote
// adapter's auth-fallback per spec §4.5.3) then calls EnsureCredentials
// and retries with a crumb appended, succeeding on the second attempt.
func TestQuoteV7AuthFallbackSequence(t *testing.T) {
	var quoteHits, cookieHits, crumbHits int32

	cookieSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cookieHits, 1)
		http.SetCookie(w, &http.Cookie{Name: "A1", Value: "fresh"})
	}))
	defer cookieSrv.Close()

	crumbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&crumbHits, 1)
		w.Write([]byte("fresh-crumb"))
	}))
	defer crumbSrv.Close()

	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&quoteHits, 1)
		if n == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("crumb") == "" {
			t.Errorf("retry request missing crumb query param")
		}
		w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"AAPL"}]}}`))
	}))
	defer quoteSrv.Close()

	c, err := NewClientBuilder().
		WithCookieURL(cookieSrv.URL).
		WithCrumbURL(crumbSrv.URL).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	ctx := context.Background()
	_, err = c.FetchText(ctx, quoteSrv.URL, CacheUse, nil)
	if !IsAuthRetryable(err) {
		t.Fatalf("expected first call to be auth-retryable, got %v", err)
	}

	if err := c.EnsureCredentials(ctx); err != nil {
		t.Fatalf("EnsureCredentials: %v", err)
	}
	crumb, _ := c.Crumb()

	body, err := c.FetchText(ctx, quoteSrv.URL+"?crumb="+crumb, CacheRefresh, nil)
	if err != nil {
		t.Fatalf("retry FetchText: %v", err)
	}
	if body != `{"quoteResponse":{"result":[{"symbol":"AAPL"}]}}` {
		t.Errorf("body = %q", body)
	}
	if got := atomic.LoadInt32(&quoteHits); got != 2 {
		t.Errorf("quote hits = %d, want 2", got)
	}
	if got := atomic.LoadInt32(&cookieHits); got != 1 {
		t.Errorf("cookie hits = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&crumbHits); got != 1 {
		t.Errorf("crumb hits = %d, want 1", got)
	}
}
