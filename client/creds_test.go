package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

func TestEnsureCredentialsSingleFlight(t *testing.T) {
	var cookieHits, crumbHits int32
	cookieSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cookieHits, 1)
		http.SetCookie(w, &http.Cookie{Name: "B", Value: "abc"})
		w.WriteHeader(http.StatusOK)
	}))
	defer cookieSrv.Close()

	crumbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&crumbHits, 1)
		w.Write([]byte("deadbeef"))
	}))
	defer crumbSrv.Close()

	c, _ := NewClientBuilder().WithCookieURL(cookieSrv.URL).WithCrumbURL(crumbSrv.URL).Build()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.EnsureCredentials(context.Background())
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&cookieHits); got != 1 {
		t.Errorf("cookie GETs = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&crumbHits); got != 1 {
		t.Errorf("crumb GETs = %d, want 1", got)
	}

	crumb, ok := c.Crumb()
	if !ok || crumb != "deadbeef" {
		t.Errorf("crumb = %q, ok=%v, want deadbeef", crumb, ok)
	}
}

func TestClearCrumbLeavesCookieIntact(t *testing.T) {
	c, _ := NewClientBuilder().WithTestPreauth("cookie-value", "crumb-value").Build()
	c.ClearCrumb()

	if _, ok := c.Crumb(); ok {
		t.Errorf("expected crumb cleared")
	}
	if c.creds.cookie != "cookie-value" {
		t.Errorf("cookie should remain intact after ClearCrumb")
	}
}

func TestFetchCrumbRejectsHTMLLookingBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>error</html>"))
	}))
	defer srv.Close()

	c, _ := NewClientBuilder().WithCrumbURL(srv.URL).Build()
	if _, err := c.fetchCrumb(context.Background()); err == nil {
		t.Errorf("expected error for HTML-looking crumb body")
	}
}
