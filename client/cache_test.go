package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchTextCacheUseAvoidsSecondNetworkCall(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	c, _ := NewClientBuilder().WithCacheTTL(time.Minute).Build()
	ctx := context.Background()

	if _, err := c.FetchText(ctx, srv.URL, CacheUse, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchText(ctx, srv.URL, CacheUse, nil); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("network hits = %d, want 1", got)
	}
}

func TestFetchTextCacheRefreshAlwaysHitsNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	c, _ := NewClientBuilder().WithCacheTTL(time.Minute).Build()
	ctx := context.Background()

	if _, err := c.FetchText(ctx, srv.URL, CacheRefresh, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.FetchText(ctx, srv.URL, CacheRefresh, nil); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("network hits = %d, want 2", got)
	}
}

func TestCacheDisabledWithoutDefaultTTL(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("body"))
	}))
	defer srv.Close()

	c, _ := NewClientBuilder().Build() // no WithCacheTTL
	ctx := context.Background()

	c.FetchText(ctx, srv.URL, CacheUse, nil)
	c.FetchText(ctx, srv.URL, CacheUse, nil)
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("network hits = %d, want 2 (cache should be disabled)", got)
	}
}
