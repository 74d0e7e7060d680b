package client

import (
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"
)

// ProfileStrategy selects how the profile loader (C14) resolves a profile:
// API-first with a scrape fallback, or either path alone for tests (spec
// §4.11). It lives on the Client, not on individual call sites, mirroring
// the original source's client-level `api_preference` field (read by
// `client.api_preference()` at every profile-load call site rather than
// threaded through as a per-call argument).
type ProfileStrategy int

const (
	ProfileAPIThenScrape ProfileStrategy = iota
	ProfileAPIOnly
	ProfileScrapeOnly
)

// Client is the process-wide handle described in spec §3: a set of base
// URLs, an HTTP transport, a retry configuration, an optional cache, a
// credential store, a currency cache, and a user-agent string. It is safe
// to share across goroutines by reference (spec §5).
type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
	userAgent  string
	retry      RetryConfig
	cache      *responseCache
	creds      *credentialStore

	profileStrategy ProfileStrategy

	currencyMu    sync.RWMutex
	currencyCache map[string]string
}

func NewClient() *Client {
	b, _ := NewClientBuilder().Build()
	return b
}

// HTTPClient exposes the underlying transport for adapters that need it
// directly. The WebSocket dialer in internal/yahoo does not use it: it
// builds its own dialer and shares only the User-Agent.
func (c *Client) HTTPClient() *http.Client { return c.httpClient }

// Endpoints returns the client's resolved endpoint registry.
func (c *Client) Endpoints() Endpoints { return c.endpoints }

// UserAgent returns the configured User-Agent string; spec §4.1 requires it
// be set on every outbound request including WebSocket handshakes, not only
// ones that go through Send.
func (c *Client) UserAgent() string { return c.userAgent }

// RetryConfig returns the client's default retry policy.
func (c *Client) RetryConfig() RetryConfig { return c.retry }

// ProfileStrategy returns the client's configured profile-resolution
// strategy (spec §6.4's `test_api_preference`, generalized to a real
// builder option rather than a test-only hook).
func (c *Client) ProfileStrategy() ProfileStrategy { return c.profileStrategy }

func newCookieJarClient(timeout, connectTimeout time.Duration, transport http.RoundTripper) *http.Client {
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{
		Timeout: timeout,
		Jar:     jar,
	}
	switch {
	case transport != nil:
		hc.Transport = transport
	case connectTimeout > 0:
		hc.Transport = &http.Transport{
			DialContext: dialWithTimeout(connectTimeout),
		}
	}
	return hc
}
