package client

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ClientBuilder assembles a Client (spec §6.4's enumerated builder options:
// user_agent, timeout, connect_timeout, retry_config, cache_ttl,
// custom_http_client, proxy, each_base_url_override,
// test_preauth_credentials, test_api_preference). Modeled after the
// original source's YfClientBuilder (try_/plain setter split for
// fallible options like proxy URLs).
type ClientBuilder struct {
	userAgent       string
	timeout         time.Duration
	connectTimeout  time.Duration
	retry           RetryConfig
	retryEnabled    *bool
	cacheTTL        time.Duration
	cacheEnabled    bool
	customClient    *http.Client
	proxy           *url.URL
	endpoints       Endpoints
	profileStrategy ProfileStrategy

	// test-only overrides, mirroring the original's `_preauth` hook used to
	// drive fixture-backed tests without a real credential round trip.
	preauthCookie string
	preauthCrumb  string
}

// NewClientBuilder seeds every default from spec §4.2/§4.6/§6.1.
func NewClientBuilder() *ClientBuilder {
	return &ClientBuilder{
		userAgent:       DefaultUserAgent,
		timeout:         30 * time.Second,
		retry:           DefaultRetryConfig(),
		endpoints:       DefaultEndpoints(),
		profileStrategy: ProfileAPIThenScrape,
	}
}

func (b *ClientBuilder) WithUserAgent(ua string) *ClientBuilder {
	b.userAgent = ua
	return b
}

func (b *ClientBuilder) WithTimeout(d time.Duration) *ClientBuilder {
	b.timeout = d
	return b
}

func (b *ClientBuilder) WithConnectTimeout(d time.Duration) *ClientBuilder {
	b.connectTimeout = d
	return b
}

func (b *ClientBuilder) WithRetryConfig(cfg RetryConfig) *ClientBuilder {
	b.retry = cfg
	return b
}

func (b *ClientBuilder) WithRetryEnabled(enabled bool) *ClientBuilder {
	b.retryEnabled = &enabled
	return b
}

// WithCacheTTL enables caching with the given default TTL (spec §4.3:
// "caching is disabled unless the client was built with a default TTL").
func (b *ClientBuilder) WithCacheTTL(d time.Duration) *ClientBuilder {
	b.cacheTTL = d
	b.cacheEnabled = true
	return b
}

func (b *ClientBuilder) WithNoCache() *ClientBuilder {
	b.cacheEnabled = false
	return b
}

func (b *ClientBuilder) WithCustomHTTPClient(hc *http.Client) *ClientBuilder {
	b.customClient = hc
	return b
}

// WithProxyURL is the infallible proxy setter.
func (b *ClientBuilder) WithProxyURL(u *url.URL) *ClientBuilder {
	b.proxy = u
	return b
}

// WithProxy is the fallible try_proxy setter, parity with the original's
// try_proxy/try_https_proxy split.
func (b *ClientBuilder) WithProxy(raw string) (*ClientBuilder, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return b, fmt.Errorf("%w: invalid proxy url: %v", ErrInvalidParams, err)
	}
	b.proxy = u
	return b, nil
}

func (b *ClientBuilder) WithChartBase(s string) *ClientBuilder       { b.endpoints.Chart = s; return b }
func (b *ClientBuilder) WithQuoteSummaryBase(s string) *ClientBuilder {
	b.endpoints.QuoteSummary = s
	return b
}
func (b *ClientBuilder) WithQuoteV7Base(s string) *ClientBuilder     { b.endpoints.QuoteV7 = s; return b }
func (b *ClientBuilder) WithOptionsV7Base(s string) *ClientBuilder   { b.endpoints.OptionsV7 = s; return b }
func (b *ClientBuilder) WithSearchBase(s string) *ClientBuilder      { b.endpoints.Search = s; return b }
func (b *ClientBuilder) WithNewsBase(s string) *ClientBuilder        { b.endpoints.News = s; return b }
func (b *ClientBuilder) WithTimeseriesBase(s string) *ClientBuilder  { b.endpoints.Timeseries = s; return b }
func (b *ClientBuilder) WithCookieURL(s string) *ClientBuilder       { b.endpoints.Cookie = s; return b }
func (b *ClientBuilder) WithCrumbURL(s string) *ClientBuilder        { b.endpoints.Crumb = s; return b }
func (b *ClientBuilder) WithStreamBase(s string) *ClientBuilder      { b.endpoints.Stream = s; return b }
func (b *ClientBuilder) WithInsiderSearchBase(s string) *ClientBuilder {
	b.endpoints.InsiderSearch = s
	return b
}

// WithTestPreauth seeds the credential store with already-known cookie/crumb
// values, skipping the network round trip entirely. Test-only, per spec
// §6.4's `test_preauth_credentials`.
func (b *ClientBuilder) WithTestPreauth(cookie, crumb string) *ClientBuilder {
	b.preauthCookie = cookie
	b.preauthCrumb = crumb
	return b
}

// WithProfileStrategy sets the client-level profile-resolution strategy read
// by C14/C17 at every profile-load call site, per spec §6.4's
// `test_api_preference` (the original's `api_preference()` client method).
func (b *ClientBuilder) WithProfileStrategy(s ProfileStrategy) *ClientBuilder {
	b.profileStrategy = s
	return b
}

// Build assembles the Client.
func (b *ClientBuilder) Build() (*Client, error) {
	retry := b.retry
	if b.retryEnabled != nil {
		retry.Enabled = *b.retryEnabled
	}

	hc := b.customClient
	if hc == nil {
		hc = newCookieJarClient(b.timeout, b.connectTimeout, proxyTransport(b.proxy))
	}

	c := &Client{
		httpClient:      hc,
		endpoints:       b.endpoints,
		userAgent:       b.userAgent,
		retry:           retry,
		cache:           newResponseCache(b.cacheTTL, b.cacheEnabled),
		creds:           &credentialStore{},
		profileStrategy: b.profileStrategy,
		currencyCache:   make(map[string]string),
	}

	if b.preauthCookie != "" || b.preauthCrumb != "" {
		c.creds.cookie = b.preauthCookie
		c.creds.crumb = b.preauthCrumb
	}

	return c, nil
}

func proxyTransport(proxy *url.URL) http.RoundTripper {
	if proxy == nil {
		return nil
	}
	return &http.Transport{Proxy: http.ProxyURL(proxy)}
}

func dialWithTimeout(connectTimeout time.Duration) func(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: connectTimeout}
	return d.DialContext
}
