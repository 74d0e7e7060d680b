package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
)

// Send implements the HTTP Core operation (C1): one outbound GET with the
// client's User-Agent always set, optionally overridden retry policy
// (C2), composed with the retry loop in sendWithRetry.
func (c *Client) Send(ctx context.Context, req *http.Request, retryOverride *RetryConfig) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	cfg := c.retry
	if retryOverride != nil {
		cfg = *retryOverride
	}
	return c.sendWithRetry(ctx, req, cfg)
}

// sendWithRetry is the C2 retry engine: fixed/exponential backoff, retry on
// a configurable status set and on timeout/connect transport errors.
func (c *Client) sendWithRetry(ctx context.Context, req *http.Request, cfg RetryConfig) (*http.Response, error) {
	n := 0
	for {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			if !cfg.Enabled || n >= cfg.MaxRetries || !retryableTransportError(err, cfg) {
				return nil, err
			}
			if sleepErr := sleepBackoff(ctx, cfg, n); sleepErr != nil {
				return nil, sleepErr
			}
			n++
			continue
		}

		if cfg.Enabled && cfg.RetryOnStatus[resp.StatusCode] && n < cfg.MaxRetries {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
			resp.Body.Close()
			if sleepErr := sleepBackoff(ctx, cfg, n); sleepErr != nil {
				return nil, sleepErr
			}
			n++
			continue
		}

		return resp, nil
	}
}

func retryableTransportError(err error, cfg RetryConfig) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return cfg.RetryOnTimeout
	}
	// A dial/connection-refused failure surfaces as a *net.OpError wrapping
	// a syscall error; net.Error.Timeout() is false for those, so treat any
	// non-timeout net.Error (and any *net.OpError) as a connect error.
	var opErr *net.OpError
	if netErr != nil || errors.As(err, &opErr) {
		return cfg.RetryOnConnect
	}
	return false
}

// FetchText implements the unauthenticated request pipeline (spec §4.5.1):
// cache-get -> send-with-retry -> classify -> cache-put.
func (c *Client) FetchText(ctx context.Context, url string, mode CacheMode, retryOverride *RetryConfig) (string, error) {
	if mode == CacheUse {
		if body, ok := c.cache.get(url); ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Send(ctx, req, retryOverride)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", &authRetryable{status: resp.StatusCode, url: url}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", classifyStatus(resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	text := string(body)
	if mode != CacheBypass {
		c.cache.put(url, text)
	}
	return text, nil
}

// authRetryable signals the caller (quote v7 / options adapters) that a 401
// or 403 was seen and an authenticated retry should be attempted, per spec
// §4.5.3's "signal caller to retry with auth".
type authRetryable struct {
	status int
	url    string
}

func (e *authRetryable) Error() string {
	return fmt.Sprintf("yahoo: status %d requires auth retry: %s", e.status, e.url)
}

// IsAuthRetryable reports whether err indicates the unauthenticated pipeline
// should be retried with a crumb.
func IsAuthRetryable(err error) bool {
	_, ok := err.(*authRetryable)
	return ok
}

var invalidCrumbRE = regexp.MustCompile(`(?i)invalid crumb`)

// FetchAuthenticatedJSON implements the authenticated request pipeline (spec
// §4.5.2): ensure_credentials, append crumb, fetch; on an "Invalid Crumb"
// Yahoo-body error, clear the crumb and retry exactly once.
func (c *Client) FetchAuthenticatedJSON(ctx context.Context, buildURL func(crumb string) string, mode CacheMode, retryOverride *RetryConfig) (string, error) {
	if err := c.EnsureCredentials(ctx); err != nil {
		return "", err
	}
	crumb, _ := c.Crumb()

	body, err := c.FetchText(ctx, buildURL(crumb), mode, retryOverride)
	if err != nil {
		return "", err
	}

	if looksLikeInvalidCrumb(body) {
		c.ClearCrumb()
		if err := c.EnsureCredentials(ctx); err != nil {
			return "", err
		}
		crumb2, _ := c.Crumb()
		return c.FetchText(ctx, buildURL(crumb2), CacheRefresh, retryOverride)
	}

	return body, nil
}

// looksLikeInvalidCrumb does a cheap textual check for the Yahoo-level
// {quoteSummary:{error:{description}}} shape without requiring callers to
// hand this package their envelope type; the /invalid crumb/i description
// match is the part the spec pins exactly (§4.5.2, §6.2).
func looksLikeInvalidCrumb(body string) bool {
	if !strings.Contains(body, `"error"`) {
		return false
	}
	return invalidCrumbRE.MatchString(body)
}
