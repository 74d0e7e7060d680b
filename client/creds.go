package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// credentialStore holds {cookie, crumb} guarded by a read-write lock plus a
// single-flight mutex around the refresh sequence (spec §4.4/§5). Invariant:
// if crumb is set, cookie was successfully acquired in the same or a prior
// session.
type credentialStore struct {
	mu     sync.RWMutex
	cookie string
	crumb  string

	refreshMu sync.Mutex
}

func (s *credentialStore) snapshotCrumb() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.crumb, s.crumb != ""
}

func (s *credentialStore) clearCrumb() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crumb = ""
}

// EnsureCredentials implements spec §4.4's ensure_credentials() operation:
// fast path under a read lock, then a single-flight mutex so concurrent
// callers trigger at most one cookie GET and one crumb GET.
func (c *Client) EnsureCredentials(ctx context.Context) error {
	if crumb, ok := c.creds.snapshotCrumb(); ok {
		_ = crumb
		return nil
	}

	c.creds.refreshMu.Lock()
	defer c.creds.refreshMu.Unlock()

	// Re-check under the read lock: another caller may have won the race
	// for the single-flight mutex and already populated the crumb.
	if crumb, ok := c.creds.snapshotCrumb(); ok {
		_ = crumb
		return nil
	}

	cookie, err := c.fetchCookie(ctx)
	if err != nil {
		return fmt.Errorf("%w: cookie: %v", ErrAuth, err)
	}
	c.creds.mu.Lock()
	c.creds.cookie = cookie
	c.creds.mu.Unlock()

	crumb, err := c.fetchCrumb(ctx)
	if err != nil {
		return fmt.Errorf("%w: crumb: %v", ErrAuth, err)
	}
	c.creds.mu.Lock()
	c.creds.crumb = crumb
	c.creds.mu.Unlock()

	return nil
}

// ClearCrumb implements spec §4.4's clear_crumb() operation: the cookie is
// left intact, only the crumb is cleared so the next call re-derives it.
func (c *Client) ClearCrumb() {
	c.creds.clearCrumb()
}

// Crumb returns the currently cached crumb, if any.
func (c *Client) Crumb() (string, bool) {
	return c.creds.snapshotCrumb()
}

func (c *Client) fetchCookie(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Cookie, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	setCookie := resp.Header.Get("Set-Cookie")
	if setCookie == "" {
		// The cookie jar may have still captured it even if the header
		// isn't directly visible on this response (redirects); check the jar.
		if c.httpClient.Jar != nil {
			if u, uerr := req.URL.Parse(c.endpoints.Cookie); uerr == nil {
				if cookies := c.httpClient.Jar.Cookies(u); len(cookies) > 0 {
					return cookies[0].Raw, nil
				}
			}
		}
		// Per spec §9 Design Notes: a missing Set-Cookie is a hard error,
		// not a retry trigger.
		return "", fmt.Errorf("no Set-Cookie header in response")
	}
	return setCookie, nil
}

func (c *Client) fetchCrumb(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Crumb, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.Contains(crumb, "{") || strings.Contains(crumb, "<") {
		return "", fmt.Errorf("invalid crumb response: %q", crumb)
	}
	return crumb, nil
}
