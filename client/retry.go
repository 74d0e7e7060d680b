package client

import (
	"context"
	"math/rand"
	"time"
)

// BackoffKind selects between the two backoff shapes spec §4.2 allows.
type BackoffKind int

const (
	BackoffFixed BackoffKind = iota
	BackoffExponential
)

// Backoff is a tagged Fixed(d) | Exponential{base,factor,max,jitter} value.
type Backoff struct {
	Kind   BackoffKind
	Fixed  time.Duration
	Base   time.Duration
	Factor float64
	Max    time.Duration
	Jitter bool
}

// FixedBackoff builds a constant-delay backoff.
func FixedBackoff(d time.Duration) Backoff {
	return Backoff{Kind: BackoffFixed, Fixed: d}
}

// ExponentialBackoff builds an exponential-with-jitter backoff.
func ExponentialBackoff(base time.Duration, factor float64, max time.Duration, jitter bool) Backoff {
	return Backoff{Kind: BackoffExponential, Base: base, Factor: factor, Max: max, Jitter: jitter}
}

// delay computes backoff(n) for attempt n (0-indexed), per spec §4.2:
// d = min(max, base * factor^n); if jitter, add +-50% pseudorandom perturbation.
func (b Backoff) delay(n int) time.Duration {
	switch b.Kind {
	case BackoffFixed:
		return b.Fixed
	case BackoffExponential:
		d := float64(b.Base)
		for i := 0; i < n; i++ {
			d *= b.Factor
		}
		if max := float64(b.Max); d > max {
			d = max
		}
		if b.Jitter {
			// +-50% perturbation; not cryptographic, spec §4.2 permits this.
			perturb := 1.0 + (rand.Float64()*2-1)*0.5
			d *= perturb
			if d < 0 {
				d = 0
			}
		}
		return time.Duration(d)
	default:
		return 0
	}
}

// RetryConfig is the per-client (or per-call override) retry policy.
type RetryConfig struct {
	Enabled        bool
	MaxRetries     int
	Backoff        Backoff
	RetryOnStatus  map[int]bool
	RetryOnTimeout bool
	RetryOnConnect bool
}

// DefaultRetryConfig matches spec §4.2's pinned defaults exactly.
func DefaultRetryConfig() RetryConfig {
	statuses := map[int]bool{408: true, 429: true, 500: true, 502: true, 503: true, 504: true}
	return RetryConfig{
		Enabled:        true,
		MaxRetries:     4,
		Backoff:        ExponentialBackoff(200*time.Millisecond, 2.0, 3*time.Second, true),
		RetryOnStatus:  statuses,
		RetryOnTimeout: true,
		RetryOnConnect: true,
	}
}

// sleepBackoff sleeps for backoff(n), honoring ctx cancellation (spec §5:
// "the retry engine honors cancellation between attempts — no sleep is ever
// uninterruptible").
func sleepBackoff(ctx context.Context, cfg RetryConfig, n int) error {
	d := cfg.Backoff.delay(n)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
