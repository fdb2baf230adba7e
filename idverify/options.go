package idverify

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Option func(*Client)

// WithKeyProvider replaces the built-in remote provider. The client wraps p in
// its own exclusive guard, so p does not need to be safe for concurrent use.
func WithKeyProvider(p KeyProvider) Option {
	return func(c *Client) {
		c.provider = p
	}
}

// WithUnsafeIgnoreExpiration disables the exp check. Intended for tests.
func WithUnsafeIgnoreExpiration() Option {
	return func(c *Client) {
		c.checkExpiration = false
	}
}

// WithHTTPClient sets the client used by the default net/http fetcher.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpc = hc
	}
}

func WithFetcher(f Fetcher) Option {
	return func(c *Client) {
		c.fetcher = f
	}
}

func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m MetricsCollector) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithClock sets the time source for expiration checks and key set freshness.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}
