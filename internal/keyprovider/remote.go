package keyprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/keksclan/goIDVerify/internal/cache"
	"github.com/keksclan/goIDVerify/internal/jwk"
)

// Lookup outcomes passed to the observer installed with WithObserver.
const (
	OutcomeCacheHit = "hit"
	OutcomeFetched  = "fetched"
	OutcomeUncached = "uncached"
	OutcomeError    = "error"
)

// Remote downloads the issuer's key set and caches it for as long as the
// response's Cache-Control max-age allows.
//
// A fresh cached set answers every lookup, including misses; a stale or
// absent one triggers exactly one download. A response without max-age is
// used for the current lookup only. There is no retry and no fallback to an
// expired set.
//
// Concurrency: safe for concurrent use. Lookups run one at a time and the
// download happens while the guard is held, so concurrent callers that find
// the cache stale wait for the first download instead of issuing their own.
type Remote struct {
	url      string
	fetcher  Fetcher
	cache    cache.Cache
	now      func() time.Time
	logger   Logger
	tracer   trace.Tracer
	observer func(outcome string)
	mu       lock

	// owned is the in-memory cache NewRemote created when none was given.
	owned *cache.RistrettoCache
}

// RemoteOption configures a Remote provider.
type RemoteOption func(*Remote)

func WithURL(url string) RemoteOption {
	return func(r *Remote) {
		if url != "" {
			r.url = url
		}
	}
}

func WithFetcher(f Fetcher) RemoteOption {
	return func(r *Remote) {
		if f != nil {
			r.fetcher = f
		}
	}
}

// WithCache stores fetched key sets in c instead of a private in-memory cache.
func WithCache(c cache.Cache) RemoteOption {
	return func(r *Remote) {
		if c != nil {
			r.cache = c
		}
	}
}

func WithClock(now func() time.Time) RemoteOption {
	return func(r *Remote) {
		if now != nil {
			r.now = now
		}
	}
}

func WithLogger(l Logger) RemoteOption {
	return func(r *Remote) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) RemoteOption {
	return func(r *Remote) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithObserver receives the outcome of every lookup.
func WithObserver(fn func(outcome string)) RemoteOption {
	return func(r *Remote) { r.observer = fn }
}

// NewRemote builds a provider for GoogleCertsURL unless WithURL says otherwise.
func NewRemote(opts ...RemoteOption) (*Remote, error) {
	r := &Remote{
		url:     GoogleCertsURL,
		now:     time.Now,
		logger:  nopLogger{},
		tracer:  otel.Tracer("github.com/keksclan/goIDVerify/internal/keyprovider"),
		mu:      newLock(),
		fetcher: NewHTTPFetcher(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		rc, err := cache.NewRistrettoCache(1<<10, 1<<22, 64)
		if err != nil {
			return nil, err
		}
		r.cache = rc
		r.owned = rc
	}
	return r, nil
}

// Close releases the in-memory cache NewRemote created. A cache passed with
// WithCache belongs to the caller and is left open. Lookups after Close still
// work but fetch every time.
func (r *Remote) Close() error {
	if err := r.mu.acquire(context.Background()); err != nil {
		return err
	}
	defer r.mu.release()
	if r.owned != nil {
		r.owned.Close()
		r.owned = nil
		r.cache = closedCache{}
	}
	return nil
}

// closedCache stands in for a cache released by Close.
type closedCache struct{}

func (closedCache) Get(context.Context, string) ([]byte, bool)              { return nil, false }
func (closedCache) Set(context.Context, string, []byte, time.Duration) bool { return false }
func (closedCache) Del(context.Context, string)                             {}

func (*Remote) exclusive() {}

// URL returns the key set location.
func (r *Remote) URL() string { return r.url }

// entry is the cached form of a downloaded key set.
type entry struct {
	Set       jwk.SigningKeySet `json:"set"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func (r *Remote) cacheKey() string { return "jwks:" + r.url }

func (r *Remote) GetKey(ctx context.Context, kid string) (jwk.SigningKey, bool, error) {
	if err := r.mu.acquire(ctx); err != nil {
		r.observe(OutcomeError)
		return jwk.SigningKey{}, false, err
	}
	defer r.mu.release()

	if e, ok := r.cached(ctx); ok && r.now().Before(e.ExpiresAt) {
		r.observe(OutcomeCacheHit)
		k, found := e.Set.Lookup(kid)
		return k, found, nil
	}

	set, ttl, cacheable, err := r.download(ctx)
	if err != nil {
		r.observe(OutcomeError)
		r.logger.Warnf("keyprovider: fetch %s failed: %v", r.url, err)
		return jwk.SigningKey{}, false, err
	}
	if cacheable {
		r.store(ctx, entry{Set: set, ExpiresAt: r.now().Add(ttl)}, ttl)
		r.observe(OutcomeFetched)
	} else {
		r.logger.Debugf("keyprovider: %s sent no max-age, key set not cached", r.url)
		r.observe(OutcomeUncached)
	}
	k, found := set.Lookup(kid)
	return k, found, nil
}

func (r *Remote) cached(ctx context.Context) (entry, bool) {
	b, ok := r.cache.Get(ctx, r.cacheKey())
	if !ok {
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(b, &e); err != nil {
		r.logger.Debugf("keyprovider: discarding unreadable cache entry for %s: %v", r.url, err)
		return entry{}, false
	}
	return e, true
}

func (r *Remote) store(ctx context.Context, e entry, ttl time.Duration) {
	b, err := json.Marshal(e)
	if err != nil {
		r.logger.Warnf("keyprovider: encode cache entry: %v", err)
		return
	}
	if !r.cache.Set(ctx, r.cacheKey(), b, ttl) {
		r.logger.Debugf("keyprovider: cache rejected key set for %s", r.url)
	}
}

func (r *Remote) download(ctx context.Context) (jwk.SigningKeySet, time.Duration, bool, error) {
	ctx, span := r.tracer.Start(ctx, "keyprovider.fetch", trace.WithAttributes(attribute.String("jwks.url", r.url)))
	defer span.End()

	header, body, err := r.fetcher.Fetch(ctx, r.url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return jwk.SigningKeySet{}, 0, false, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	set, err := jwk.ParseSet(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return jwk.SigningKeySet{}, 0, false, fmt.Errorf("%w: %v", ErrInvalidJWKS, err)
	}
	ttl, ok := maxAge(header)
	span.SetAttributes(attribute.Int("jwks.keys", len(set.Keys)), attribute.Bool("jwks.cacheable", ok))
	return set, ttl, ok, nil
}

func (r *Remote) observe(outcome string) {
	if r.observer != nil {
		r.observer(outcome)
	}
}
