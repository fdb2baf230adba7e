// Package idverify verifies Google-issued OpenID Connect ID tokens.
//
// A Client checks the token's audience, issuer and lifetime, resolves the
// signing key named by the token header through a KeyProvider and verifies
// the RS256 signature over the original header and payload segments.
//
// Every call takes a context. Passing context.Background() blocks until the
// lookup finishes; a context with a deadline or cancellation lets the call
// give up while it waits for the key provider.
package idverify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/keksclan/goIDVerify/internal/cache"
	"github.com/keksclan/goIDVerify/internal/keyprovider"
	"github.com/keksclan/goIDVerify/internal/token"
)

// Token is a verified ID token.
//
// Concurrency: Token is immutable once returned.
type Token[P any] struct {
	claims  RequiredClaims
	payload P
}

func (t *Token[P]) Claims() RequiredClaims { return t.claims }
func (t *Token[P]) Payload() P             { return t.payload }

// Client verifies ID tokens for one OAuth client id.
//
// Concurrency: Client is safe for concurrent use. Key lookups are serialized
// per client through the provider's exclusive guard.
type Client struct {
	clientID        string
	issuers         []string
	checkExpiration bool

	provider KeyProvider
	httpc    *http.Client
	fetcher  Fetcher
	cache    Cache

	logger  Logger
	metrics MetricsCollector
	tracer  trace.Tracer
	now     func() time.Time

	// closers are the resources New created itself, released by Close.
	closers []io.Closer
}

// New creates a Client from cfg and optional Options.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		clientID:        cfg.ClientID,
		issuers:         cfg.Issuers,
		checkExpiration: !cfg.UnsafeIgnoreExpiration,
		logger:          NewLogrusLogger(logrus.StandardLogger()),
		metrics:         nopMetrics{},
		tracer:          otel.Tracer("github.com/keksclan/goIDVerify"),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		p, err := c.defaultProvider(cfg)
		if err != nil {
			return nil, err
		}
		c.provider = p
	}
	c.provider = keyprovider.Guard(c.provider)
	return c, nil
}

// NewClient creates a Client for clientID with Google defaults.
func NewClient(clientID string, opts ...Option) (*Client, error) {
	return New(Config{ClientID: clientID}, opts...)
}

func (c *Client) defaultProvider(cfg Config) (KeyProvider, error) {
	if cfg.JWKSFile != "" {
		p, err := keyprovider.NewStaticFile(cfg.JWKSFile)
		if err != nil {
			return nil, fmt.Errorf("load jwks file: %w", err)
		}
		c.logger.Infof("idverify: using pinned key set from %s", cfg.JWKSFile)
		return p, nil
	}

	fetcher := c.fetcher
	if fetcher == nil {
		switch cfg.Fetcher {
		case FetcherFastHTTP:
			fetcher = keyprovider.NewFastHTTPFetcher(nil)
		default:
			fetcher = keyprovider.NewHTTPFetcher(c.httpc)
		}
	}

	store := c.cache
	if store == nil && cfg.Cache.Backend == CacheRedis {
		rc := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		store = cache.NewRedisCache(rc, cfg.Cache.KeyPrefix)
		c.closers = append(c.closers, rc)
	}

	r, err := keyprovider.NewRemote(
		keyprovider.WithURL(cfg.JWKSURL),
		keyprovider.WithFetcher(fetcher),
		keyprovider.WithCache(store),
		keyprovider.WithClock(c.now),
		keyprovider.WithLogger(c.logger),
		keyprovider.WithTracer(c.tracer),
		keyprovider.WithObserver(func(outcome string) { c.metrics.KeySetLookup(outcome) }),
	)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init key provider: %w", err)
	}
	c.closers = append(c.closers, r)
	return r, nil
}

// Close releases the key set cache and Redis connection New created. A
// provider or cache passed through an Option belongs to the caller and is not
// closed. The client must not be used after Close.
func (c *Client) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// ClientID returns the audience tokens are checked against.
func (c *Client) ClientID() string { return c.clientID }

// VerifyToken verifies tokenString and returns its registered claims.
func (c *Client) VerifyToken(ctx context.Context, tokenString string) (*Token[struct{}], error) {
	return VerifyTokenWithPayload[struct{}](ctx, c, tokenString)
}

// VerifyIDToken verifies tokenString and decodes Google's profile payload.
func (c *Client) VerifyIDToken(ctx context.Context, tokenString string) (*Token[IDPayload], error) {
	return VerifyTokenWithPayload[IDPayload](ctx, c, tokenString)
}

// VerifyTokenWithPayload verifies tokenString and decodes its payload into P.
//
// Claims are validated before any key lookup: a token with the wrong audience
// or issuer, or an expired one, never reaches the key provider.
func VerifyTokenWithPayload[P any](ctx context.Context, c *Client, tokenString string) (*Token[P], error) {
	ctx, span := c.tracer.Start(ctx, "idverify.Verify")
	defer span.End()

	tok, err := verify[P](ctx, c, tokenString)
	if err != nil {
		reason, pub := classify(err)
		c.metrics.ValidationFailed(reason)
		c.logger.Debugf("idverify: token rejected: reason=%s", reason)
		span.SetAttributes(attribute.String("idverify.fail_reason", reason))
		span.SetStatus(codes.Error, pub.Error())
		return nil, pub
	}
	c.metrics.ValidationOK()
	return tok, nil
}

func verify[P any](ctx context.Context, c *Client, tokenString string) (*Token[P], error) {
	u, err := token.Validate[P](tokenString, token.Options{
		Audience:        c.clientID,
		Issuers:         c.issuers,
		CheckExpiration: c.checkExpiration,
		Now:             c.now(),
	})
	if err != nil {
		return nil, err
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("idverify.kid", u.KeyID()))
	key, found, lookupErr := c.provider.GetKey(ctx, u.KeyID())
	if lookupErr != nil {
		c.logger.Warnf("idverify: key lookup for kid %q failed: %v", u.KeyID(), lookupErr)
	}
	claims, payload, err := u.Verify(key, found, lookupErr)
	if err != nil {
		return nil, err
	}
	return &Token[P]{claims: claims, payload: payload}, nil
}

// classify splits a verification error into its metrics reason and the
// unwrapped value returned to callers.
func classify(err error) (string, error) {
	var te *token.Error
	if errors.As(err, &te) {
		return te.Reason, te.Err
	}
	return FailReasonParse, ErrInvalidToken
}
