package idverify

import (
	"errors"
	"fmt"

	"github.com/keksclan/goIDVerify/internal/keyprovider"
)

// GoogleIssuers are the issuer values Google puts in ID tokens.
var GoogleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// GoogleCertsURL is where Google publishes its token signing keys.
const GoogleCertsURL = keyprovider.GoogleCertsURL

// FetcherKind selects the HTTP stack used to download key sets.
type FetcherKind string

const (
	FetcherNetHTTP  FetcherKind = "nethttp"
	FetcherFastHTTP FetcherKind = "fasthttp"
)

// CacheBackend selects where downloaded key sets are cached.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

// Config describes a Client.
type Config struct {
	// ClientID is the OAuth client id tokens must be issued for (aud).
	ClientID string
	// Issuers lists accepted iss values. Defaults to GoogleIssuers.
	Issuers []string

	// JWKSURL overrides the key set location. Defaults to GoogleCertsURL.
	JWKSURL string
	// JWKSFile pins a key set loaded from disk; no network access happens.
	JWKSFile string
	Fetcher  FetcherKind
	Cache    CacheConfig

	// UnsafeIgnoreExpiration disables the exp check. Only for tests and replays.
	UnsafeIgnoreExpiration bool
}

type CacheConfig struct {
	// Backend picks where downloaded key sets live. With CacheRedis the set is
	// shared with every client using the same server and KeyPrefix, and it may
	// already be present when the client starts. Anyone who can write that key
	// can plant a signing key, so the Redis server must be trusted as much as
	// the issuer's certs endpoint.
	Backend   CacheBackend
	KeyPrefix string
	Redis     RedisConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c *Config) setDefaults() {
	if len(c.Issuers) == 0 {
		c.Issuers = append([]string(nil), GoogleIssuers...)
	}
	if c.JWKSURL == "" {
		c.JWKSURL = GoogleCertsURL
	}
	if c.Fetcher == "" {
		c.Fetcher = FetcherNetHTTP
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "idverify:"
	}
}

func (c Config) Validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	for _, iss := range c.Issuers {
		if iss == "" {
			return errors.New("issuers must not contain empty values")
		}
	}
	switch c.Fetcher {
	case "", FetcherNetHTTP, FetcherFastHTTP:
	default:
		return fmt.Errorf("unsupported fetcher %q", c.Fetcher)
	}
	switch c.Cache.Backend {
	case "", CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Cache.Backend)
	}
	return nil
}
