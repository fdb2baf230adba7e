// Package keyprovider resolves key ids to published signing keys.
//
// Concurrency: every Provider handed out by this package serializes its
// lookups through a single exclusive guard, so at most one lookup (and so at
// most one key set download) is in flight per provider.
package keyprovider

import (
	"context"
	"errors"

	"github.com/keksclan/goIDVerify/internal/jwk"
)

// GoogleCertsURL publishes Google's OAuth2 signing keys in JWKS form.
const GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

// maxJWKSResponseSize limits the size of JWKS HTTP responses to prevent memory bombs.
const maxJWKSResponseSize = 1 << 20 // 1 MB

var (
	ErrFetch        = errors.New("fetch jwks")
	ErrInvalidJWKS  = errors.New("invalid JWKS")
	ErrResponseSize = errors.New("jwks response too large")
)

// Provider looks up a signing key by id.
//
// found is false when a key set was obtained but holds no key with that id.
// err is non-nil only when no key set could be obtained at all.
type Provider interface {
	GetKey(ctx context.Context, kid string) (key jwk.SigningKey, found bool, err error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, kid string) (jwk.SigningKey, bool, error)

func (f ProviderFunc) GetKey(ctx context.Context, kid string) (jwk.SigningKey, bool, error) {
	return f(ctx, kid)
}

// Logger is the subset of logging the providers emit.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}
