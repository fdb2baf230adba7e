package idverify

import (
	"github.com/keksclan/goIDVerify/internal/cache"
	"github.com/keksclan/goIDVerify/internal/claims"
	"github.com/keksclan/goIDVerify/internal/jwk"
	"github.com/keksclan/goIDVerify/internal/keyprovider"
)

type (
	// RequiredClaims are the registered claims present in every verified token.
	RequiredClaims = claims.RequiredClaims
	// IDPayload is Google's profile payload.
	IDPayload = claims.IDPayload

	Algorithm     = jwk.Algorithm
	SigningKey    = jwk.SigningKey
	SigningKeySet = jwk.SigningKeySet

	// KeyProvider resolves a key id. See keyprovider.Provider for the contract.
	KeyProvider     = keyprovider.Provider
	KeyProviderFunc = keyprovider.ProviderFunc

	// Fetcher downloads key set documents for the built-in remote provider.
	Fetcher = keyprovider.Fetcher
	// Cache stores downloaded key sets.
	Cache = cache.Cache
)

const (
	RS256 = jwk.RS256
	RS384 = jwk.RS384
	RS512 = jwk.RS512
	HS256 = jwk.HS256
	HS384 = jwk.HS384
	HS512 = jwk.HS512
	ES256 = jwk.ES256
	ES384 = jwk.ES384
	ES512 = jwk.ES512
)

// ParseKeySet decodes a JWKS document.
func ParseKeySet(doc []byte) (SigningKeySet, error) { return jwk.ParseSet(doc) }

// NewStaticKeyProvider serves a fixed key set.
func NewStaticKeyProvider(set SigningKeySet) KeyProvider { return keyprovider.NewStatic(set) }
