// Package jwk models the JSON Web Key Set published by the token issuer and
// verifies signatures against its keys.
package jwk

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/golang-jwt/jwt/v5"

	"github.com/keksclan/goIDVerify/internal/codec"
	"github.com/keksclan/goIDVerify/internal/verr"
)

// SigningKey is one entry of a key set. N and E stay base64url encoded until
// a verification needs them.
//
// Concurrency: immutable value, safe to share.
type SigningKey struct {
	Algorithm Algorithm `json:"alg"`
	KeyID     string    `json:"kid"`
	N         string    `json:"n"`
	E         string    `json:"e"`
}

func (k *SigningKey) UnmarshalJSON(b []byte) error {
	var raw struct {
		Algorithm *Algorithm `json:"alg"`
		KeyID     *string    `json:"kid"`
		N         *string    `json:"n"`
		E         *string    `json:"e"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Algorithm == nil || raw.KeyID == nil || raw.N == nil || raw.E == nil {
		return errors.New("key requires alg, kid, n and e")
	}
	*k = SigningKey{Algorithm: *raw.Algorithm, KeyID: *raw.KeyID, N: *raw.N, E: *raw.E}
	return nil
}

// NewRSAKey builds an RS256 signing key from an RSA public key.
func NewRSAKey(kid string, pub *rsa.PublicKey) SigningKey {
	return SigningKey{
		Algorithm: RS256,
		KeyID:     kid,
		N:         codec.Encode(pub.N.Bytes()),
		E:         codec.Encode(big.NewInt(int64(pub.E)).Bytes()),
	}
}

// PublicKey decodes the modulus and exponent into an RSA public key.
func (k SigningKey) PublicKey() (*rsa.PublicKey, error) {
	nb, err := codec.Decode(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eb, err := codec.Decode(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	e := new(big.Int).SetBytes(eb)
	if len(nb) == 0 || e.Sign() == 0 || !e.IsInt64() || e.Int64() > 1<<31-1 {
		return nil, errors.New("invalid rsa public components")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: int(e.Int64())}, nil
}

// Verify checks signature against signed, the exact header and payload
// segments joined by ".". Only RS256 keys can verify; any other algorithm
// yields *verr.UnsupportedAlgorithmError without touching the key material.
func (k SigningKey) Verify(signed, signature []byte) error {
	if k.Algorithm != RS256 {
		return &verr.UnsupportedAlgorithmError{Algorithm: k.Algorithm.String()}
	}
	pub, err := k.PublicKey()
	if err != nil {
		return verr.ErrInvalidToken
	}
	if err := jwt.SigningMethodRS256.Verify(string(signed), signature, pub); err != nil {
		return verr.ErrInvalidToken
	}
	return nil
}

// SigningKeySet is the published set of keys.
type SigningKeySet struct {
	Keys []SigningKey `json:"keys"`
}

// ParseSet decodes a JWKS document. Unknown algorithm tags or keys missing
// alg, kid, n or e fail the whole document.
func ParseSet(b []byte) (SigningKeySet, error) {
	var set SigningKeySet
	if err := json.Unmarshal(b, &set); err != nil {
		return SigningKeySet{}, fmt.Errorf("parse jwks: %w", err)
	}
	if set.Keys == nil {
		return SigningKeySet{}, errors.New("parse jwks: missing keys")
	}
	return set, nil
}

// Lookup returns the first key whose id equals kid.
func (s SigningKeySet) Lookup(kid string) (SigningKey, bool) {
	for _, k := range s.Keys {
		if k.KeyID == kid {
			return k, true
		}
	}
	return SigningKey{}, false
}
