package jwk

import (
	"fmt"

	jwxjwk "github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/keksclan/goIDVerify/internal/codec"
)

// FromJWX converts a parsed jwx key set into a SigningKeySet.
// Private keys are reduced to their public halves first.
func FromJWX(set jwxjwk.Set) (SigningKeySet, error) {
	pub, err := jwxjwk.PublicSetOf(set)
	if err != nil {
		return SigningKeySet{}, fmt.Errorf("public set: %w", err)
	}
	out := SigningKeySet{Keys: make([]SigningKey, 0, pub.Len())}
	for i := 0; i < pub.Len(); i++ {
		key, ok := pub.Key(i)
		if !ok {
			continue
		}
		alg, err := ParseAlgorithm(key.Algorithm().String())
		if err != nil {
			return SigningKeySet{}, fmt.Errorf("key %q: %w", key.KeyID(), err)
		}
		sk := SigningKey{Algorithm: alg, KeyID: key.KeyID()}
		if rk, ok := key.(jwxjwk.RSAPublicKey); ok {
			sk.N = codec.Encode(rk.N())
			sk.E = codec.Encode(rk.E())
		}
		out.Keys = append(out.Keys, sk)
	}
	return out, nil
}

// LoadFile reads a JWKS document from disk using jwx. It is stricter than
// ParseSet: jwx requires "kty" on every key, while ParseSet accepts keys that
// carry only alg, kid, n and e.
func LoadFile(path string) (SigningKeySet, error) {
	set, err := jwxjwk.ReadFile(path)
	if err != nil {
		return SigningKeySet{}, fmt.Errorf("read jwks file: %w", err)
	}
	return FromJWX(set)
}
