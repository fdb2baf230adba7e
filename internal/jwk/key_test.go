package jwk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keksclan/goIDVerify/internal/codec"
	"github.com/keksclan/goIDVerify/internal/fixtures"
	"github.com/keksclan/goIDVerify/internal/verr"
)

func splitSigned(t *testing.T, token string) ([]byte, []byte) {
	t.Helper()
	parts := strings.Split(token, ".")
	require.GreaterOrEqual(t, len(parts), 3)
	sig, err := codec.Decode(parts[2])
	require.NoError(t, err)
	return []byte(parts[0] + "." + parts[1]), sig
}

func TestParseSetGoogle(t *testing.T) {
	set, err := ParseSet([]byte(fixtures.GoogleJWKS))
	require.NoError(t, err)
	require.Len(t, set.Keys, 2)

	for _, kid := range []string{"3f3ef9c7803cd0b8d75247ee0d31fdd5c2cf3812", fixtures.GoogleKeyID} {
		k, ok := set.Lookup(kid)
		require.True(t, ok, kid)
		assert.Equal(t, RS256, k.Algorithm)
		assert.Equal(t, "AQAB", k.E)
		_, err := k.PublicKey()
		assert.NoError(t, err)
	}

	_, ok := set.Lookup("missing")
	assert.False(t, ok)
}

func TestParseSetRejects(t *testing.T) {
	tests := map[string]string{
		"unknown alg": `{"keys":[{"alg":"PS256","kid":"a","n":"AQAB","e":"AQAB"}]}`,
		"missing n":   `{"keys":[{"alg":"RS256","kid":"a","e":"AQAB"}]}`,
		"missing alg": `{"keys":[{"kid":"a","n":"AQAB","e":"AQAB"}]}`,
		"no keys":     `{}`,
		"not json":    `<html>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSet([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLookupFirstMatch(t *testing.T) {
	set := SigningKeySet{Keys: []SigningKey{
		{Algorithm: RS256, KeyID: "dup", N: "first"},
		{Algorithm: RS256, KeyID: "dup", N: "second"},
	}}
	k, ok := set.Lookup("dup")
	require.True(t, ok)
	assert.Equal(t, "first", k.N)
}

func TestVerifyGoogleSignature(t *testing.T) {
	set, err := ParseSet([]byte(fixtures.GoogleJWKS))
	require.NoError(t, err)
	signed, sig := splitSigned(t, fixtures.GoogleToken)

	key, ok := set.Lookup(fixtures.GoogleKeyID)
	require.True(t, ok)
	assert.NoError(t, key.Verify(signed, sig))

	other, ok := set.Lookup("3f3ef9c7803cd0b8d75247ee0d31fdd5c2cf3812")
	require.True(t, ok)
	assert.ErrorIs(t, other.Verify(signed, sig), verr.ErrInvalidToken)
}

func TestVerifyMinted(t *testing.T) {
	iss := fixtures.NewIssuer(t, "kid-1")
	key := NewRSAKey("kid-1", &iss.Key.PublicKey)
	token := iss.Sign(t, fixtures.Claims("client", time.Now(), time.Hour))
	signed, sig := splitSigned(t, token)

	require.NoError(t, key.Verify(signed, sig))

	t.Run("tampered payload", func(t *testing.T) {
		bad := append([]byte{}, signed...)
		bad[len(bad)-1] ^= 0x01
		assert.ErrorIs(t, key.Verify(bad, sig), verr.ErrInvalidToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		bad := append([]byte{}, sig...)
		bad[0] ^= 0xff
		assert.ErrorIs(t, key.Verify(signed, bad), verr.ErrInvalidToken)
	})

	t.Run("undecodable modulus", func(t *testing.T) {
		broken := key
		broken.N = "!!"
		assert.ErrorIs(t, broken.Verify(signed, sig), verr.ErrInvalidToken)
	})
}

func TestVerifyUnsupportedAlgorithm(t *testing.T) {
	for _, alg := range []Algorithm{RS384, RS512, HS256, HS384, HS512, ES256, ES384, ES512} {
		t.Run(alg.String(), func(t *testing.T) {
			key := SigningKey{Algorithm: alg, KeyID: "k", N: "!!", E: "!!"}
			err := key.Verify([]byte("a.b"), []byte("sig"))
			var unsupported *verr.UnsupportedAlgorithmError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, alg.String(), unsupported.Algorithm)
		})
	}
}

func TestAlgorithmJSON(t *testing.T) {
	var a Algorithm
	require.NoError(t, json.Unmarshal([]byte(`"ES384"`), &a))
	assert.Equal(t, ES384, a)
	assert.Error(t, json.Unmarshal([]byte(`"none"`), &a))
	assert.Error(t, json.Unmarshal([]byte(`42`), &a))
}

func TestSetJSONRoundTrip(t *testing.T) {
	in, err := ParseSet([]byte(fixtures.GoogleJWKS))
	require.NoError(t, err)
	b, err := json.Marshal(in)
	require.NoError(t, err)
	out, err := ParseSet(b)
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	iss := fixtures.NewIssuer(t, "file-kid")
	path := filepath.Join(t.TempDir(), "jwks.json")
	require.NoError(t, os.WriteFile(path, iss.JWKS(t), 0o600))

	set, err := LoadFile(path)
	require.NoError(t, err)
	want := SigningKeySet{Keys: []SigningKey{NewRSAKey("file-kid", &iss.Key.PublicKey)}}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}

	token := iss.Sign(t, fixtures.Claims("client", time.Now(), time.Hour))
	signed, sig := splitSigned(t, token)
	k, ok := set.Lookup("file-kid")
	require.True(t, ok)
	assert.NoError(t, k.Verify(signed, sig))
}

func TestLoadFileGoogle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certs.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtures.GoogleJWKS), 0o600))

	fromFile, err := LoadFile(path)
	require.NoError(t, err)
	parsed, err := ParseSet([]byte(fixtures.GoogleJWKS))
	require.NoError(t, err)
	if diff := cmp.Diff(parsed, fromFile); diff != "" {
		t.Fatalf("set mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestParseSetAcceptsKeysWithoutKty(t *testing.T) {
	doc := `{"keys":[{"alg":"RS256","kid":"k1","n":"sXch","e":"AQAB"}]}`

	set, err := ParseSet([]byte(doc))
	require.NoError(t, err)
	_, found := set.Lookup("k1")
	assert.True(t, found)

	path := filepath.Join(t.TempDir(), "no-kty.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
