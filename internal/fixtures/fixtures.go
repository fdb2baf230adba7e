// Package fixtures provides recorded Google tokens and freshly minted RS256
// tokens for tests across the module.
package fixtures

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// GoogleToken is a real ID token issued by accounts.google.com.
// It expired at 1526492533.
const GoogleToken = "eyJhbGciOiJSUzI1NiIsImtpZCI6ImE3NDhlOWY3NjcxNTlmNjY3YTAyMjMzMThkZTBiMjMyOWU1NDQzNjIifQ.eyJhenAiOiIzNzc3MjExNzQwOC1xanFvOWhjYTUxM3BkY3VudW10N2drMDhpaTZ0ZThpcy5hcHBzLmdvb2dsZXVzZXJjb250ZW50LmNvbSIsImF1ZCI6IjM3NzcyMTE3NDA4LXFqcW85aGNhNTEzcGRjdW51bXQ3Z2swOGlpNnRlOGlzLmFwcHMuZ29vZ2xldXNlcmNvbnRlbnQuY29tIiwic3ViIjoiMTA3MDY3MzYxNTAzOTU0NDc0NDg4IiwiZW1haWwiOiJmdWNoc25qQGdtYWlsLmNvbSIsImVtYWlsX3ZlcmlmaWVkIjp0cnVlLCJhdF9oYXNoIjoiaTBOWk5kYWp3UklJbDJvUk9zUUptUSIsImV4cCI6MTUyNjQ5MjUzMywiaXNzIjoiYWNjb3VudHMuZ29vZ2xlLmNvbSIsImp0aSI6IjNmMjc1YjRiY2JmZDU0Y2IxNjZmMzcxNWQ1NTBkMWNmMmUxYThiZGEiLCJpYXQiOjE1MjY0ODg5MzMsIm5hbWUiOiJOYXRoYW4gRm94IiwicGljdHVyZSI6Imh0dHBzOi8vbGg1Lmdvb2dsZXVzZXJjb250ZW50LmNvbS8tbEJSLWE3Z2gwdFkvQUFBQUFBQUFBQUkvQUFBQUFBQUFFUk0vNDFHUk43cDNNVzQvczk2LWMvcGhvdG8uanBnIiwiZ2l2ZW5fbmFtZSI6Ik5hdGhhbiIsImZhbWlseV9uYW1lIjoiRm94IiwibG9jYWxlIjoiZW4ifQ.pOoIMLZgZIFP-fgQirCRRK31ap_CO7WZDeHge-U5GoAvF0VdkoSDSL-1-8d93qKb8IWzi2iS2MgaLekcX8eELM5x39Th1sBwjQGjYr5AXmqE53WDQiqvKzrz-BZ3ay0uSAMllxWfFi62BkSP3m1HJNWyUWrUf6GyI-Vy024dtrX9Qq_BOznJWbQVhHf5aA7x5AAoLHZ_PmzxbUlDQ7Go6FD7sgkoksZI4Cp77HZJMXXGVOrvvXJkpctTcuBZ2P-2filLmb29JIm0e4McOjeHQTV7XNGdzTZoyeSZcU5xTVFQK89e-SIPHKyaL7TAr_faBbTGzVryYfa2VFyKi7Z9gA"

// GoogleJWKS is the certificate set that was live when GoogleToken was issued.
const GoogleJWKS = `{
 "keys": [
  {
   "kty": "RSA",
   "alg": "RS256",
   "use": "sig",
   "kid": "3f3ef9c7803cd0b8d75247ee0d31fdd5c2cf3812",
   "n": "xM3ZHCgrJLe8y0rBZUWHOS1pCpJ2PjM_gw0WI9D0rljoZ7zWQpEC5UwpWaJqqDKxokt-kKP9GYXILqEsZrQ86qXvRZDPrP39RUjMl3Yl0hE4PlTx3aXuSE8SYqy506yduKjHw3seQHBiqSkVdLXSXqsEKUUrtFEgUxwL5L0yU4N3uJcAWK-oka8RxQSFJEilX5UOH-Qmz4UEeIr7Ma8cdsjibUc6xC9SRJtblmAdDDA_-1aMAJuYH8tGYnpTftwKbaaD0btq0LIzrsFnLu2--jaBul4u0k0jukolnUP0XSqE6NEc0iHTCdbKHZN6LrKVZoUqncTAS7Qa6TbgN1-lHw",
   "e": "AQAB"
  },
  {
   "kty": "RSA",
   "alg": "RS256",
   "use": "sig",
   "kid": "a748e9f767159f667a0223318de0b2329e544362",
   "n": "tuhr2NvyeXM215R3uvFHL040vM_jQvynwALBRCO0GPy4TxicZmmIEr3nxRsv7c2KNTQUltaiImSocdUwCczQYtCokb9TIx225hqoD-3Mr6dmqkicMcdjqVgjShRzgcHX7c1ipi9r7YvePdOyQutr-SrT9qHFbC5B5CGrY5J3VsEq6wNVeFwto9utMbn7YmENMJp5ws3O3p7YkSrRAxdhzVefciUWD3E6PZrDlcNBUVjKX1lTWfpcfKAUVqUT0Kf2_A1QCqMr1Sjsj8PGeAMtslsK1N59QhwCAarNaEW1H02iFqSalJpgSlw-wN6XMyc1wnIBpstJrjnFwvN0jTe34w",
   "e": "AQAB"
  }
 ]
}`

// GoogleAudience is the client id GoogleToken was issued for.
const GoogleAudience = "37772117408-qjqo9hca513pdcunumt7gk08ii6te8is.apps.googleusercontent.com"

// GoogleKeyID is the kid in GoogleToken's header.
const GoogleKeyID = "a748e9f767159f667a0223318de0b2329e544362"

// GoogleIssuedAt and GoogleExpiresAt are the iat and exp of GoogleToken.
const (
	GoogleIssuedAt  = 1526488933
	GoogleExpiresAt = 1526492533
)

// Issuer mints RS256 tokens with a throwaway key pair.
type Issuer struct {
	Key   *rsa.PrivateKey
	KeyID string
}

// NewIssuer generates a 2048-bit key pair identified by kid.
func NewIssuer(tb testing.TB, kid string) *Issuer {
	tb.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		tb.Fatalf("generate rsa key: %v", err)
	}
	return &Issuer{Key: key, KeyID: kid}
}

// JWKS renders the issuer's public key as a JWKS document.
func (i *Issuer) JWKS(tb testing.TB) []byte {
	tb.Helper()
	key, err := jwk.FromRaw(&i.Key.PublicKey)
	if err != nil {
		tb.Fatalf("jwk from raw: %v", err)
	}
	if err := key.Set(jwk.KeyIDKey, i.KeyID); err != nil {
		tb.Fatalf("set kid: %v", err)
	}
	if err := key.Set(jwk.AlgorithmKey, jwa.RS256); err != nil {
		tb.Fatalf("set alg: %v", err)
	}
	if err := key.Set(jwk.KeyUsageKey, "sig"); err != nil {
		tb.Fatalf("set use: %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		tb.Fatalf("add key: %v", err)
	}
	b, err := json.Marshal(set)
	if err != nil {
		tb.Fatalf("marshal jwks: %v", err)
	}
	return b
}

// Sign serializes claims into a compact RS256 token carrying the issuer's kid.
func (i *Issuer) Sign(tb testing.TB, claims jwt.MapClaims) string {
	tb.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = i.KeyID
	s, err := tok.SignedString(i.Key)
	if err != nil {
		tb.Fatalf("sign token: %v", err)
	}
	return s
}

// Claims returns a Google shaped claim set for aud, valid from now for ttl.
func Claims(aud string, now time.Time, ttl time.Duration) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"sub":            "110169484474386276334",
		"aud":            aud,
		"azp":            aud,
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
		"email":          "jane.doe@example.com",
		"email_verified": true,
		"name":           "Jane Doe",
		"picture":        "https://lh3.googleusercontent.com/a/default-user",
		"given_name":     "Jane",
		"family_name":    "Doe",
		"locale":         "en",
		"hd":             "example.com",
	}
}
