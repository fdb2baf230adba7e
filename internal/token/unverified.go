// Package token parses compact ID tokens and checks their registered claims
// before any key material is consulted.
package token

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/keksclan/goIDVerify/internal/claims"
	"github.com/keksclan/goIDVerify/internal/codec"
	"github.com/keksclan/goIDVerify/internal/jwk"
	"github.com/keksclan/goIDVerify/internal/verr"
)

// Failure reasons reported alongside validation errors.
const (
	FailReasonParse     = "parse"
	FailReasonAudience  = "aud"
	FailReasonIssuer    = "iss"
	FailReasonExpired   = "exp"
	FailReasonIat       = "iat"
	FailReasonPayload   = "payload"
	FailReasonKey       = "key"
	FailReasonKid       = "kid"
	FailReasonAlg       = "alg"
	FailReasonSignature = "signature"
)

// Options carries the expectations a token is validated against.
type Options struct {
	Audience        string
	Issuers         []string
	CheckExpiration bool
	Now             time.Time
}

// Unverified is a token whose claims passed validation but whose signature
// has not been checked yet.
type Unverified[P any] struct {
	Header    claims.Header
	Signed    []byte
	Signature []byte
	Claims    claims.RequiredClaims
	Payload   P
}

// Error pairs a verification error with the reason label used for metrics.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

func fail(reason string, err error) *Error { return &Error{Reason: reason, Err: err} }

// Validate splits token, decodes its segments and checks aud, iss, exp and iat
// in that order. Segments after the third are ignored.
func Validate[P any](token string, opts Options) (*Unverified[P], error) {
	parts := strings.Split(token, ".")
	if len(parts) < 3 {
		return nil, fail(FailReasonParse, verr.ErrInvalidToken)
	}
	headerSeg, payloadSeg, sigSeg := parts[0], parts[1], parts[2]

	headerJSON, err := codec.Decode(headerSeg)
	if err != nil {
		return nil, fail(FailReasonParse, err)
	}
	var header claims.Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fail(FailReasonParse, verr.ErrInvalidToken)
	}
	signature, err := codec.Decode(sigSeg)
	if err != nil {
		return nil, fail(FailReasonParse, err)
	}
	payloadJSON, err := codec.Decode(payloadSeg)
	if err != nil {
		return nil, fail(FailReasonParse, err)
	}

	var required claims.RequiredClaims
	if err := json.Unmarshal(payloadJSON, &required); err != nil {
		return nil, fail(FailReasonParse, verr.ErrInvalidToken)
	}
	if required.Audience != opts.Audience {
		return nil, fail(FailReasonAudience, verr.ErrInvalidToken)
	}
	if !slices.Contains(opts.Issuers, required.Issuer) {
		return nil, fail(FailReasonIssuer, verr.ErrInvalidToken)
	}
	if opts.CheckExpiration {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		if unix := now.Unix(); unix > 0 && required.ExpiresAt < uint64(unix) {
			return nil, fail(FailReasonExpired, verr.ErrExpired)
		}
	}
	if required.IssuedAt > required.ExpiresAt {
		return nil, fail(FailReasonIat, verr.ErrInvalidToken)
	}

	var payload P
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, fail(FailReasonPayload, verr.ErrInvalidToken)
	}

	return &Unverified[P]{
		Header:    header,
		Signed:    []byte(headerSeg + "." + payloadSeg),
		Signature: signature,
		Claims:    required,
		Payload:   payload,
	}, nil
}

// KeyID returns the kid named in the token header.
func (u *Unverified[P]) KeyID() string { return u.Header.KeyID }

// Verify classifies the outcome of a key lookup and checks the signature
// with the found key. A lookup error means the key set could not be
// retrieved; a missing key means the token names a kid the issuer does not
// publish.
func (u *Unverified[P]) Verify(key jwk.SigningKey, found bool, lookupErr error) (claims.RequiredClaims, P, error) {
	var zero P
	if lookupErr != nil {
		return claims.RequiredClaims{}, zero, fail(FailReasonKey, verr.ErrRetrieveKeyFailure)
	}
	if !found {
		return claims.RequiredClaims{}, zero, fail(FailReasonKid, verr.ErrInvalidToken)
	}
	if err := key.Verify(u.Signed, u.Signature); err != nil {
		reason := FailReasonSignature
		if _, ok := err.(*verr.UnsupportedAlgorithmError); ok {
			reason = FailReasonAlg
		}
		return claims.RequiredClaims{}, zero, fail(reason, err)
	}
	return u.Claims, u.Payload, nil
}
