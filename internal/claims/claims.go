// Package claims defines the JSON shapes read out of an ID token.
//
// Keys are matched exactly: encoding/json folds case when decoding into
// structs, so every shape reads its members out of a raw object instead.
package claims

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Header is the decoded token header. Only the key id is consumed.
type Header struct {
	KeyID string `json:"kid"`
}

// UnmarshalJSON rejects headers without a kid.
func (h *Header) UnmarshalJSON(b []byte) error {
	obj, err := object(b)
	if err != nil {
		return err
	}
	var kid string
	if err := obj.required("kid", &kid); err != nil {
		return err
	}
	h.KeyID = kid
	return nil
}

// RequiredClaims is the set of registered claims every accepted token carries.
//
// Concurrency: immutable once decoded.
type RequiredClaims struct {
	Issuer          string `json:"iss"`
	Subject         string `json:"sub"`
	Audience        string `json:"aud"`
	AuthorizedParty string `json:"azp"`
	IssuedAt        uint64 `json:"iat"`
	ExpiresAt       uint64 `json:"exp"`
}

// UnmarshalJSON rejects payloads that omit any of the required claims.
func (c *RequiredClaims) UnmarshalJSON(b []byte) error {
	obj, err := object(b)
	if err != nil {
		return err
	}
	var out RequiredClaims
	for _, f := range []struct {
		name string
		dst  any
	}{
		{"iss", &out.Issuer},
		{"sub", &out.Subject},
		{"aud", &out.Audience},
		{"azp", &out.AuthorizedParty},
		{"iat", &out.IssuedAt},
		{"exp", &out.ExpiresAt},
	} {
		if err := obj.required(f.name, f.dst); err != nil {
			return err
		}
	}
	*c = out
	return nil
}

// IDPayload is the Google profile payload that accompanies an ID token.
type IDPayload struct {
	Email         string  `json:"email"`
	EmailVerified bool    `json:"email_verified"`
	Name          string  `json:"name"`
	Picture       string  `json:"picture"`
	GivenName     string  `json:"given_name"`
	FamilyName    string  `json:"family_name"`
	Locale        string  `json:"locale"`
	HostedDomain  *string `json:"hd,omitempty"`
}

// UnmarshalJSON requires every profile field except hd.
func (p *IDPayload) UnmarshalJSON(b []byte) error {
	obj, err := object(b)
	if err != nil {
		return err
	}
	var out IDPayload
	for _, f := range []struct {
		name string
		dst  any
	}{
		{"email", &out.Email},
		{"email_verified", &out.EmailVerified},
		{"name", &out.Name},
		{"picture", &out.Picture},
		{"given_name", &out.GivenName},
		{"family_name", &out.FamilyName},
		{"locale", &out.Locale},
	} {
		if err := obj.required(f.name, f.dst); err != nil {
			return err
		}
	}
	if raw, ok := obj["hd"]; ok && !isNull(raw) {
		var hd string
		if err := json.Unmarshal(raw, &hd); err != nil {
			return fmt.Errorf("claim %q: %w", "hd", err)
		}
		out.HostedDomain = &hd
	}
	*p = out
	return nil
}

// Domain returns the hosted G Suite domain, if the account has one.
func (p IDPayload) Domain() (string, bool) {
	if p.HostedDomain == nil {
		return "", false
	}
	return *p.HostedDomain, true
}

type rawObject map[string]json.RawMessage

func object(b []byte) (rawObject, error) {
	var obj rawObject
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("expected a JSON object")
	}
	return obj, nil
}

// required decodes the member named exactly name into dst. Absent and null
// members are both missing.
func (o rawObject) required(name string, dst any) error {
	raw, ok := o[name]
	if !ok || isNull(raw) {
		return missing(name)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("claim %q: %w", name, err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func missing(name string) error {
	return fmt.Errorf("claim %q is required", name)
}
