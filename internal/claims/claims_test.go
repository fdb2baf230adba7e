package claims

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullPayload = `{
	"iss": "accounts.google.com",
	"sub": "107067361503954474488",
	"aud": "client",
	"azp": "client",
	"iat": 1526488933,
	"exp": 1526492533,
	"email": "fuchsnj@gmail.com",
	"email_verified": true,
	"name": "Nathan Fox",
	"picture": "https://example.com/photo.jpg",
	"given_name": "Nathan",
	"family_name": "Fox",
	"locale": "en",
	"jti": "ignored"
}`

func TestRequiredClaims(t *testing.T) {
	var c RequiredClaims
	require.NoError(t, json.Unmarshal([]byte(fullPayload), &c))
	want := RequiredClaims{
		Issuer:          "accounts.google.com",
		Subject:         "107067361503954474488",
		Audience:        "client",
		AuthorizedParty: "client",
		IssuedAt:        1526488933,
		ExpiresAt:       1526492533,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Fatalf("claims mismatch (-want +got):\n%s", diff)
	}
}

func TestRequiredClaimsMissing(t *testing.T) {
	for _, field := range []string{"iss", "sub", "aud", "azp", "iat", "exp"} {
		t.Run(field, func(t *testing.T) {
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(fullPayload), &m))
			delete(m, field)
			b, err := json.Marshal(m)
			require.NoError(t, err)

			var c RequiredClaims
			err = json.Unmarshal(b, &c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestRequiredClaimsWrongTypes(t *testing.T) {
	for name, doc := range map[string]string{
		"negative exp": `{"iss":"a","sub":"b","aud":"c","azp":"d","iat":1,"exp":-5}`,
		"string iat":   `{"iss":"a","sub":"b","aud":"c","azp":"d","iat":"1","exp":5}`,
		"array aud":    `{"iss":"a","sub":"b","aud":["c"],"azp":"d","iat":1,"exp":5}`,
	} {
		t.Run(name, func(t *testing.T) {
			var c RequiredClaims
			assert.Error(t, json.Unmarshal([]byte(doc), &c))
		})
	}
}

func TestIDPayload(t *testing.T) {
	var p IDPayload
	require.NoError(t, json.Unmarshal([]byte(fullPayload), &p))
	assert.Equal(t, "fuchsnj@gmail.com", p.Email)
	assert.True(t, p.EmailVerified)
	assert.Equal(t, "Nathan", p.GivenName)
	_, ok := p.Domain()
	assert.False(t, ok)

	var withHD IDPayload
	doc := fullPayload[:len(fullPayload)-1] + `,"hd":"example.com"}`
	require.NoError(t, json.Unmarshal([]byte(doc), &withHD))
	hd, ok := withHD.Domain()
	assert.True(t, ok)
	assert.Equal(t, "example.com", hd)
}

func TestIDPayloadMissingField(t *testing.T) {
	var p IDPayload
	err := json.Unmarshal([]byte(`{"email":"a@b.c","email_verified":true}`), &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestHeader(t *testing.T) {
	var h Header
	require.NoError(t, json.Unmarshal([]byte(`{"alg":"RS256","kid":"abc","typ":"JWT"}`), &h))
	assert.Equal(t, "abc", h.KeyID)

	assert.Error(t, json.Unmarshal([]byte(`{"alg":"RS256"}`), &h))
}

func TestKeysMatchExactly(t *testing.T) {
	tests := map[string]struct {
		doc string
		dst json.Unmarshaler
	}{
		"header KID":        {`{"KID":"k1"}`, new(Header)},
		"header Kid":        {`{"alg":"RS256","Kid":"k1"}`, new(Header)},
		"claims upper-case": {`{"ISS":"a","SUB":"b","AUD":"c","AZP":"d","IAT":1,"EXP":5}`, new(RequiredClaims)},
		"claims mixed exp":  {`{"iss":"a","sub":"b","aud":"c","azp":"d","iat":1,"Exp":5}`, new(RequiredClaims)},
		"payload Email":     {`{"Email":"a@b.c","email_verified":true,"name":"n","picture":"p","given_name":"g","family_name":"f","locale":"en"}`, new(IDPayload)},
		"null kid":          {`{"kid":null}`, new(Header)},
		"not an object":     {`[]`, new(RequiredClaims)},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, json.Unmarshal([]byte(tt.doc), tt.dst))
		})
	}
}

func TestIDPayloadIgnoresUpperCaseHostedDomain(t *testing.T) {
	var p IDPayload
	doc := fullPayload[:len(fullPayload)-1] + `,"HD":"example.com"}`
	require.NoError(t, json.Unmarshal([]byte(doc), &p))
	_, ok := p.Domain()
	assert.False(t, ok)
}
