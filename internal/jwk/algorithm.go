package jwk

import (
	"encoding/json"
	"fmt"
)

// Algorithm is the "alg" tag of a published signing key.
//
// The set is closed: decoding any other tag fails.
type Algorithm string

const (
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
	RS512 Algorithm = "RS512"
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
	ES256 Algorithm = "ES256"
	ES384 Algorithm = "ES384"
	ES512 Algorithm = "ES512"
)

// ParseAlgorithm maps a tag onto the closed algorithm set.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case RS256, RS384, RS512, HS256, HS384, HS512, ES256, ES384, ES512:
		return a, nil
	}
	return "", fmt.Errorf("unknown algorithm %q", s)
}

func (a Algorithm) String() string { return string(a) }

func (a *Algorithm) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseAlgorithm(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
