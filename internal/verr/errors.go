// Package verr holds the error values every verification layer reports.
package verr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken covers malformed tokens, claim mismatches, unknown key ids
	// and bad signatures.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpired is returned when expiration checking is enabled and exp is in the past.
	ErrExpired = errors.New("token expired")
	// ErrRetrieveKeyFailure means the key provider could not produce a key set.
	ErrRetrieveKeyFailure = errors.New("failed to retrieve signing key")
)

// UnsupportedAlgorithmError reports a matched signing key whose algorithm cannot be verified.
type UnsupportedAlgorithmError struct {
	Algorithm string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported algorithm %q", e.Algorithm)
}
