package idverify

import (
	"errors"

	"github.com/keksclan/goIDVerify/internal/verr"
)

// Verification outcomes. Every failed verification returns exactly one of
// these values or an *UnsupportedAlgorithmError, never a wrapped error.
var (
	ErrInvalidToken       = verr.ErrInvalidToken
	ErrExpired            = verr.ErrExpired
	ErrRetrieveKeyFailure = verr.ErrRetrieveKeyFailure
)

var (
	ErrMissingClientID         = errors.New("client id is required")
	ErrMissingRequiredMetadata = errors.New("missing required metadata")
)

// UnsupportedAlgorithmError is returned when the key matching the token's kid
// uses an algorithm other than RS256.
type UnsupportedAlgorithmError = verr.UnsupportedAlgorithmError
