package common

import (
	"context"
	"errors"
	"strings"

	"github.com/keksclan/goIDVerify/idverify"
)

var (
	ErrMissingAuthorization = errors.New("missing authorization header")
	ErrUnsupportedScheme    = errors.New("unsupported authorization scheme")
)

// Verifier is satisfied by *idverify.Client.
type Verifier interface {
	VerifyIDToken(ctx context.Context, token string) (*idverify.Token[idverify.IDPayload], error)
}

// Identity is what adapters attach to an authenticated request.
//
// Concurrency: Identity is immutable once returned.
type Identity struct {
	Claims   idverify.RequiredClaims
	Profile  idverify.IDPayload
	Metadata map[string]string
}

// Subject returns the stable Google account id.
func (i *Identity) Subject() string { return i.Claims.Subject }

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingAuthorization
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrUnsupportedScheme
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingAuthorization
	}
	return token, nil
}

// Authenticate runs the shared adapter flow: required metadata, bearer
// extraction and ID token verification.
func Authenticate(ctx context.Context, v Verifier, authHeader string, ex MetadataExtractor, o AdapterOptions) (*Identity, error) {
	if o.RequiredMeta.Enabled {
		if err := o.RequiredMeta.Validate(ex); err != nil {
			return nil, err
		}
	}
	raw, err := BearerToken(authHeader)
	if err != nil {
		return nil, err
	}
	tok, err := v.VerifyIDToken(ctx, raw)
	if err != nil {
		return nil, err
	}
	id := &Identity{Claims: tok.Claims(), Profile: tok.Payload()}
	if o.AttachMetadata {
		id.Metadata = o.RequiredMeta.ExtractMetadataMap(ex)
	}
	return id, nil
}

// ErrorMessage renders err for a 401 body without leaking internals.
func ErrorMessage(err error) string {
	var unsupported *idverify.UnsupportedAlgorithmError
	switch {
	case errors.Is(err, idverify.ErrExpired):
		return "token expired"
	case errors.Is(err, idverify.ErrRetrieveKeyFailure):
		return "unable to retrieve signing keys"
	case errors.As(err, &unsupported):
		return "unsupported signing algorithm"
	case errors.Is(err, idverify.ErrInvalidToken):
		return "invalid token"
	default:
		return err.Error()
	}
}
