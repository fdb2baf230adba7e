package keyprovider

import (
	"context"

	"github.com/keksclan/goIDVerify/internal/jwk"
)

// Static serves a fixed key set. It never fails.
type Static struct {
	set jwk.SigningKeySet
}

func NewStatic(set jwk.SigningKeySet) *Static {
	return &Static{set: set}
}

// NewStaticJSON parses a JWKS document.
func NewStaticJSON(doc []byte) (*Static, error) {
	set, err := jwk.ParseSet(doc)
	if err != nil {
		return nil, err
	}
	return NewStatic(set), nil
}

// NewStaticFile loads a pinned JWKS file from disk.
func NewStaticFile(path string) (*Static, error) {
	set, err := jwk.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewStatic(set), nil
}

func (s *Static) GetKey(_ context.Context, kid string) (jwk.SigningKey, bool, error) {
	k, ok := s.set.Lookup(kid)
	return k, ok, nil
}
