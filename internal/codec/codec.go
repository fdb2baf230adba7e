// Package codec converts token segments and key material from and to
// unpadded base64url.
package codec

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/keksclan/goIDVerify/internal/verr"
)

var parser = jwt.NewParser()

// Decode returns the bytes of an unpadded base64url string.
// Any malformed input yields verr.ErrInvalidToken.
func Decode(s string) ([]byte, error) {
	b, err := parser.DecodeSegment(s)
	if err != nil {
		return nil, verr.ErrInvalidToken
	}
	return b, nil
}

// Encode is the inverse of Decode.
func Encode(b []byte) string {
	return new(jwt.Token).EncodeSegment(b)
}
