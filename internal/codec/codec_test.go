package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keksclan/goIDVerify/internal/verr"
)

func TestDecode(t *testing.T) {
	t.Run("header segment", func(t *testing.T) {
		b, err := Decode("eyJhbGciOiJSUzI1NiJ9")
		require.NoError(t, err)
		assert.Equal(t, `{"alg":"RS256"}`, string(b))
	})

	t.Run("url alphabet", func(t *testing.T) {
		b, err := Decode("-_8")
		require.NoError(t, err)
		assert.Equal(t, []byte{0xfb, 0xff}, b)
	})

	t.Run("empty", func(t *testing.T) {
		b, err := Decode("")
		require.NoError(t, err)
		assert.Empty(t, b)
	})

	for _, bad := range []string{"a", "ab$c", "ab+/", "eyJ9=="} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := Decode(bad)
			assert.ErrorIs(t, err, verr.ErrInvalidToken)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := []byte{0x00, 0xfb, 0xff, 0x10, 0x42}
	s := Encode(in)
	assert.NotContains(t, s, "=")
	out, err := Decode(s)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
