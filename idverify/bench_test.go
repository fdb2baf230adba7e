package idverify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/keksclan/goIDVerify/internal/fixtures"
)

// BenchmarkVerifyIDToken measures the hot path with a fresh cached key set.
func BenchmarkVerifyIDToken(b *testing.B) {
	iss := fixtures.NewIssuer(b, "bench-key")
	body := iss.JWKS(b)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	c, err := New(Config{ClientID: "bench-client", JWKSURL: server.URL})
	if err != nil {
		b.Fatal(err)
	}
	defer c.Close()
	signed := iss.Sign(b, fixtures.Claims("bench-client", time.Now(), time.Hour))

	ctx := b.Context()
	if _, err := c.VerifyIDToken(ctx, signed); err != nil {
		b.Fatalf("warmup verify failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := c.VerifyIDToken(ctx, signed); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRejectWrongAudience measures the path that never reaches the key provider.
func BenchmarkRejectWrongAudience(b *testing.B) {
	iss := fixtures.NewIssuer(b, "bench-key")
	c, err := NewClient("bench-client", WithKeyProvider(KeyProviderFunc(
		func(context.Context, string) (SigningKey, bool, error) {
			b.Fatal("key provider reached")
			return SigningKey{}, false, nil
		})))
	if err != nil {
		b.Fatal(err)
	}
	signed := iss.Sign(b, fixtures.Claims("other-client", time.Now(), time.Hour))

	ctx := b.Context()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := c.VerifyIDToken(ctx, signed); err == nil {
			b.Fatal("expected rejection")
		}
	}
}

func assertNotPanics(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("panic: %v", r)
		}
	}()
	f()
}

func TestVerifyNoPanics(t *testing.T) {
	iss := fixtures.NewIssuer(t, "kid-1")
	set, err := ParseKeySet(iss.JWKS(t))
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewClient("client", WithKeyProvider(NewStaticKeyProvider(set)))
	if err != nil {
		t.Fatal(err)
	}
	valid := iss.Sign(t, fixtures.Claims("client", time.Now(), time.Hour))

	cases := []string{
		"",
		"abc",
		"a.b",
		"a.b.c",
		"..",
		"....",
		"e30.e30.e30",
		"eyJraWQiOm51bGx9.e30.",
		valid + ".extra",
		valid[:len(valid)/2],
	}
	for _, tok := range cases {
		assertNotPanics(t, func() {
			_, _ = c.VerifyIDToken(context.Background(), tok)
			_, _ = c.VerifyToken(context.Background(), tok)
		})
	}
}
