package idverifygin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keksclan/goIDVerify/idverify"
	"github.com/keksclan/goIDVerify/internal/fixtures"
)

func newRouter(t *testing.T, opts ...Option) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	iss := fixtures.NewIssuer(t, "kid-1")
	set, err := idverify.ParseKeySet(iss.JWKS(t))
	require.NoError(t, err)
	c, err := idverify.NewClient("client", idverify.WithKeyProvider(idverify.NewStaticKeyProvider(set)))
	require.NoError(t, err)

	r := gin.New()
	r.Use(Middleware(c, opts...))
	r.GET("/me", func(c *gin.Context) {
		id := IdentityFromContext(c)
		fromReq := IdentityFromRequestContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"email": id.Profile.Email, "same": id == fromReq})
	})
	return r, iss.Sign(t, fixtures.Claims("client", time.Now(), time.Hour))
}

func TestMiddleware(t *testing.T) {
	r, tok := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"jane.doe@example.com","same":true}`, w.Body.String())
}

func TestMiddlewareRejects(t *testing.T) {
	r, _ := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid token"}`, w.Body.String())
	assert.Equal(t, `Bearer realm="idverify"`, w.Header().Get("WWW-Authenticate"))
}

func TestMiddlewareRequiredMetadata(t *testing.T) {
	r, tok := newRouter(t, WithRequiredMetadata("X-Tenant"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
