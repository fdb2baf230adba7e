// Package idverifygin provides a Gin middleware for goIDVerify.
//
// On success, the *common.Identity is stored under the "idverify" key of the
// gin.Context and in the request context. On failure, the request is aborted
// with a 401 JSON response.
//
// Concurrency: All exported functions are safe for concurrent use.
package idverifygin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keksclan/goIDVerify/adapters/common"
)

// ContextKey is the gin.Context key holding the *common.Identity.
const ContextKey = "idverify"

type requestContextKey struct{}

// Option configures the Gin middleware.
type Option = common.Option

var (
	WithRequiredMetadata        = common.WithRequiredMetadata
	WithRequiredMetadataEnabled = common.WithRequiredMetadataEnabled
	WithAttachMetadata          = common.WithAttachMetadata
)

// Middleware returns a gin.HandlerFunc that authenticates requests with v.
func Middleware(v common.Verifier, opts ...Option) gin.HandlerFunc {
	o := common.BuildOptions(opts)
	return func(c *gin.Context) {
		id, err := common.Authenticate(c.Request.Context(), v, c.GetHeader("Authorization"), common.HTTPHeader(c.Request.Header), o)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer realm="idverify"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrorMessage(err)})
			return
		}
		c.Set(ContextKey, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestContextKey{}, id))
		c.Next()
	}
}

// IdentityFromContext retrieves the identity stored by the middleware.
// Returns nil if no identity is present.
func IdentityFromContext(c *gin.Context) *common.Identity {
	v, _ := c.Get(ContextKey)
	id, _ := v.(*common.Identity)
	return id
}

// IdentityFromRequestContext retrieves the identity from a request context
// passed down from a Gin handler.
func IdentityFromRequestContext(ctx context.Context) *common.Identity {
	id, _ := ctx.Value(requestContextKey{}).(*common.Identity)
	return id
}
