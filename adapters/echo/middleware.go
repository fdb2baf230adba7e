// Package idverifyecho provides an Echo middleware for goIDVerify.
//
// On success, the *common.Identity is stored under the "idverify" key of the
// echo.Context. On failure, a 401 JSON response is returned.
//
// Concurrency: All exported functions are safe for concurrent use.
package idverifyecho

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keksclan/goIDVerify/adapters/common"
)

// ContextKey is the echo.Context key holding the *common.Identity.
const ContextKey = "idverify"

// Option configures the Echo middleware.
type Option = common.Option

var (
	WithRequiredMetadata        = common.WithRequiredMetadata
	WithRequiredMetadataEnabled = common.WithRequiredMetadataEnabled
	WithAttachMetadata          = common.WithAttachMetadata
)

// Middleware returns an echo.MiddlewareFunc that authenticates requests with v.
func Middleware(v common.Verifier, opts ...Option) echo.MiddlewareFunc {
	o := common.BuildOptions(opts)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id, err := common.Authenticate(req.Context(), v, req.Header.Get(echo.HeaderAuthorization), common.HTTPHeader(req.Header), o)
			if err != nil {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="idverify"`)
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": common.ErrorMessage(err)})
			}
			c.Set(ContextKey, id)
			return next(c)
		}
	}
}

// IdentityFromContext retrieves the identity stored by the middleware.
// Returns nil if no identity is present.
func IdentityFromContext(c echo.Context) *common.Identity {
	id, _ := c.Get(ContextKey).(*common.Identity)
	return id
}
