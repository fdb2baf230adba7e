// Package idverifyfasthttp provides a fasthttp middleware for goIDVerify.
//
// The middleware extracts the ID token from the "Authorization: Bearer"
// header and delegates verification to an idverify.Client.
//
// On success, the *common.Identity is stored in the request context's user
// value under the key "idverify". On failure, a 401 response is returned.
//
// Concurrency: All exported functions are safe for concurrent use.
package idverifyfasthttp

import (
	"context"
	"encoding/json"

	"github.com/valyala/fasthttp"

	"github.com/keksclan/goIDVerify/adapters/common"
)

// IdentityUserValueKey is the key used to store the *common.Identity in the
// fasthttp.RequestCtx user values.
const IdentityUserValueKey = "idverify"

// Option configures the fasthttp middleware.
type Option = common.Option

var (
	WithRequiredMetadata        = common.WithRequiredMetadata
	WithRequiredMetadataEnabled = common.WithRequiredMetadataEnabled
	WithAttachMetadata          = common.WithAttachMetadata
)

// fasthttpMetadataExtractor adapts fasthttp request headers to the MetadataExtractor interface.
type fasthttpMetadataExtractor struct {
	ctx *fasthttp.RequestCtx
}

func (e *fasthttpMetadataExtractor) Get(key string) (string, bool) {
	// fasthttp Peek is case-insensitive for HTTP headers.
	val := string(e.ctx.Request.Header.Peek(key))
	if val == "" {
		return "", false
	}
	return val, true
}

// Middleware returns a fasthttp request handler that wraps next with
// ID token authentication.
//
// On success the identity is stored with ctx.SetUserValue and next is
// called. On failure, a 401 JSON response is written.
func Middleware(v common.Verifier, next fasthttp.RequestHandler, opts ...Option) fasthttp.RequestHandler {
	o := common.BuildOptions(opts)
	return func(ctx *fasthttp.RequestCtx) {
		authHeader := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
		id, err := common.Authenticate(context.Background(), v, authHeader, &fasthttpMetadataExtractor{ctx: ctx}, o)
		if err != nil {
			writeUnauthorized(ctx, common.ErrorMessage(err))
			return
		}
		ctx.SetUserValue(IdentityUserValueKey, id)
		next(ctx)
	}
}

// IdentityFromCtx retrieves the identity stored in the request context by the middleware.
// Returns nil if no identity is present.
func IdentityFromCtx(ctx *fasthttp.RequestCtx) *common.Identity {
	v, _ := ctx.UserValue(IdentityUserValueKey).(*common.Identity)
	return v
}

func writeUnauthorized(ctx *fasthttp.RequestCtx, msg string) {
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetContentType("application/json")
	ctx.Response.Header.Set(fasthttp.HeaderWWWAuthenticate, `Bearer realm="idverify"`)
	body, _ := json.Marshal(map[string]string{"error": msg})
	ctx.SetBody(body)
}
