// Package idverifyfiber provides a Fiber middleware for goIDVerify.
//
// The middleware extracts the ID token from the "Authorization: Bearer"
// header and delegates verification to an idverify.Client.
//
// On success, the *common.Identity is stored in c.Locals("idverify").
// On failure, a 401 JSON response is returned.
//
// Concurrency: All exported functions are safe for concurrent use.
package idverifyfiber

import (
	"github.com/gofiber/fiber/v2"

	"github.com/keksclan/goIDVerify/adapters/common"
)

// LocalsKey is the c.Locals key holding the *common.Identity.
const LocalsKey = "idverify"

// Option configures the Fiber middleware.
type Option = common.Option

var (
	WithRequiredMetadata        = common.WithRequiredMetadata
	WithRequiredMetadataEnabled = common.WithRequiredMetadataEnabled
	WithAttachMetadata          = common.WithAttachMetadata
)

// fiberMetadataExtractor adapts Fiber request headers to the MetadataExtractor interface.
type fiberMetadataExtractor struct {
	c *fiber.Ctx
}

func (e *fiberMetadataExtractor) Get(key string) (string, bool) {
	// Fiber's c.Get is case-insensitive for HTTP headers.
	val := e.c.Get(key)
	if val == "" {
		return "", false
	}
	return val, true
}

// Middleware returns a Fiber middleware that authenticates requests with v.
func Middleware(v common.Verifier, opts ...Option) fiber.Handler {
	o := common.BuildOptions(opts)
	return func(c *fiber.Ctx) error {
		id, err := common.Authenticate(c.UserContext(), v, c.Get(fiber.HeaderAuthorization), &fiberMetadataExtractor{c: c}, o)
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="idverify"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": common.ErrorMessage(err),
			})
		}
		c.Locals(LocalsKey, id)
		return c.Next()
	}
}

// IdentityFromLocals retrieves the identity stored by the middleware.
// Returns nil if no identity is present.
func IdentityFromLocals(c *fiber.Ctx) *common.Identity {
	v, _ := c.Locals(LocalsKey).(*common.Identity)
	return v
}
