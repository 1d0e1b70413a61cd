package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/carscan-store/internal/types"
)

const (
	// APIVersion is the version every response is served as
	APIVersion = "1.0.0"

	VersionHeader = "X-Api-Version"
	LocalsVersion = "apiVersion"
)

func majorVersion(v string) string {
	major, _, _ := strings.Cut(strings.TrimPrefix(v, "v"), ".")
	return major
}

// VersionMiddleware echoes the served version and rejects requests pinned to another major version.
// Any compatible request ("1", "1.0", "v1.0.0") is served as APIVersion.
func VersionMiddleware() fiber.Handler {
	served := majorVersion(APIVersion)

	return func(c *fiber.Ctx) error {
		c.Set(VersionHeader, APIVersion)

		if requested := c.Get(VersionHeader); requested != "" && majorVersion(requested) != served {
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: fmt.Sprintf("Unsupported API version %s", requested),
				Type:    "version",
			}
		}

		c.Locals(LocalsVersion, APIVersion)
		return c.Next()
	}
}
