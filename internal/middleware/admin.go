package middleware

import (
	"github.com/campuswatch/backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RequireRole gates a route group on a minimum role. Services still run
// their own policy checks; this just fails the obvious cases early.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentIdentity(c).AtLeast(role) {
			return forbidden(c, "insufficient role")
		}
		return c.Next()
	}
}

func ModeratorRequired() fiber.Handler { return RequireRole(models.RoleModerator) }

func AdminRequired() fiber.Handler { return RequireRole(models.RoleAdmin) }
