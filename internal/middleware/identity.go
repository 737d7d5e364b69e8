package middleware

import (
	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/authz"
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const identityKey = "identity"

// LoadIdentity resolves the JWT subject against storage and stashes the
// caller's identity in locals. Reloading per request means bans and role
// changes apply on the next request, not at token expiry.
func LoadIdentity(users storage.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return unauthorized(c, "missing token")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c, "invalid claims")
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return unauthorized(c, "invalid subject")
		}

		user, err := users.GetByID(c.Context(), userID)
		if err != nil {
			return unauthorized(c, "account not found")
		}
		if user.IsBanned {
			return forbidden(c, "account banned")
		}
		if !user.IsActive {
			return forbidden(c, "account disabled")
		}

		c.Locals(identityKey, authz.Identity{
			UserID:        user.ID,
			CampusID:      user.CampusID,
			Role:          user.Role,
			EmailVerified: user.EmailVerified,
		})
		return c.Next()
	}
}

// CurrentIdentity returns the identity stored by LoadIdentity. The zero
// value means the route was not behind auth.
func CurrentIdentity(c *fiber.Ctx) authz.Identity {
	id, _ := c.Locals(identityKey).(authz.Identity)
	return id
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.Envelope{
		Success: false,
		Message: msg,
		Code:    string(apperr.KindUnauthenticated),
	})
}

func forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.Envelope{
		Success: false,
		Message: msg,
		Code:    string(apperr.KindForbidden),
	})
}
