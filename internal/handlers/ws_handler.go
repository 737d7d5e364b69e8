package handlers

import (
	"context"

	"github.com/campuswatch/backend/internal/authz"
	"github.com/campuswatch/backend/internal/config"
	"github.com/campuswatch/backend/internal/realtime"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const wsIdentityKey = "ws_identity"

type WSHandler struct {
	hub    *realtime.Hub
	cfg    *config.Config
	stores storage.Stores
}

func NewWSHandler(hub *realtime.Hub, cfg *config.Config, stores storage.Stores) *WSHandler {
	return &WSHandler{hub: hub, cfg: cfg, stores: stores}
}

// Upgrade gates the route to real websocket upgrades and authenticates the
// caller. Browsers cannot set headers on websocket dials, so the access
// token arrives as a query parameter instead.
func (h *WSHandler) Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token, err := jwt.Parse(c.Query("token"), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return unauthorizedWS(c, "invalid or expired token")
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorizedWS(c, "invalid claims")
		}
		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return unauthorizedWS(c, "invalid subject")
		}

		user, err := h.stores.Users().GetByID(c.Context(), userID)
		if err != nil {
			return unauthorizedWS(c, "account not found")
		}
		if user.IsBanned || !user.IsActive {
			return c.SendStatus(fiber.StatusForbidden)
		}

		c.Locals(wsIdentityKey, authz.Identity{
			UserID:        user.ID,
			CampusID:      user.CampusID,
			Role:          user.Role,
			EmailVerified: user.EmailVerified,
		})
		return c.Next()
	}
}

// Serve hands the upgraded connection to the hub. The join validator keeps
// report subscriptions inside the caller's campus: a report the caller
// cannot read is a channel the caller cannot watch.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		identity, ok := conn.Locals(wsIdentityKey).(authz.Identity)
		if !ok {
			_ = conn.Close()
			return
		}
		canJoin := func(reportID uuid.UUID) bool {
			_, err := h.stores.Reports().GetByID(context.Background(), identity.CampusScope(), reportID)
			return err == nil
		}
		h.hub.ServeConn(conn, identity, canJoin)
	})
}

func unauthorizedWS(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).SendString(msg)
}
