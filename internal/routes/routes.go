package routes

import (
	"time"

	"github.com/campuswatch/backend/internal/config"
	"github.com/campuswatch/backend/internal/handlers"
	"github.com/campuswatch/backend/internal/middleware"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	stores storage.Stores,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	notificationHandler *handlers.NotificationHandler,
	moderationHandler *handlers.ModerationHandler,
	campusHandler *handlers.CampusHandler,
	wsHandler *handlers.WSHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public, with a stricter limit of 10 req/min per IP.
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/verify-email", authHandler.VerifyEmail)

	// Everything below resolves the caller against storage on each request,
	// so bans and deactivations cut access immediately.
	protected := api.Group("", middleware.JWTProtected(cfg), middleware.LoadIdentity(stores.Users()))

	protected.Post("/auth/logout", authHandler.Logout)
	protected.Get("/auth/me", authHandler.Me)

	reports := protected.Group("/reports")
	reports.Post("/", reportHandler.Create)
	reports.Get("/", reportHandler.Feed)
	reports.Get("/nearby", reportHandler.Nearby)
	reports.Get("/:id", reportHandler.Get)
	reports.Put("/:id", reportHandler.Update)
	reports.Delete("/:id", reportHandler.Delete)
	reports.Post("/:id/vote", reportHandler.Vote)
	reports.Post("/:id/spam", reportHandler.FlagSpam)
	reports.Post("/:id/comments", reportHandler.CommentCreate)
	reports.Get("/:id/comments", reportHandler.CommentList)

	protected.Put("/comments/:id", reportHandler.CommentUpdate)
	protected.Delete("/comments/:id", reportHandler.CommentDelete)

	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationHandler.List)
	notifications.Post("/:id/read", notificationHandler.MarkRead)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)

	moderation := protected.Group("/moderation", middleware.ModeratorRequired())
	moderation.Get("/summary", moderationHandler.Summary)
	moderation.Get("/reports", moderationHandler.ListReports)
	moderation.Patch("/reports/:id", moderationHandler.UpdateReport)
	moderation.Get("/audit", moderationHandler.Audit)
	moderation.Post("/users/:id/ban", moderationHandler.BanUser)
	moderation.Delete("/users/:id/ban", moderationHandler.UnbanUser)

	admin := protected.Group("/admin", middleware.AdminRequired())
	admin.Post("/campuses", campusHandler.Create)
	admin.Get("/campuses", campusHandler.List)
	admin.Patch("/campuses/:id", campusHandler.Update)

	// Websocket auth rides a query-param token, not the JWT header stack.
	app.Get("/ws", wsHandler.Upgrade(), wsHandler.Serve())
}
