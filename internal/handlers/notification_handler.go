package handlers

import (
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/middleware"
	"github.com/campuswatch/backend/internal/services"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	id := middleware.CurrentIdentity(c)
	page, pageSize := storage.NormalizePage(c.QueryInt("page", 1), c.QueryInt("page_size", 20))

	list, total, err := h.notifications.List(c.Context(), id.UserID, c.QueryBool("unread_only"), page, pageSize)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{
		"notifications": list,
		"meta":          dto.PageMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.notifications.MarkRead(c.Context(), middleware.CurrentIdentity(c).UserID, id); err != nil {
		return fail(c, err)
	}
	return message(c, "notification marked read")
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	updated, err := h.notifications.MarkAllRead(c.Context(), middleware.CurrentIdentity(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"updated": updated})
}
