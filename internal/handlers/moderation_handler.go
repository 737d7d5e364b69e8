package handlers

import (
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/middleware"
	"github.com/campuswatch/backend/internal/services"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	moderation *services.ModerationService
	audits     *services.AuditService
}

func NewModerationHandler(moderation *services.ModerationService, audits *services.AuditService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation, audits: audits}
}

func (h *ModerationHandler) Summary(c *fiber.Ctx) error {
	resp, err := h.moderation.Summary(c.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	resp, err := h.moderation.ListReports(c.Context(), middleware.CurrentIdentity(c),
		feedFilters(c), c.Query("sort"), c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *ModerationHandler) UpdateReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.ModerationUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.moderation.ModeratorUpdate(c.Context(), middleware.CurrentIdentity(c), id, req, requestMeta(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

// Audit serves the moderation history: by report, by actor, or the recent
// slice when neither filter is given.
func (h *ModerationHandler) Audit(c *fiber.Ctx) error {
	viewer := middleware.CurrentIdentity(c)
	page, pageSize := storage.NormalizePage(c.QueryInt("page", 1), c.QueryInt("page_size", 20))

	if raw := c.Query("report_id"); raw != "" {
		reportID, err := uuid.Parse(raw)
		if err != nil {
			return badBody(c)
		}
		entries, total, err := h.audits.ByReport(c.Context(), viewer, reportID, page, pageSize)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, dto.AuditListResponse{
			Entries: dto.NewAuditEntryResponses(entries),
			Meta:    dto.PageMeta{Page: page, PageSize: pageSize, Total: total},
		})
	}
	if raw := c.Query("actor_id"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			return badBody(c)
		}
		entries, total, err := h.audits.ByActor(c.Context(), viewer, actorID, page, pageSize)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, dto.AuditListResponse{
			Entries: dto.NewAuditEntryResponses(entries),
			Meta:    dto.PageMeta{Page: page, PageSize: pageSize, Total: total},
		})
	}

	entries, err := h.audits.Recent(c.Context(), viewer, c.QueryInt("limit", 20))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"entries": dto.NewAuditEntryResponses(entries)})
}

func (h *ModerationHandler) BanUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.BanUserRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return badBody(c)
	}
	if err := h.moderation.BanUser(c.Context(), middleware.CurrentIdentity(c), id, req, requestMeta(c)); err != nil {
		return fail(c, err)
	}
	return message(c, "user banned")
}

func (h *ModerationHandler) UnbanUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.moderation.UnbanUser(c.Context(), middleware.CurrentIdentity(c), id, requestMeta(c)); err != nil {
		return fail(c, err)
	}
	return message(c, "user unbanned")
}
