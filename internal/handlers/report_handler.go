package handlers

import (
	"strconv"
	"time"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/middleware"
	"github.com/campuswatch/backend/internal/services"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.reports.Create(c.Context(), middleware.CurrentIdentity(c), req, requestMeta(c))
	if err != nil {
		return fail(c, err)
	}
	return created(c, resp)
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	resp, err := h.reports.Get(c.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *ReportHandler) Feed(c *fiber.Ctx) error {
	resp, err := h.reports.Feed(c.Context(), middleware.CurrentIdentity(c),
		feedFilters(c), c.Query("sort"), c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *ReportHandler) Nearby(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return fail(c, apperr.Invalid("lat is required"))
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return fail(c, apperr.Invalid("lng is required"))
	}
	radius := c.QueryFloat("radius", 1000)

	f := storage.NearbyFilters{
		Category:    c.Query("category"),
		MinSeverity: c.QueryInt("min_severity"),
		Status:      c.Query("status"),
	}
	if since, ok := parseSince(c); ok {
		f.CreatedSince = since
	}

	resp, err := h.reports.Nearby(c.Context(), middleware.CurrentIdentity(c), lat, lng, radius, f)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"reports": resp})
}

func (h *ReportHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.reports.Edit(c.Context(), middleware.CurrentIdentity(c), id, req, requestMeta(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.reports.Retract(c.Context(), middleware.CurrentIdentity(c), id, requestMeta(c)); err != nil {
		return fail(c, err)
	}
	return message(c, "report retracted")
}

func (h *ReportHandler) Vote(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.reports.Vote(c.Context(), middleware.CurrentIdentity(c), id, req, requestMeta(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *ReportHandler) FlagSpam(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	resp, err := h.reports.FlagSpam(c.Context(), middleware.CurrentIdentity(c), id, requestMeta(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *ReportHandler) CommentCreate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.reports.CommentCreate(c.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, resp)
}

func (h *ReportHandler) CommentList(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	resp, err := h.reports.CommentList(c.Context(), middleware.CurrentIdentity(c), id,
		c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *ReportHandler) CommentUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.reports.CommentEdit(c.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *ReportHandler) CommentDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.reports.CommentDelete(c.Context(), middleware.CurrentIdentity(c), id, requestMeta(c)); err != nil {
		return fail(c, err)
	}
	return message(c, "comment deleted")
}

func feedFilters(c *fiber.Ctx) storage.FeedFilters {
	f := storage.FeedFilters{
		Category:      c.Query("category"),
		MinSeverity:   c.QueryInt("min_severity"),
		Status:        c.Query("status"),
		IncludeHidden: c.QueryBool("include_hidden"),
	}
	if since, ok := parseSince(c); ok {
		f.CreatedSince = since
	}
	return f
}

func parseSince(c *fiber.Ctx) (*time.Time, bool) {
	raw := c.Query("since")
	if raw == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
