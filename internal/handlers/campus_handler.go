package handlers

import (
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/middleware"
	"github.com/campuswatch/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type CampusHandler struct {
	campuses *services.CampusService
}

func NewCampusHandler(campuses *services.CampusService) *CampusHandler {
	return &CampusHandler{campuses: campuses}
}

func (h *CampusHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCampusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	campus, err := h.campuses.Create(c.Context(), middleware.CurrentIdentity(c), req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, campus)
}

func (h *CampusHandler) List(c *fiber.Ctx) error {
	campuses, err := h.campuses.List(c.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"campuses": campuses})
}

func (h *CampusHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req dto.UpdateCampusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	campus, err := h.campuses.Update(c.Context(), middleware.CurrentIdentity(c), id, req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, campus)
}
