package handlers

import (
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/middleware"
	"github.com/campuswatch/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.auth.Register(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return created(c, resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.auth.Login(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	resp, err := h.auth.Refresh(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.LogoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := h.auth.Logout(c.Context(), req); err != nil {
		return fail(c, err)
	}
	return message(c, "logged out")
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	if err := h.auth.VerifyEmail(c.Context(), req); err != nil {
		return fail(c, err)
	}
	return message(c, "email verified")
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id := middleware.CurrentIdentity(c)
	resp, err := h.auth.Me(c.Context(), id.UserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, resp)
}
