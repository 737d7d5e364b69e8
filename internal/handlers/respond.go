package handlers

import (
	"log/slog"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(dto.Envelope{Success: true, Data: data})
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(dto.Envelope{Success: true, Data: data})
}

func message(c *fiber.Ctx, msg string) error {
	return c.JSON(dto.Envelope{Success: true, Message: msg})
}

// fail renders a service error through the shared taxonomy. Internal causes
// stay in the log; the client only ever sees the kind and a safe message.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
	}
	if apperr.IsKind(err, apperr.KindInternal) {
		msg = "internal error"
	}
	return c.Status(status).JSON(dto.Envelope{
		Success: false,
		Message: msg,
		Code:    string(apperr.KindOf(err)),
		Errors:  apperr.FieldsOf(err),
	})
}

func badBody(c *fiber.Ctx) error {
	return fail(c, apperr.Invalid("invalid request body"))
}

func parseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid " + name)
	}
	return id, nil
}

// requestMeta captures what audit entries record about the request.
func requestMeta(c *fiber.Ctx) services.RequestMeta {
	return services.RequestMeta{IP: c.IP(), UserAgent: c.Get("User-Agent")}
}
