package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/bharatcare/claims-backend/internal/apperr"
	"github.com/bharatcare/claims-backend/internal/dto"
)

// fail renders a typed domain failure with its distinct kind so the UI
// can surface a specific message. Untyped errors become opaque 500s.
func fail(c *fiber.Ctx, err error) error {
	status := apperr.HTTPStatus(err)
	resp := dto.ErrorResponse{Error: true, Message: err.Error()}
	if kind := apperr.KindOf(err); kind != 0 {
		resp.Kind = kind.String()
	} else {
		slog.Error("unhandled service error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		resp.Message = "Internal server error"
	}
	return c.Status(status).JSON(resp)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
