package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bharatcare/claims-backend/internal/middleware"
	"github.com/bharatcare/claims-backend/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	notifications, err := h.notificationService.ListForUser(user.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(notifications)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	n, err := h.notificationService.MarkAllRead(user.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"marked_read": n})
}
