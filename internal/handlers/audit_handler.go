package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/bharatcare/claims-backend/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List returns the newest audit entries; admin only (enforced by route).
func (h *AuditHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	entries, err := h.auditService.List(limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entries)
}

// ListByClaim returns a claim's full trail in chronological order.
func (h *AuditHandler) ListByClaim(c *fiber.Ctx) error {
	claimID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid claim ID")
	}
	entries, err := h.auditService.ListByClaim(claimID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entries)
}
