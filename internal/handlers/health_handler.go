package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bharatcare/claims-backend/internal/dto"
)

type HealthHandler struct {
	storeName string
	ping      func() error
}

// NewHealthHandler takes the configured store name and a ping probe
// (nil for the in-memory store).
func NewHealthHandler(storeName string, ping func() error) *HealthHandler {
	return &HealthHandler{storeName: storeName, ping: ping}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storeStatus := h.storeName
	if h.ping != nil {
		if err := h.ping(); err != nil {
			storeStatus = "unhealthy: " + err.Error()
		}
	}
	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     storeStatus,
	})
}
