package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bharatcare/claims-backend/internal/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (h *AnalyticsHandler) KPIs(c *fiber.Ctx) error {
	kpis, err := h.analyticsService.KPIs()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(kpis)
}

func (h *AnalyticsHandler) ByStatus(c *fiber.Ctx) error {
	out, err := h.analyticsService.ByStatus()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *AnalyticsHandler) ByDiagnosis(c *fiber.Ctx) error {
	out, err := h.analyticsService.ByDiagnosis()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *AnalyticsHandler) MonthlyTotals(c *fiber.Ctx) error {
	months, _ := strconv.Atoi(c.Query("months", "6"))
	out, err := h.analyticsService.MonthlyTotals(months)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
