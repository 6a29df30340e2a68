package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/audit"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/dashboard"
)

type DashboardHandler struct {
	dashboardService dashboard.Service
	auditService     audit.Service
}

func NewDashboardHandler(dashboardService dashboard.Service, auditService audit.Service) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		auditService:     auditService,
	}
}

func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	hospitalID := user.HospitalID
	if user.Role == string(domain.RoleAdmin) {
		hospitalID = nil
		if hid := c.Query("hospital_id"); hid != "" {
			id, err := uuid.Parse(hid)
			if err != nil {
				return middleware.BadRequest("Invalid hospital ID")
			}
			hospitalID = &id
		}
	}

	stats, err := h.dashboardService.GetStats(c.Context(), hospitalID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *DashboardHandler) GetRecentActivities(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	activities, err := h.auditService.GetRecentActivities(c.Context(), limit)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(activities)
}
