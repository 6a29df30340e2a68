package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/settings"
)

type SettingsHandler struct {
	settingsService settings.Service
}

func NewSettingsHandler(settingsService settings.Service) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) List(c *fiber.Ctx) error {
	items, err := h.settingsService.List(c.Context())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(items)
}

func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	key := c.Params("key")
	if key == "" {
		return middleware.BadRequest("Setting key is required")
	}

	var input struct {
		Value string `json:"value" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	setting, err := h.settingsService.Update(c.Context(), user.ID, key, input.Value)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(setting)
}
