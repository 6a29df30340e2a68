package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/fulfillment"
)

type FulfillmentHandler struct {
	fulfillmentService fulfillment.Service
}

func NewFulfillmentHandler(fulfillmentService fulfillment.Service) *FulfillmentHandler {
	return &FulfillmentHandler{fulfillmentService: fulfillmentService}
}

// Confirm records that a donor gave blood at the counter. The donor key may
// be a profile ID or a phone number; the request may be left implicit for
// walk-ins.
func (h *FulfillmentHandler) Confirm(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	var input domain.ConfirmDonationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if input.DonorKey == "" {
		return middleware.BadRequest("Donor key is required")
	}

	input.ConfirmedBy = user.ID
	input.IPAddress = middleware.GetIPAddress(c)
	input.UserAgent = middleware.GetUserAgent(c)

	receipt, err := h.fulfillmentService.Confirm(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(receipt)
}
