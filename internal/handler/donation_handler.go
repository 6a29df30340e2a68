package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/donation"
)

type DonationHandler struct {
	donationService donation.Service
}

func NewDonationHandler(donationService donation.Service) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

func (h *DonationHandler) List(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	params := getPaginationParams(c)

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

	result, err := h.donationService.List(c.Context(), hospitalID, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *DonationHandler) Get(c *fiber.Ctx) error {
	donationID, err := uuid.Parse(c.Params("donationId"))
	if err != nil {
		return middleware.BadRequest("Invalid donation ID")
	}

	donation, err := h.donationService.GetByID(c.Context(), donationID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(donation)
}
