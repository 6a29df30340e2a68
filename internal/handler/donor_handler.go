package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/donor"
)

type DonorHandler struct {
	donorService donor.Service
}

func NewDonorHandler(donorService donor.Service) *DonorHandler {
	return &DonorHandler{donorService: donorService}
}

func (h *DonorHandler) Create(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	var input domain.CreateDonorInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	donor, err := h.donorService.Create(c.Context(), user.ID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(donor)
}

func (h *DonorHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)
	search := c.Query("search")

	var bloodGroup *domain.BloodGroup
	if bg := c.Query("blood_group"); bg != "" {
		group := domain.BloodGroup(bg)
		if !group.IsValid() {
			return middleware.BadRequest("Invalid blood group")
		}
		bloodGroup = &group
	}

	result, err := h.donorService.List(c.Context(), params, search, bloodGroup)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *DonorHandler) Get(c *fiber.Ctx) error {
	donorID, err := uuid.Parse(c.Params("donorId"))
	if err != nil {
		return middleware.BadRequest("Invalid donor ID")
	}

	donor, err := h.donorService.GetByID(c.Context(), donorID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(donor)
}

func (h *DonorHandler) Update(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	donorID, err := uuid.Parse(c.Params("donorId"))
	if err != nil {
		return middleware.BadRequest("Invalid donor ID")
	}

	var input domain.UpdateDonorInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	donor, err := h.donorService.Update(c.Context(), donorID, user.ID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(donor)
}

func (h *DonorHandler) Delete(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	donorID, err := uuid.Parse(c.Params("donorId"))
	if err != nil {
		return middleware.BadRequest("Invalid donor ID")
	}

	if err := h.donorService.Delete(c.Context(), donorID, user.ID); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Donor deleted successfully",
	})
}
