package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/document"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/hospital"
)

type HospitalHandler struct {
	hospitalService hospital.Service
	documentService document.Service
}

func NewHospitalHandler(hospitalService hospital.Service, documentService document.Service) *HospitalHandler {
	return &HospitalHandler{
		hospitalService: hospitalService,
		documentService: documentService,
	}
}

func (h *HospitalHandler) Create(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	var input domain.CreateHospitalInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	hospital, err := h.hospitalService.Create(c.Context(), user.ID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(hospital)
}

func (h *HospitalHandler) List(c *fiber.Ctx) error {
	params := getPaginationParams(c)
	search := c.Query("search")

	result, err := h.hospitalService.List(c.Context(), params, search)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *HospitalHandler) Get(c *fiber.Ctx) error {
	hospitalID, err := uuid.Parse(c.Params("hospitalId"))
	if err != nil {
		return middleware.BadRequest("Invalid hospital ID")
	}

	hospital, err := h.hospitalService.GetByID(c.Context(), hospitalID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(hospital)
}

func (h *HospitalHandler) Update(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	hospitalID, err := uuid.Parse(c.Params("hospitalId"))
	if err != nil {
		return middleware.BadRequest("Invalid hospital ID")
	}

	if !user.CanAccessHospital(hospitalID) {
		return middleware.Forbidden("You do not have access to this hospital")
	}

	var input domain.UpdateHospitalInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	hospital, err := h.hospitalService.Update(c.Context(), hospitalID, user.ID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(hospital)
}

func (h *HospitalHandler) Delete(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	hospitalID, err := uuid.Parse(c.Params("hospitalId"))
	if err != nil {
		return middleware.BadRequest("Invalid hospital ID")
	}

	if err := h.hospitalService.Delete(c.Context(), hospitalID, user.ID); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Hospital deleted successfully",
	})
}

// SetVerified is the admin override that bypasses document review.
func (h *HospitalHandler) SetVerified(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	hospitalID, err := uuid.Parse(c.Params("hospitalId"))
	if err != nil {
		return middleware.BadRequest("Invalid hospital ID")
	}

	var input struct {
		IsVerified bool `json:"is_verified"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	hospital, err := h.hospitalService.SetVerified(c.Context(), hospitalID, user.ID, input.IsVerified)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(hospital)
}

func (h *HospitalHandler) ListDocuments(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	hospitalID, err := uuid.Parse(c.Params("hospitalId"))
	if err != nil {
		return middleware.BadRequest("Invalid hospital ID")
	}

	if !user.CanAccessHospital(hospitalID) {
		return middleware.Forbidden("You do not have access to this hospital")
	}

	docs, err := h.documentService.ListByHospital(c.Context(), hospitalID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(docs)
}
