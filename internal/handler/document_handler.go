package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/document"
)

type DocumentHandler struct {
	documentService document.Service
}

func NewDocumentHandler(documentService document.Service) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.BadRequest("File is required")
	}

	if file.Size > 10*1024*1024 {
		return middleware.BadRequest("File size must be less than 10MB")
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	hospitalID := user.HospitalID
	if hidStr := c.FormValue("hospital_id"); hidStr != "" {
		hid, err := uuid.Parse(hidStr)
		if err != nil {
			return middleware.BadRequest("Invalid hospital ID")
		}
		hospitalID = &hid
	}
	if hospitalID == nil {
		return middleware.BadRequest("Hospital ID is required")
	}
	if !user.CanAccessHospital(*hospitalID) {
		return middleware.Forbidden("You do not have access to this hospital")
	}

	fileReader, err := file.Open()
	if err != nil {
		return middleware.BadRequest("Failed to read file")
	}
	defer fileReader.Close()

	doc, err := h.documentService.Upload(c.Context(), user.ID, *hospitalID, file.Filename, file.Size, mimeType, fileReader)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	documentID, err := uuid.Parse(c.Params("documentId"))
	if err != nil {
		return middleware.BadRequest("Invalid document ID")
	}

	doc, err := h.documentService.GetByID(c.Context(), documentID)
	if err != nil {
		return err
	}

	if !user.CanAccessHospital(doc.HospitalID) {
		return middleware.Forbidden("You do not have access to this hospital")
	}

	return c.Status(fiber.StatusOK).JSON(doc)
}

func (h *DocumentHandler) ListPending(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	result, err := h.documentService.ListPending(c.Context(), params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *DocumentHandler) Review(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	documentID, err := uuid.Parse(c.Params("documentId"))
	if err != nil {
		return middleware.BadRequest("Invalid document ID")
	}

	var input struct {
		Approve bool `json:"approve"`
	}
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	doc, err := h.documentService.Review(c.Context(), documentID, user.ID, input.Approve)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(doc)
}

func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	documentID, err := uuid.Parse(c.Params("documentId"))
	if err != nil {
		return middleware.BadRequest("Invalid document ID")
	}

	doc, err := h.documentService.GetByID(c.Context(), documentID)
	if err != nil {
		return err
	}
	if !user.CanAccessHospital(doc.HospitalID) {
		return middleware.Forbidden("You do not have access to this hospital")
	}

	if err := h.documentService.Delete(c.Context(), documentID, user.ID); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Document deleted successfully",
	})
}
