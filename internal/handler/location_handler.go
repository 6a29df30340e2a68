package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/location"
)

type LocationHandler struct {
	locationService location.Service
}

func NewLocationHandler(locationService location.Service) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// Submit is public: the invite token in the body is the credential. Donors
// land here from the link in their SMS or email.
func (h *LocationHandler) Submit(c *fiber.Ctx) error {
	var input domain.SubmitLocationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	if input.Token == "" {
		return middleware.BadRequest("Response token is required")
	}
	if input.Latitude < -90 || input.Latitude > 90 || input.Longitude < -180 || input.Longitude > 180 {
		return middleware.BadRequest("Invalid coordinates")
	}

	loc, err := h.locationService.Submit(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(loc)
}

func (h *LocationHandler) Get(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("locationId"))
	if err != nil {
		return middleware.BadRequest("Invalid location ID")
	}

	loc, err := h.locationService.GetByID(c.Context(), locationID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(loc)
}

func (h *LocationHandler) ListLiveByHospital(c *fiber.Ctx) error {
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

	locations, err := h.locationService.ListLiveByHospital(c.Context(), hospitalID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"locations":  locations,
		"window_sec": int(h.locationService.Window(c.Context()).Seconds()),
	})
}

func (h *LocationHandler) Delete(c *fiber.Ctx) error {
	locationID, err := uuid.Parse(c.Params("locationId"))
	if err != nil {
		return middleware.BadRequest("Invalid location ID")
	}

	if err := h.locationService.Delete(c.Context(), locationID); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Location deleted successfully",
	})
}
