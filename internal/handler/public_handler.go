package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/location"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/request"
)

// PublicHandler serves the unauthenticated surface: the open demand board
// and the invite-link respond page.
type PublicHandler struct {
	requestService  request.Service
	locationService location.Service
}

func NewPublicHandler(
	requestService request.Service,
	locationService location.Service,
) *PublicHandler {
	return &PublicHandler{
		requestService:  requestService,
		locationService: locationService,
	}
}

// ListActiveRequests is the public demand board: every open request across
// hospitals, so donors can see where blood is needed.
func (h *PublicHandler) ListActiveRequests(c *fiber.Ctx) error {
	params := getPaginationParams(c)

	var bloodGroup *domain.BloodGroup
	if bg := c.Query("blood_group"); bg != "" {
		group := domain.BloodGroup(bg)
		if !group.IsValid() {
			return middleware.BadRequest("Invalid blood group")
		}
		bloodGroup = &group
	}

	status := domain.RequestActive
	result, err := h.requestService.List(c.Context(), nil, &status, bloodGroup, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// GetRespondContext prefills the respond page behind an invite link.
func (h *PublicHandler) GetRespondContext(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return middleware.BadRequest("Response token is required")
	}

	rc, err := h.requestService.RespondContext(c.Context(), token)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(rc)
}
