package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/donation"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/location"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/request"
)

type RequestHandler struct {
	requestService  request.Service
	donationService donation.Service
	locationService location.Service
}

func NewRequestHandler(
	requestService request.Service,
	donationService donation.Service,
	locationService location.Service,
) *RequestHandler {
	return &RequestHandler{
		requestService:  requestService,
		donationService: donationService,
		locationService: locationService,
	}
}

func (h *RequestHandler) Create(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	var input domain.CreateBloodRequestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	// Staff create for their own hospital; an explicit hospital_id is only
	// honored when the caller may act on it.
	if input.HospitalID == nil {
		input.HospitalID = user.HospitalID
	} else if !user.CanAccessHospital(*input.HospitalID) {
		return middleware.Forbidden("You do not have access to this hospital")
	}

	if !input.BloodGroup.IsValid() {
		return middleware.BadRequest("Invalid blood group")
	}
	if input.Urgency != "" && !input.Urgency.IsValid() {
		return middleware.BadRequest("Invalid urgency level")
	}

	req, err := h.requestService.Create(c.Context(), user.ID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *RequestHandler) List(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	params := getPaginationParams(c)

	var status *domain.RequestStatus
	if s := c.Query("status"); s != "" {
		st := domain.RequestStatus(s)
		if !st.IsValid() {
			return middleware.BadRequest("Invalid request status")
		}
		status = &st
	}

	var bloodGroup *domain.BloodGroup
	if bg := c.Query("blood_group"); bg != "" {
		group := domain.BloodGroup(bg)
		if !group.IsValid() {
			return middleware.BadRequest("Invalid blood group")
		}
		bloodGroup = &group
	}

	// Admins see every hospital unless they narrow the listing; everyone
	// else is pinned to their own.
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

	result, err := h.requestService.List(c.Context(), hospitalID, status, bloodGroup, params)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *RequestHandler) Get(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return middleware.BadRequest("Invalid request ID")
	}

	req, err := h.requestService.GetByID(c.Context(), requestID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *RequestHandler) Update(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return middleware.BadRequest("Invalid request ID")
	}

	if err := h.checkAccess(c, user, requestID); err != nil {
		return err
	}

	var input domain.UpdateBloodRequestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if input.Urgency != nil && !input.Urgency.IsValid() {
		return middleware.BadRequest("Invalid urgency level")
	}

	req, err := h.requestService.Update(c.Context(), requestID, user.ID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *RequestHandler) Cancel(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return middleware.BadRequest("Invalid request ID")
	}

	if err := h.checkAccess(c, user, requestID); err != nil {
		return err
	}

	req, err := h.requestService.Cancel(c.Context(), requestID, user.ID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *RequestHandler) InviteDonors(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return middleware.BadRequest("Invalid request ID")
	}

	if err := h.checkAccess(c, user, requestID); err != nil {
		return err
	}

	invited, err := h.requestService.InviteDonors(c.Context(), requestID, user.ID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Donor invitations sent",
		"invited": invited,
	})
}

func (h *RequestHandler) ListDonations(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return middleware.BadRequest("Invalid request ID")
	}

	donations, err := h.donationService.ListByRequest(c.Context(), requestID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(donations)
}

func (h *RequestHandler) ListLiveLocations(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("requestId"))
	if err != nil {
		return middleware.BadRequest("Invalid request ID")
	}

	locations, err := h.locationService.ListLiveByRequest(c.Context(), requestID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(locations)
}

// checkAccess resolves the request and verifies the caller may act on its
// hospital.
func (h *RequestHandler) checkAccess(c *fiber.Ctx, user *domain.User, requestID uuid.UUID) error {
	req, err := h.requestService.GetByID(c.Context(), requestID)
	if err != nil {
		return err
	}
	if !user.CanAccessHospital(req.HospitalID) {
		return middleware.Forbidden("You do not have access to this hospital")
	}
	return nil
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()

	return params
}
