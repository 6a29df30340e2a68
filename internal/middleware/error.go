package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler is the app-level error handler. Domain sentinels returned by
// services map to their HTTP status here, so handlers can return them as-is.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	errorCode := "INTERNAL_ERROR"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else if status, ok := statusForDomainError(err); ok {
		code = status
		message = err.Error()
	}

	switch code {
	case fiber.StatusBadRequest:
		errorCode = "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		errorCode = "UNAUTHORIZED"
	case fiber.StatusForbidden:
		errorCode = "FORBIDDEN"
	case fiber.StatusNotFound:
		errorCode = "NOT_FOUND"
	case fiber.StatusConflict:
		errorCode = "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		errorCode = "VALIDATION_ERROR"
	}

	traceID := uuid.New().String()[:8]

	return c.Status(code).JSON(ErrorResponse{
		Code:    errorCode,
		Message: message,
		TraceID: traceID,
	})
}

func statusForDomainError(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrHospitalNotFound),
		errors.Is(err, domain.ErrDonorNotFound),
		errors.Is(err, domain.ErrDonorProfileNotFound),
		errors.Is(err, domain.ErrLocationNotFound),
		errors.Is(err, domain.ErrDonationNotFound),
		errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound, true

	case errors.Is(err, domain.ErrAlreadyDonated),
		errors.Is(err, domain.ErrAlreadyProcessing),
		errors.Is(err, domain.ErrReservationConflict),
		errors.Is(err, domain.ErrRequestClosed),
		errors.Is(err, domain.ErrRequestExpired),
		errors.Is(err, domain.ErrTokenUsed),
		errors.Is(err, domain.ErrDocumentReviewed),
		errors.Is(err, domain.ErrPhoneExists),
		errors.Is(err, domain.ErrEmailExists):
		return fiber.StatusConflict, true

	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		return fiber.StatusUnauthorized, true

	case errors.Is(err, domain.ErrHospitalNotVerified),
		errors.Is(err, domain.ErrEmailNotVerified),
		errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, true

	case errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrQuantityBelowUnits),
		errors.Is(err, domain.ErrCannotModifySelf),
		errors.Is(err, domain.ErrInvalidRole):
		return fiber.StatusBadRequest, true
	}

	return 0, false
}

func NewError(code int, message string) *fiber.Error {
	return fiber.NewError(code, message)
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}

func NotFound(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusNotFound, message)
}

func Conflict(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusConflict, message)
}
