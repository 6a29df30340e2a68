package domain

import "errors"

// Fulfillment outcomes. Handlers map these to HTTP statuses; everything else
// bubbles up as a generic persistence failure.
var (
	ErrAlreadyDonated       = errors.New("donor already has a completed donation")
	ErrAlreadyProcessing    = errors.New("a confirmation for this donor is already in progress")
	ErrDonorNotFound        = errors.New("no live location found for donor")
	ErrRequestNotFound      = errors.New("blood request not found")
	ErrRequestExpired       = errors.New("blood request deadline has passed")
	ErrReservationConflict  = errors.New("reservation lost to a concurrent donation")
	ErrRequestClosed        = errors.New("blood request is no longer active")
	ErrQuantityBelowUnits   = errors.New("quantity cannot drop below confirmed units")
	ErrHospitalNotFound     = errors.New("hospital not found")
	ErrHospitalNotVerified  = errors.New("hospital is not verified")
	ErrDonorProfileNotFound = errors.New("donor profile not found")
	ErrPhoneExists          = errors.New("phone number already registered")
	ErrLocationNotFound     = errors.New("location record not found")
	ErrDonationNotFound     = errors.New("donation not found")
	ErrTokenInvalid         = errors.New("response token is invalid or expired")
	ErrTokenUsed            = errors.New("response token was already used by another donor")
	ErrDocumentNotFound     = errors.New("verification document not found")
	ErrDocumentReviewed     = errors.New("verification document already reviewed")
)

// Auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrCannotModifySelf   = errors.New("cannot modify your own account")
	ErrInvalidRole        = errors.New("invalid role")
)
