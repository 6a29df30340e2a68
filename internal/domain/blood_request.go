package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type RequestStatus string

const (
	RequestActive    RequestStatus = "active"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestCancelled RequestStatus = "cancelled"
	RequestExpired   RequestStatus = "expired"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestActive, RequestFulfilled, RequestCancelled, RequestExpired:
		return true
	}
	return false
}

type BloodGroup string

const (
	BloodAPos  BloodGroup = "A+"
	BloodANeg  BloodGroup = "A-"
	BloodBPos  BloodGroup = "B+"
	BloodBNeg  BloodGroup = "B-"
	BloodABPos BloodGroup = "AB+"
	BloodABNeg BloodGroup = "AB-"
	BloodOPos  BloodGroup = "O+"
	BloodONeg  BloodGroup = "O-"
)

func (b BloodGroup) IsValid() bool {
	switch b {
	case BloodAPos, BloodANeg, BloodBPos, BloodBNeg, BloodABPos, BloodABNeg, BloodOPos, BloodONeg:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// BloodRequest carries the per-request ledger: confirmed_units, status and
// active_tokens are mutated only through the atomic reservation update in the
// repository (or frozen by cancel/expire, which clears tokens but never
// touches the counter).
type BloodRequest struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	HospitalID     uuid.UUID      `json:"hospital_id" db:"hospital_id"`
	BloodGroup     BloodGroup     `json:"blood_group" db:"blood_group"`
	Quantity       int            `json:"quantity" db:"quantity"`
	ConfirmedUnits int            `json:"confirmed_units" db:"confirmed_units"`
	Status         RequestStatus  `json:"status" db:"status"`
	Urgency        Urgency        `json:"urgency" db:"urgency"`
	Notes          *string        `json:"notes,omitempty" db:"notes"`
	RequiredBy     time.Time      `json:"required_by" db:"required_by"`
	ActiveTokens   pq.StringArray `json:"-" db:"active_tokens"`
	FulfilledAt    *time.Time     `json:"fulfilled_at,omitempty" db:"fulfilled_at"`
	CreatedBy      uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// IsOpen reports whether the request can still accept a reservation.
func (r *BloodRequest) IsOpen() bool {
	return r.Status == RequestActive && r.ConfirmedUnits < r.Quantity
}

func (r *BloodRequest) IsOverdue(now time.Time) bool {
	return r.Status == RequestActive && r.RequiredBy.Before(now)
}

func (r *BloodRequest) UnitsLeft() int {
	left := r.Quantity - r.ConfirmedUnits
	if left < 0 {
		return 0
	}
	return left
}

type CreateBloodRequestInput struct {
	HospitalID *uuid.UUID `json:"hospital_id" validate:"omitempty"`
	BloodGroup BloodGroup `json:"blood_group" validate:"required"`
	Quantity   int        `json:"quantity" validate:"required,min=1,max=50"`
	Urgency    Urgency    `json:"urgency" validate:"omitempty"`
	RequiredBy time.Time  `json:"required_by" validate:"required"`
	Notes      *string    `json:"notes,omitempty"`
}

type UpdateBloodRequestInput struct {
	Quantity   *int           `json:"quantity,omitempty" validate:"omitempty,min=1,max=50"`
	Urgency    *Urgency       `json:"urgency,omitempty"`
	RequiredBy *time.Time     `json:"required_by,omitempty"`
	Notes      NullableString `json:"notes"`
}

// ReservationResult is what the atomic conditional update hands back. A
// non-applied result means the guard failed: the request closed, the quota
// was consumed concurrently, or the token was not among the active set.
type ReservationResult struct {
	Applied        bool
	ConfirmedUnits int
	Status         RequestStatus
}
