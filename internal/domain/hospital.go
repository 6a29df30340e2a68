package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalkInHospitalName is the seeded placeholder hospital the walk-in
// fulfillment policy attaches fabricated requests to.
const WalkInHospitalName = "Walk-in / Unassigned"

type Hospital struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Address    *string    `json:"address,omitempty" db:"address"`
	City       *string    `json:"city,omitempty" db:"city"`
	Phone      *string    `json:"phone,omitempty" db:"phone"`
	Email      *string    `json:"email,omitempty" db:"email"`
	IsVerified bool       `json:"is_verified" db:"is_verified"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time `json:"-" db:"deleted_at"`
}

type CreateHospitalInput struct {
	Name    string  `json:"name" validate:"required,min=3"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
}

type UpdateHospitalInput struct {
	Name    *string        `json:"name,omitempty" validate:"omitempty,min=3"`
	Address NullableString `json:"address"`
	City    NullableString `json:"city"`
	Phone   NullableString `json:"phone"`
	Email   NullableString `json:"email"`
}
