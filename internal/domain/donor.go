package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Donor struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	FullName       string     `json:"full_name" db:"full_name"`
	Phone          string     `json:"phone" db:"phone"`
	BloodGroup     BloodGroup `json:"blood_group" db:"blood_group"`
	Email          *string    `json:"email,omitempty" db:"email"`
	City           *string    `json:"city,omitempty" db:"city"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	LastDonationAt *time.Time `json:"last_donation_at,omitempty" db:"last_donation_at"`
	IsAvailable    bool       `json:"is_available" db:"is_available"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time `json:"-" db:"deleted_at"`
}

type CreateDonorInput struct {
	FullName    string     `json:"full_name" validate:"required,min=2"`
	Phone       string     `json:"phone" validate:"required,min=7"`
	BloodGroup  BloodGroup `json:"blood_group" validate:"required"`
	Email       *string    `json:"email,omitempty" validate:"omitempty,email"`
	City        *string    `json:"city,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

type UpdateDonorInput struct {
	FullName    *string        `json:"full_name,omitempty" validate:"omitempty,min=2"`
	Phone       *string        `json:"phone,omitempty" validate:"omitempty,min=7"`
	BloodGroup  *BloodGroup    `json:"blood_group,omitempty"`
	Email       NullableString `json:"email"`
	City        NullableString `json:"city"`
	IsAvailable *bool          `json:"is_available,omitempty"`
}

// NormalizePhone strips everything but digits so that "+91 98765-43210" and
// "9876543210" compare against the same key.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneVariants returns the normalized digit strings a phone number may have
// been stored under: as submitted, with the country code prefixed, and with
// the country code stripped. countryCode is digits only (e.g. "91").
func PhoneVariants(raw, countryCode string) []string {
	digits := NormalizePhone(raw)
	if digits == "" {
		return nil
	}

	variants := []string{digits}
	seen := map[string]bool{digits: true}

	add := func(v string) {
		if v != "" && !seen[v] {
			variants = append(variants, v)
			seen[v] = true
		}
	}

	if countryCode != "" {
		if !strings.HasPrefix(digits, countryCode) {
			add(countryCode + digits)
		}
		if strings.HasPrefix(digits, countryCode) && len(digits) > len(countryCode) {
			add(strings.TrimPrefix(digits, countryCode))
		}
	}

	return variants
}
