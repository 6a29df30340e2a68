package domain

import (
	"time"

	"github.com/google/uuid"
)

type DonationStatus string

const (
	DonationAccepted  DonationStatus = "accepted"
	DonationCompleted DonationStatus = "completed"
)

// Donation is the write-once history record created by a successful
// fulfillment. The only permitted mutation is the accepted→completed status
// promotion.
type Donation struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	DonorID     *uuid.UUID     `json:"donor_id,omitempty" db:"donor_id"`
	DonorName   string         `json:"donor_name" db:"donor_name"`
	Phone       string         `json:"phone" db:"phone"`
	BloodGroup  BloodGroup     `json:"blood_group" db:"blood_group"`
	RequestID   uuid.UUID      `json:"request_id" db:"request_id"`
	HospitalID  uuid.UUID      `json:"hospital_id" db:"hospital_id"`
	Status      DonationStatus `json:"status" db:"status"`
	Latitude    *float64       `json:"latitude,omitempty" db:"latitude"`
	Longitude   *float64       `json:"longitude,omitempty" db:"longitude"`
	Address     *string        `json:"address,omitempty" db:"address"`
	ConfirmedBy uuid.UUID      `json:"confirmed_by" db:"confirmed_by"`
	DonatedAt   time.Time      `json:"donated_at" db:"donated_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

type ConfirmDonationInput struct {
	// DonorKey is a stable donor id (uuid) or a phone number.
	DonorKey    string     `json:"donor_key" validate:"required"`
	RequestID   *uuid.UUID `json:"request_id,omitempty"`
	ConfirmedBy uuid.UUID  `json:"-"`
	IPAddress   *string    `json:"-"`
	UserAgent   *string    `json:"-"`
}

// DonationReceipt is the caller-facing result of a confirmed donation.
type DonationReceipt struct {
	DonationID     uuid.UUID     `json:"donation_id"`
	DonorName      string        `json:"donor_name"`
	BloodGroup     BloodGroup    `json:"blood_group"`
	RequestID      uuid.UUID     `json:"request_id"`
	HospitalID     uuid.UUID     `json:"hospital_id"`
	ConfirmedUnits int           `json:"confirmed_units"`
	RequestStatus  RequestStatus `json:"request_status"`
	CompletedAt    time.Time     `json:"completed_at"`
}
