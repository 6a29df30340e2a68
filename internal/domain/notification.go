package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifDonorLocation     NotificationType = "DONOR_LOCATION"
	NotifRequestCreated    NotificationType = "REQUEST_CREATED"
	NotifRequestFulfilled  NotificationType = "REQUEST_FULFILLED"
	NotifRequestCancelled  NotificationType = "REQUEST_CANCELLED"
	NotifRequestExpired    NotificationType = "REQUEST_EXPIRED"
	NotifDonationConfirmed NotificationType = "DONATION_CONFIRMED"
	NotifDocumentReviewed  NotificationType = "DOCUMENT_REVIEWED"
)

// Notification is an ephemeral push message. It is fanned out to currently
// connected dashboard subscribers and then discarded — no persistence, no
// replay, at-most-once per connection. A nil HospitalID targets every
// subscriber.
type Notification struct {
	ID         uuid.UUID        `json:"id"`
	HospitalID *uuid.UUID       `json:"hospital_id,omitempty"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Data       json.RawMessage  `json:"data,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewNotification synthesizes an id and timestamp; producers fill the rest.
func NewNotification(hospitalID *uuid.UUID, t NotificationType, title, message string, data interface{}) Notification {
	n := Notification{
		ID:         uuid.New(),
		HospitalID: hospitalID,
		Type:       t,
		Title:      title,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			n.Data = raw
		}
	}
	return n
}
