package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResponseToken is the single-use credential embedded in a donor's SMS
// invite link. It is consumed on the first accepted location submission that
// carries it; the matching entry in the request's active token set keeps
// guarding the reservation until the request closes.
type ResponseToken struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Token     string     `json:"token" db:"token"`
	DonorID   uuid.UUID  `json:"donor_id" db:"donor_id"`
	RequestID uuid.UUID  `json:"request_id" db:"request_id"`
	IsUsed    bool       `json:"is_used" db:"is_used"`
	UsedAt    *time.Time `json:"used_at,omitempty" db:"used_at"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

func (t *ResponseToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}
