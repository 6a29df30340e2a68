package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// directSentinel is the legacy wire value kiosks send in place of a response
// token. It is parsed once at the boundary; everything past that works with
// the tagged SubmissionToken type.
const directSentinel = "direct"

// SubmissionToken is either a single-use response token or the "direct"
// marker for kiosk/staff submissions that bypass token validation. An empty
// token string is kept as a tokenized value so it can never match the active
// token set — absence of a token must not grant the direct bypass.
type SubmissionToken struct {
	token  string
	direct bool
}

func DirectSubmission() SubmissionToken {
	return SubmissionToken{direct: true}
}

func TokenizedSubmission(token string) SubmissionToken {
	return SubmissionToken{token: token}
}

func ParseSubmissionToken(raw string) SubmissionToken {
	if strings.EqualFold(strings.TrimSpace(raw), directSentinel) {
		return DirectSubmission()
	}
	return TokenizedSubmission(strings.TrimSpace(raw))
}

func (t SubmissionToken) IsDirect() bool { return t.direct }

// Token returns the response token string; empty for direct submissions.
func (t SubmissionToken) Token() string {
	if t.direct {
		return ""
	}
	return t.token
}

func (t SubmissionToken) String() string {
	if t.direct {
		return directSentinel
	}
	return t.token
}

func (t SubmissionToken) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *SubmissionToken) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TokenizedSubmission("")
	case string:
		*t = ParseSubmissionToken(v)
	case []byte:
		*t = ParseSubmissionToken(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SubmissionToken", src)
	}
	return nil
}

func (t SubmissionToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *SubmissionToken) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseSubmissionToken(s)
	return nil
}

// DonorLocation is one live-position submission. Rows are appended per
// submission; read paths take the newest row inside the freshness window and
// a successful fulfillment deletes the donor's rows outright.
type DonorLocation struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	DonorID    *uuid.UUID      `json:"donor_id,omitempty" db:"donor_id"`
	DonorName  string          `json:"donor_name" db:"donor_name"`
	Phone      string          `json:"phone" db:"phone"`
	Latitude   float64         `json:"latitude" db:"latitude"`
	Longitude  float64         `json:"longitude" db:"longitude"`
	Address    *string         `json:"address,omitempty" db:"address"`
	RequestID  *uuid.UUID      `json:"request_id,omitempty" db:"request_id"`
	Token      SubmissionToken `json:"token" db:"token"`
	RecordedAt *time.Time      `json:"recorded_at,omitempty" db:"recorded_at"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// EffectiveTime is the timestamp the freshness window is measured against:
// the client-reported fix time when present, otherwise the insert time.
func (l *DonorLocation) EffectiveTime() time.Time {
	if l.RecordedAt != nil {
		return *l.RecordedAt
	}
	return l.CreatedAt
}

type SubmitLocationInput struct {
	DonorName  string     `json:"donor_name" validate:"required,min=2"`
	Phone      string     `json:"phone" validate:"required,min=7"`
	Latitude   float64    `json:"latitude" validate:"required"`
	Longitude  float64    `json:"longitude" validate:"required"`
	Address    *string    `json:"address,omitempty"`
	RequestID  *uuid.UUID `json:"request_id,omitempty"`
	Token      string     `json:"token" validate:"required"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// LocationExpiry is display metadata for a live entry: how long until it
// drops out of the freshness window.
type LocationExpiry struct {
	LocationID   uuid.UUID `json:"location_id"`
	MinutesLeft  int       `json:"minutes_left"`
	SecondsLeft  int       `json:"seconds_left"`
	ExpiringSoon bool      `json:"expiring_soon"`
	Expired      bool      `json:"expired"`
}
