package domain

import "time"

// Runtime settings, stored as rows so ops can change them without a deploy.
const (
	SettingSMSEnabled       = "sms_enabled"              // "true"/"false"
	SettingInviteBatchLimit = "invite_batch_limit"       // max donors invited per request
	SettingFreshnessHours   = "location_freshness_hours" // live-location window
	SettingCountryCode      = "country_code"             // digits, e.g. "91"
)

type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type UpdateSettingInput struct {
	Value string `json:"value" validate:"required"`
}
