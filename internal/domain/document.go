package domain

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// VerificationDocument is an operating-licence or accreditation file a
// hospital uploads during onboarding. The binary lives in object storage;
// this row tracks it. A hospital is verified once an admin approves one.
type VerificationDocument struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	HospitalID  uuid.UUID      `json:"hospital_id" db:"hospital_id"`
	UploadedBy  uuid.UUID      `json:"uploaded_by" db:"uploaded_by"`
	FileName    string         `json:"file_name" db:"file_name"`
	FileSize    int64          `json:"file_size" db:"file_size"`
	MimeType    string         `json:"mime_type" db:"mime_type"`
	StoragePath string         `json:"-" db:"storage_path"`
	Status      DocumentStatus `json:"status" db:"status"`
	ReviewedBy  *uuid.UUID     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt  *time.Time     `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`

	URL string `json:"url,omitempty" db:"-"`
}
