package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a staff account. Hospital staff and hospital admins belong to one
// hospital; platform admins have no hospital linkage.
type User struct {
	ID                      uuid.UUID  `json:"id" db:"id"`
	HospitalID              *uuid.UUID `json:"hospital_id,omitempty" db:"hospital_id"`
	Email                   string     `json:"email" db:"email"`
	PasswordHash            string     `json:"-" db:"password_hash"`
	FullName                string     `json:"full_name" db:"full_name"`
	Phone                   *string    `json:"phone,omitempty" db:"phone"`
	Role                    string     `json:"role" db:"role"`
	IsActive                bool       `json:"is_active" db:"is_active"`
	IsEmailVerified         bool       `json:"is_email_verified" db:"is_email_verified"`
	EmailVerificationToken  *string    `json:"-" db:"email_verification_token"`
	EmailVerificationSentAt *time.Time `json:"-" db:"email_verification_sent_at"`
	PasswordResetToken      *string    `json:"-" db:"password_reset_token"`
	PasswordResetExpiresAt  *time.Time `json:"-" db:"password_reset_expires_at"`
	CreatedAt               time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt               *time.Time `json:"-" db:"deleted_at"`
}

type CreateUserInput struct {
	Email      string     `json:"email" validate:"required,email"`
	Password   string     `json:"password" validate:"required,min=8"`
	FullName   string     `json:"full_name" validate:"required,min=2"`
	Phone      *string    `json:"phone,omitempty"`
	HospitalID *uuid.UUID `json:"hospital_id,omitempty"`
	Role       string     `json:"role" validate:"omitempty,oneof=staff hospital_admin admin"`
}

type UpdateUserInput struct {
	FullName *string        `json:"full_name,omitempty" validate:"omitempty,min=2"`
	Email    *string        `json:"email,omitempty" validate:"omitempty,email"`
	Password *string        `json:"password,omitempty" validate:"omitempty,min=8"`
	Phone    NullableString `json:"phone"`
}

type AssignRoleInput struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=staff hospital_admin admin"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserRole string

const (
	RoleStaff         UserRole = "staff"
	RoleHospitalAdmin UserRole = "hospital_admin"
	RoleAdmin         UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleStaff, RoleHospitalAdmin, RoleAdmin:
		return true
	default:
		return false
	}
}

// HasRole reports whether the user satisfies the required role, with admin
// implying hospital_admin implying staff.
func (u *User) HasRole(requiredRole string) bool {
	switch requiredRole {
	case "admin":
		return u.Role == "admin"
	case "hospital_admin":
		return u.Role == "hospital_admin" || u.Role == "admin"
	case "staff":
		return u.Role == "staff" || u.Role == "hospital_admin" || u.Role == "admin"
	default:
		return false
	}
}

// CanAccessHospital reports whether the user may act on the given hospital's
// resources. Admins may act on any hospital.
func (u *User) CanAccessHospital(hospitalID uuid.UUID) bool {
	if u.Role == string(RoleAdmin) {
		return true
	}
	return u.HospitalID != nil && *u.HospitalID == hospitalID
}
