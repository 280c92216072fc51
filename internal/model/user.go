package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the fixed set of user roles
type Role string

const (
	RoleAdmin        Role = "Admin"
	RoleDoctor       Role = "Doctor"
	RoleNurse        Role = "Nurse"
	RoleReceptionist Role = "Receptionist"
	RolePatient      Role = "Patient"
	RolePharmacist   Role = "Pharmacist"
)

var Roles = []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist, RolePatient, RolePharmacist}

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents a system user. Users are deactivated, never deleted.
type User struct {
	Base
	Name                string     `json:"name" db:"name"`
	Email               string     `json:"email" db:"email"`
	PasswordHash        string     `json:"-" db:"password_hash"`
	Role                Role       `json:"role" db:"role"`
	Phone               *string    `json:"phone,omitempty" db:"phone"`
	Address             *string    `json:"address,omitempty" db:"address"`
	IsActive            bool       `json:"is_active" db:"is_active"`
	ResetPasswordToken  *string    `json:"-" db:"reset_password_token"`
	ResetPasswordExpire *time.Time `json:"-" db:"reset_password_expire"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// NormalizeEmail lower-cases and trims an address before storage or lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ClearResetToken makes a consumed reset token unusable
func (u *User) ClearResetToken() {
	u.ResetPasswordToken = nil
	u.ResetPasswordExpire = nil
}

// UserFilter represents user search parameters
type UserFilter struct {
	Pagination
	Role     Role   `form:"role"`
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2"`
	Role     *Role   `json:"role" binding:"omitempty,oneof=Admin Doctor Nurse Receptionist Patient Pharmacist"`
	IsActive *bool   `json:"is_active"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// UserRef is the minimal caller identity handed from the HTTP layer to services
type UserRef struct {
	ID    uuid.UUID
	Role  Role
	Email string
}
