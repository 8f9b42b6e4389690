package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient  Role = "patient"
	RoleHospital Role = "hospital"
	RoleInsurer  Role = "insurer"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether r is one of the four platform roles.
func ValidRole(r Role) bool {
	switch r {
	case RolePatient, RoleHospital, RoleInsurer, RoleAdmin:
		return true
	}
	return false
}

// User is a platform account. Passwords are bcrypt hashes, never plaintext.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Role      Role      `gorm:"size:20;not null;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
