package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID          string        `json:"id" db:"id" example:"6f1c1f2e-8f1e-4c55-a0d4-8a1f6f0c2b11"`
	Name        string        `json:"name" db:"name" example:"Priya Sharma"`
	Email       string        `json:"email" db:"email" example:"priya@globaledu.in"`
	Password    string        `json:"-" db:"password"` // bcrypt hash
	Role        Role          `json:"role" db:"role" example:"agency"`
	Status      AccountStatus `json:"status" db:"status" example:"active"`
	AgencyID    *string       `json:"agencyId,omitempty" db:"agency_id"`
	LastLoginAt *time.Time    `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}

// IsActive reports whether the user may log in
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// AgencyIDValue returns the linked agency id or an empty string
func (u *User) AgencyIDValue() string {
	if u.AgencyID == nil {
		return ""
	}
	return *u.AgencyID
}
