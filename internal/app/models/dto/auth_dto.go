package dto

import (
	"time"

	"github.com/yigit/agencyportal/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@agencyportal.local"`
	Password string `json:"password" binding:"required" example:"changeme123"`
}

// RegisterAgencyRequest is an agency self-signup. The agency and its user start as pending.
type RegisterAgencyRequest struct {
	AgencyName    string `json:"agencyName" binding:"required,min=2,max=200"`
	ContactPerson string `json:"contactPerson" binding:"required,max=120"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	Phone         string `json:"phone" binding:"omitempty,max=40"`
	Address       string `json:"address" binding:"omitempty,max=500"`
	City          string `json:"city" binding:"omitempty,max=120"`
	Country       string `json:"country" binding:"omitempty,max=120"`
}

// SessionUser is the identity carried in the session cookie
type SessionUser struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role" example:"agency"`
	AgencyID string      `json:"agencyId,omitempty"`
}

// SessionResponse is returned by login and session lookups
type SessionResponse struct {
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}
