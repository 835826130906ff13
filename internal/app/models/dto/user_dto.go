package dto

import "github.com/yigit/agencyportal/internal/app/models"

// CreateUserRequest is an admin creating a user. For role agency without an
// agencyId, an inline agency may be supplied and is created alongside.
type CreateUserRequest struct {
	Name     string               `json:"name" binding:"required,min=2,max=120"`
	Email    string               `json:"email" binding:"required,email"`
	Password string               `json:"password" binding:"required,min=8"`
	Role     models.Role          `json:"role" binding:"required,role"`
	Status   models.AccountStatus `json:"status" binding:"omitempty,accountstatus"`
	AgencyID *string              `json:"agencyId,omitempty" binding:"omitempty,uuid"`
	Agency   *CreateAgencyRequest `json:"agency,omitempty"`
}

// UpdateUserRequest updates user details; an empty password keeps the current one
type UpdateUserRequest struct {
	Name     string      `json:"name" binding:"required,min=2,max=120"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password,omitempty" binding:"omitempty,min=8"`
	Role     models.Role `json:"role" binding:"omitempty,role"`
	AgencyID *string     `json:"agencyId,omitempty" binding:"omitempty,uuid"`
}

// UpdateStatusRequest carries an account status change for users and agencies
type UpdateStatusRequest struct {
	Status models.AccountStatus `json:"status" binding:"required,accountstatus" example:"active"`
}
