package dto

import "github.com/yigit/agencyportal/internal/app/models"

// CreateAgencyRequest represents agency data submitted by an admin
type CreateAgencyRequest struct {
	Name           string               `json:"name" binding:"required,min=2,max=200"`
	Email          string               `json:"email" binding:"required,email"`
	Phone          string               `json:"phone" binding:"omitempty,max=40"`
	Address        string               `json:"address" binding:"omitempty,max=500"`
	City           string               `json:"city" binding:"omitempty,max=120"`
	Country        string               `json:"country" binding:"omitempty,max=120"`
	ContactPerson  string               `json:"contactPerson" binding:"omitempty,max=120"`
	CommissionRate *float64             `json:"commissionRate,omitempty" binding:"omitempty,gte=0,lte=100"`
	Status         models.AccountStatus `json:"status" binding:"omitempty,accountstatus"`
}

// UpdateAgencyRequest is the admin edit form; commission changes trigger recalculation
type UpdateAgencyRequest = CreateAgencyRequest

// UpdateAgencyProfileRequest is what an agency may change about itself
type UpdateAgencyProfileRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=200"`
	Phone         string `json:"phone" binding:"omitempty,max=40"`
	Address       string `json:"address" binding:"omitempty,max=500"`
	City          string `json:"city" binding:"omitempty,max=120"`
	Country       string `json:"country" binding:"omitempty,max=120"`
	ContactPerson string `json:"contactPerson" binding:"omitempty,max=120"`
}

// ToModel converts the request into an Agency
func (r *CreateAgencyRequest) ToModel(defaultRate float64) *models.Agency {
	rate := defaultRate
	if r.CommissionRate != nil {
		rate = *r.CommissionRate
	}
	return &models.Agency{
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		City:           r.City,
		Country:        r.Country,
		ContactPerson:  r.ContactPerson,
		CommissionRate: rate,
		Status:         r.Status,
	}
}
