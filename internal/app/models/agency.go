package models

import "time"

// Agency is a tenant organization submitting applications and earning commission
type Agency struct {
	ID             string        `json:"id" db:"id"`
	Name           string        `json:"name" db:"name" example:"Global Edu Consultants"`
	Email          string        `json:"email" db:"email" example:"contact@globaledu.in"`
	Phone          string        `json:"phone" db:"phone" example:"+91 98765 43210"`
	Address        string        `json:"address" db:"address"`
	City           string        `json:"city" db:"city" example:"Pune"`
	Country        string        `json:"country" db:"country" example:"India"`
	ContactPerson  string        `json:"contactPerson" db:"contact_person"`
	CommissionRate float64       `json:"commissionRate" db:"commission_rate" example:"10"` // percent, 0-100
	Status         AccountStatus `json:"status" db:"status" example:"active"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}
