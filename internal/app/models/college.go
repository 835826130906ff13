package models

import "time"

// College is an institution offering courses
type College struct {
	ID              string        `json:"id" db:"id"`
	Name            string        `json:"name" db:"name" example:"Symbiosis Institute of Technology"`
	Code            string        `json:"code" db:"code" example:"SIT"`
	Location        string        `json:"location" db:"location" example:"Pune, Maharashtra"`
	Description     string        `json:"description" db:"description"`
	Website         string        `json:"website" db:"website"`
	Ranking         *int          `json:"ranking,omitempty" db:"ranking" example:"12"`
	EstablishedYear *int          `json:"establishedYear,omitempty" db:"established_year" example:"2008"`
	Status          AccountStatus `json:"status" db:"status" example:"active"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
}
