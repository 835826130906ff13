package models

import "time"

// Course belongs to a College
type Course struct {
	ID          string        `json:"id" db:"id"`
	CollegeID   string        `json:"collegeId" db:"college_id"`
	Name        string        `json:"name" db:"name" example:"B.Tech Computer Science"`
	Level       string        `json:"level" db:"level" example:"undergraduate"`
	Duration    string        `json:"duration" db:"duration" example:"4 years"`
	Fee         float64       `json:"fee" db:"fee" example:"250000"`
	Sessions    []string      `json:"sessions" db:"sessions" example:"2025-26"`
	Streams     []string      `json:"streams" db:"streams" example:"Science"`
	Eligibility string        `json:"eligibility" db:"eligibility"`
	Status      AccountStatus `json:"status" db:"status" example:"active"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}
