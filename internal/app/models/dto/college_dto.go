package dto

import "github.com/yigit/agencyportal/internal/app/models"

// CollegeRequest is used for create and update
type CollegeRequest struct {
	Name            string               `json:"name" binding:"required,min=2,max=200"`
	Code            string               `json:"code" binding:"omitempty,max=20"`
	Location        string               `json:"location" binding:"omitempty,max=200"`
	Description     string               `json:"description" binding:"omitempty,max=5000"`
	Website         string               `json:"website" binding:"omitempty,url"`
	Ranking         *int                 `json:"ranking,omitempty" binding:"omitempty,gte=1"`
	EstablishedYear *int                 `json:"establishedYear,omitempty" binding:"omitempty,gte=1800,lte=2100"`
	Status          models.AccountStatus `json:"status" binding:"omitempty,accountstatus"`
}

// ToModel converts the request into a College
func (r *CollegeRequest) ToModel() *models.College {
	return &models.College{
		Name:            r.Name,
		Code:            r.Code,
		Location:        r.Location,
		Description:     r.Description,
		Website:         r.Website,
		Ranking:         r.Ranking,
		EstablishedYear: r.EstablishedYear,
		Status:          r.Status,
	}
}

// CourseRequest is used for create and update
type CourseRequest struct {
	CollegeID   string               `json:"collegeId" binding:"required,uuid"`
	Name        string               `json:"name" binding:"required,min=2,max=200"`
	Level       string               `json:"level" binding:"omitempty,max=60"`
	Duration    string               `json:"duration" binding:"omitempty,max=60"`
	Fee         float64              `json:"fee" binding:"gte=0"`
	Sessions    []string             `json:"sessions"`
	Streams     []string             `json:"streams"`
	Eligibility string               `json:"eligibility" binding:"omitempty,max=2000"`
	Status      models.AccountStatus `json:"status" binding:"omitempty,accountstatus"`
}

// ToModel converts the request into a Course
func (r *CourseRequest) ToModel() *models.Course {
	sessions, streams := r.Sessions, r.Streams
	if sessions == nil {
		sessions = []string{}
	}
	if streams == nil {
		streams = []string{}
	}
	return &models.Course{
		CollegeID:   r.CollegeID,
		Name:        r.Name,
		Level:       r.Level,
		Duration:    r.Duration,
		Fee:         r.Fee,
		Sessions:    sessions,
		Streams:     streams,
		Eligibility: r.Eligibility,
		Status:      r.Status,
	}
}
