package dto

import "github.com/yigit/agencyportal/internal/app/models"

// ApplicationRequest represents student application data
type ApplicationRequest struct {
	StudentName   string `json:"studentName" binding:"required,min=2,max=120"`
	StudentEmail  string `json:"studentEmail" binding:"required,email"`
	StudentPhone  string `json:"studentPhone" binding:"omitempty,max=40"`
	DateOfBirth   string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Nationality   string `json:"nationality" binding:"omitempty,max=80"`
	Address       string `json:"address" binding:"omitempty,max=500"`
	Qualification string `json:"qualification" binding:"omitempty,max=200"`
	Session       string `json:"session" binding:"omitempty,max=40"`
	Stream        string `json:"stream" binding:"omitempty,max=80"`
	CollegeID     string `json:"collegeId" binding:"required,uuid"`
	CourseID      string `json:"courseId" binding:"required,uuid"`
	Remarks       string `json:"remarks" binding:"omitempty,max=2000"`
}

// ToModel converts the request into an Application
func (r *ApplicationRequest) ToModel() *models.Application {
	return &models.Application{
		StudentName:   r.StudentName,
		StudentEmail:  r.StudentEmail,
		StudentPhone:  r.StudentPhone,
		DateOfBirth:   r.DateOfBirth,
		Nationality:   r.Nationality,
		Address:       r.Address,
		Qualification: r.Qualification,
		Session:       r.Session,
		Stream:        r.Stream,
		CollegeID:     r.CollegeID,
		CourseID:      r.CourseID,
		Remarks:       r.Remarks,
	}
}

// UpdateApplicationStatusRequest is an admin decision on an application
type UpdateApplicationStatusRequest struct {
	Status  models.ApplicationStatus `json:"status" binding:"required,appstatus" example:"approved"`
	Remarks string                   `json:"remarks" binding:"omitempty,max=2000"`
}
