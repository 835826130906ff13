package models

import "time"

// Application is a student's admission submission for one college/course, filed by an agency
type Application struct {
	ID            string            `json:"id" db:"id"`
	StudentName   string            `json:"studentName" db:"student_name" example:"Rahul Verma"`
	StudentEmail  string            `json:"studentEmail" db:"student_email" example:"rahul@example.com"`
	StudentPhone  string            `json:"studentPhone" db:"student_phone"`
	DateOfBirth   string            `json:"dateOfBirth" db:"date_of_birth" example:"2006-04-12"`
	Nationality   string            `json:"nationality" db:"nationality" example:"Indian"`
	Address       string            `json:"address" db:"address"`
	Qualification string            `json:"qualification" db:"qualification" example:"12th Science"`
	Session       string            `json:"session" db:"session" example:"2025-26"`
	Stream        string            `json:"stream" db:"stream" example:"Science"`
	AgencyID      string            `json:"agencyId" db:"agency_id"`
	CollegeID     string            `json:"collegeId" db:"college_id"`
	CourseID      string            `json:"courseId" db:"course_id"`
	Fee           float64           `json:"fee" db:"fee" example:"250000"` // snapshot of the course fee
	Status        ApplicationStatus `json:"status" db:"status" example:"pending"`
	Remarks       string            `json:"remarks" db:"remarks"`
	CreatedBy     string            `json:"createdBy" db:"created_by"`
	CreatedAt     time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time         `json:"updatedAt" db:"updated_at"`

	// Filled by list queries through joins
	AgencyName  string `json:"agencyName,omitempty" db:"-"`
	CollegeName string `json:"collegeName,omitempty" db:"-"`
	CourseName  string `json:"courseName,omitempty" db:"-"`
}

// IsEditable reports whether an agency may still change or withdraw the application
func (a *Application) IsEditable() bool {
	return a.Status == ApplicationPending
}
