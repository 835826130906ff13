package models

import (
	"math"
	"time"
)

// DocumentFlag tracks upload/request state of one document type on a payment
type DocumentFlag struct {
	Uploaded    bool       `json:"uploaded"`
	Requested   bool       `json:"requested"`
	UploadedAt  *time.Time `json:"uploadedAt,omitempty"`
	RequestedAt *time.Time `json:"requestedAt,omitempty"`
}

// DocumentFlags is keyed by normalised document type and stored as JSONB
type DocumentFlags map[string]DocumentFlag

// Payment is derived 1:1 from an Application and tracks commission settlement
type Payment struct {
	ID               string        `json:"id" db:"id"`
	ApplicationID    string        `json:"applicationId" db:"application_id"`
	AgencyID         string        `json:"agencyId" db:"agency_id"`
	CollegeID        string        `json:"collegeId" db:"college_id"`
	CourseID         string        `json:"courseId" db:"course_id"`
	StudentName      string        `json:"studentName" db:"student_name"`
	Fee              float64       `json:"fee" db:"fee" example:"250000"`
	CommissionRate   float64       `json:"commissionRate" db:"commission_rate" example:"10"`
	CommissionAmount float64       `json:"commissionAmount" db:"commission_amount" example:"25000"`
	AmountPaid       float64       `json:"amountPaid" db:"amount_paid" example:"0"`
	PaymentStatus    PaymentStatus `json:"paymentStatus" db:"payment_status" example:"pending"`
	LeadStatus       LeadStatus    `json:"leadStatus" db:"lead_status" example:"applied"`
	Documents        DocumentFlags `json:"documents" db:"documents"`
	PaidAt           *time.Time    `json:"paidAt,omitempty" db:"paid_at"`
	Notes            string        `json:"notes" db:"notes"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`

	AgencyName string `json:"agencyName,omitempty" db:"-"`
}

// CalculateCommission returns fee * rate / 100 rounded to two decimals
func CalculateCommission(fee, rate float64) float64 {
	return math.Round(fee*rate) / 100
}

// NewPaymentForApplication derives the initial payment record for an application
func NewPaymentForApplication(app *Application, commissionRate float64) *Payment {
	return &Payment{
		ApplicationID:    app.ID,
		AgencyID:         app.AgencyID,
		CollegeID:        app.CollegeID,
		CourseID:         app.CourseID,
		StudentName:      app.StudentName,
		Fee:              app.Fee,
		CommissionRate:   commissionRate,
		CommissionAmount: CalculateCommission(app.Fee, commissionRate),
		PaymentStatus:    PaymentPending,
		LeadStatus:       LeadApplied,
		Documents:        DocumentFlags{},
	}
}

// ApplyAmountPaid sets the paid amount and derives the payment status from it.
// Paying at least the fee settles the payment.
func (p *Payment) ApplyAmountPaid(amount float64, now time.Time) {
	p.AmountPaid = amount
	switch {
	case amount <= 0:
		if p.PaymentStatus != PaymentCancelled {
			p.PaymentStatus = PaymentPending
		}
		p.PaidAt = nil
	case amount >= p.Fee:
		p.PaymentStatus = PaymentPaid
		if p.PaidAt == nil {
			p.PaidAt = &now
		}
	default:
		p.PaymentStatus = PaymentPartial
		p.PaidAt = nil
	}
}

// MarkDocumentUploaded flips the uploaded flag for a document type
func (p *Payment) MarkDocumentUploaded(docType string, now time.Time) {
	if p.Documents == nil {
		p.Documents = DocumentFlags{}
	}
	flag := p.Documents[docType]
	flag.Uploaded = true
	flag.UploadedAt = &now
	p.Documents[docType] = flag
}

// MarkDocumentRequested flips the requested flag for a document type
func (p *Payment) MarkDocumentRequested(docType string, now time.Time) {
	if p.Documents == nil {
		p.Documents = DocumentFlags{}
	}
	flag := p.Documents[docType]
	flag.Requested = true
	flag.RequestedAt = &now
	p.Documents[docType] = flag
}
