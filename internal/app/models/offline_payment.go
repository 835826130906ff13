package models

import "time"

// OfflinePayment is an agency-submitted bank transfer proof
type OfflinePayment struct {
	ID          string               `json:"id" db:"id"`
	AgencyID    string               `json:"agencyId" db:"agency_id"`
	Amount      float64              `json:"amount" db:"amount" example:"50000"`
	Currency    string               `json:"currency" db:"currency" example:"INR"`
	Reference   string               `json:"reference" db:"reference" example:"UTR123456789"`
	BankName    string               `json:"bankName" db:"bank_name" example:"HDFC Bank"`
	PaymentDate time.Time            `json:"paymentDate" db:"payment_date"`
	ProofPath   string               `json:"proofPath,omitempty" db:"proof_path"`
	ProofName   string               `json:"proofName,omitempty" db:"proof_name"`
	Status      OfflinePaymentStatus `json:"status" db:"status" example:"pending"`
	Remarks     string               `json:"remarks" db:"remarks"`
	ReviewedBy  *string              `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt  *time.Time           `json:"reviewedAt,omitempty" db:"reviewed_at"`
	CreatedAt   time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time            `json:"updatedAt" db:"updated_at"`

	AgencyName string `json:"agencyName,omitempty" db:"-"`
}
