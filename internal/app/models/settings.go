package models

import "time"

// BankDetails are shown to agencies for offline transfers
type BankDetails struct {
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	Branch        string `json:"branch"`
	IFSC          string `json:"ifsc"`
	Swift         string `json:"swift"`
	UPIID         string `json:"upiId"`
}

// EscalationContact is one tier of the support escalation matrix
type EscalationContact struct {
	Level       int    `json:"level" example:"1"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// PaymentGateway holds gateway configuration; it is only stored, never called
type PaymentGateway struct {
	Provider  string `json:"provider" example:"razorpay"`
	KeyID     string `json:"keyId"`
	KeySecret string `json:"keySecret"`
	Mode      string `json:"mode" example:"test"`
	Enabled   bool   `json:"enabled"`
}

// Settings is the singleton portal configuration row
type Settings struct {
	BankDetails      BankDetails         `json:"bankDetails" db:"bank_details"`
	EscalationMatrix []EscalationContact `json:"escalationMatrix" db:"escalation_matrix"`
	PaymentGateway   PaymentGateway      `json:"paymentGateway" db:"payment_gateway"`
	UpdatedAt        time.Time           `json:"updatedAt" db:"updated_at"`
}
