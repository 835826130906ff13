package dto

import "github.com/yigit/agencyportal/internal/app/models"

// UpdatePaymentRequest is an admin edit; nil fields are left unchanged
type UpdatePaymentRequest struct {
	AmountPaid    *float64              `json:"amountPaid,omitempty" binding:"omitempty,gte=0"`
	Notes         *string               `json:"notes,omitempty" binding:"omitempty,max=2000"`
	PaymentStatus *models.PaymentStatus `json:"paymentStatus,omitempty" binding:"omitempty,paymentstatus"`
}

// UpdatePaymentStatusRequest sets the payment status directly
type UpdatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"paymentStatus" binding:"required,paymentstatus" example:"paid"`
}

// UpdateLeadStatusRequest moves the agency pipeline stage
type UpdateLeadStatusRequest struct {
	LeadStatus models.LeadStatus `json:"leadStatus" binding:"required,leadstatus" example:"contacted"`
}
