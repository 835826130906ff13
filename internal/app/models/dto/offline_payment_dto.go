package dto

import "github.com/yigit/agencyportal/internal/app/models"

// CreateOfflinePaymentForm is the multipart form submitted with a transfer proof file
type CreateOfflinePaymentForm struct {
	Amount      float64 `form:"amount" binding:"required,gt=0"`
	Currency    string  `form:"currency" binding:"omitempty,len=3"`
	Reference   string  `form:"reference" binding:"required,max=120"`
	BankName    string  `form:"bankName" binding:"omitempty,max=120"`
	PaymentDate string  `form:"paymentDate" binding:"required,datetime=2006-01-02"`
	Remarks     string  `form:"remarks" binding:"omitempty,max=2000"`
}

// ReviewOfflinePaymentRequest verifies or rejects a submitted proof
type ReviewOfflinePaymentRequest struct {
	Status  models.OfflinePaymentStatus `json:"status" binding:"required,offlinestatus" example:"verified"`
	Remarks string                      `json:"remarks" binding:"omitempty,max=2000"`
}
