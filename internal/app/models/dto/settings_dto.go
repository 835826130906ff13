package dto

import "github.com/yigit/agencyportal/internal/app/models"

// UpdateSettingsRequest replaces the singleton settings
type UpdateSettingsRequest struct {
	BankDetails      models.BankDetails         `json:"bankDetails"`
	EscalationMatrix []models.EscalationContact `json:"escalationMatrix" binding:"dive"`
	PaymentGateway   models.PaymentGateway      `json:"paymentGateway"`
}

// AgencySettingsResponse is the agency view of settings, without gateway secrets
type AgencySettingsResponse struct {
	BankDetails      models.BankDetails         `json:"bankDetails"`
	EscalationMatrix []models.EscalationContact `json:"escalationMatrix"`
}

// NewAgencySettingsResponse strips what agencies must not see
func NewAgencySettingsResponse(s *models.Settings) AgencySettingsResponse {
	matrix := s.EscalationMatrix
	if matrix == nil {
		matrix = []models.EscalationContact{}
	}
	return AgencySettingsResponse{
		BankDetails:      s.BankDetails,
		EscalationMatrix: matrix,
	}
}
