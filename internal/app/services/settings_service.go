package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
)

// SettingsService reads and replaces the portal settings
type SettingsService interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	UpdateSettings(ctx context.Context, req *dto.UpdateSettingsRequest) (*models.Settings, error)
	// GetAgencySettings is the agency view: bank details and escalation matrix only
	GetAgencySettings(ctx context.Context) (*dto.AgencySettingsResponse, error)
}

type settingsServiceImpl struct {
	settingsRepo repositories.ISettingsRepository
}

// NewSettingsService creates a new settings service instance
func NewSettingsService(settingsRepo repositories.ISettingsRepository) SettingsService {
	return &settingsServiceImpl{settingsRepo: settingsRepo}
}

func (s *settingsServiceImpl) GetSettings(ctx context.Context) (*models.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

func (s *settingsServiceImpl) validate(req *dto.UpdateSettingsRequest) error {
	gw := req.PaymentGateway
	if gw.Enabled && (strings.TrimSpace(gw.Provider) == "" || strings.TrimSpace(gw.KeyID) == "") {
		return fmt.Errorf("%w: an enabled payment gateway needs a provider and key id", apperrors.ErrValidationFailed)
	}
	if gw.Mode != "" && gw.Mode != "test" && gw.Mode != "live" {
		return fmt.Errorf("%w: payment gateway mode must be test or live", apperrors.ErrValidationFailed)
	}
	for _, c := range req.EscalationMatrix {
		if c.Level < 1 {
			return fmt.Errorf("%w: escalation level must be at least 1", apperrors.ErrValidationFailed)
		}
	}
	return nil
}

func (s *settingsServiceImpl) UpdateSettings(ctx context.Context, req *dto.UpdateSettingsRequest) (*models.Settings, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	matrix := append([]models.EscalationContact{}, req.EscalationMatrix...)
	sort.SliceStable(matrix, func(i, j int) bool { return matrix[i].Level < matrix[j].Level })

	settings := &models.Settings{
		BankDetails:      req.BankDetails,
		EscalationMatrix: matrix,
		PaymentGateway:   req.PaymentGateway,
	}
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("error saving settings: %w", err)
	}
	return settings, nil
}

func (s *settingsServiceImpl) GetAgencySettings(ctx context.Context) (*dto.AgencySettingsResponse, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	resp := dto.NewAgencySettingsResponse(settings)
	return &resp, nil
}
