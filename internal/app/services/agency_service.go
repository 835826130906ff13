package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
)

// AgencyService defines agency management and the agency's own profile
type AgencyService interface {
	ListAgencies(ctx context.Context, filter repositories.AgencyFilter) ([]*models.Agency, int64, error)
	GetAgency(ctx context.Context, id string) (*models.Agency, error)
	CreateAgency(ctx context.Context, req *dto.CreateAgencyRequest) (*models.Agency, error)
	// UpdateAgency saves admin edits; a new commission rate is applied to unpaid payments
	UpdateAgency(ctx context.Context, id string, req *dto.UpdateAgencyRequest) (*models.Agency, error)
	UpdateAgencyStatus(ctx context.Context, id string, status models.AccountStatus) (*models.Agency, error)
	// DeleteAgency removes the agency and unlinks its users
	DeleteAgency(ctx context.Context, id string) error
	GetProfile(ctx context.Context, actor Actor) (*models.Agency, error)
	UpdateProfile(ctx context.Context, actor Actor, req *dto.UpdateAgencyProfileRequest) (*models.Agency, error)
}

type agencyServiceImpl struct {
	agencyRepo repositories.IAgencyRepository
	userRepo   repositories.IUserRepository
	payments   PaymentService
	options    Options
	logger     zerolog.Logger
}

// NewAgencyService creates a new agency service instance
func NewAgencyService(
	agencyRepo repositories.IAgencyRepository,
	userRepo repositories.IUserRepository,
	payments PaymentService,
	options Options,
	logger zerolog.Logger,
) AgencyService {
	return &agencyServiceImpl{
		agencyRepo: agencyRepo,
		userRepo:   userRepo,
		payments:   payments,
		options:    options,
		logger:     logger,
	}
}

func validateCommissionRate(rate float64) error {
	if rate < 0 || rate > 100 {
		return fmt.Errorf("%w: commission rate must be between 0 and 100", apperrors.ErrValidationFailed)
	}
	return nil
}

func (s *agencyServiceImpl) ListAgencies(ctx context.Context, filter repositories.AgencyFilter) ([]*models.Agency, int64, error) {
	return s.agencyRepo.List(ctx, filter)
}

func (s *agencyServiceImpl) GetAgency(ctx context.Context, id string) (*models.Agency, error) {
	return s.agencyRepo.GetByID(ctx, id)
}

func (s *agencyServiceImpl) CreateAgency(ctx context.Context, req *dto.CreateAgencyRequest) (*models.Agency, error) {
	agency := req.ToModel(s.options.DefaultCommissionRate)
	agency.Name = strings.TrimSpace(agency.Name)
	if agency.Status == "" {
		agency.Status = models.StatusActive
	}
	if err := validateCommissionRate(agency.CommissionRate); err != nil {
		return nil, err
	}

	if err := s.agencyRepo.Create(ctx, agency); err != nil {
		return nil, fmt.Errorf("error creating agency: %w", err)
	}
	s.logger.Info().Str("agencyId", agency.ID).Msg("Agency created")
	return agency, nil
}

func (s *agencyServiceImpl) UpdateAgency(ctx context.Context, id string, req *dto.UpdateAgencyRequest) (*models.Agency, error) {
	existing, err := s.agencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	agency := req.ToModel(existing.CommissionRate)
	agency.ID = id
	agency.Name = strings.TrimSpace(agency.Name)
	if agency.Status == "" {
		agency.Status = existing.Status
	}
	if err := validateCommissionRate(agency.CommissionRate); err != nil {
		return nil, err
	}

	if err := s.agencyRepo.Update(ctx, agency); err != nil {
		return nil, err
	}

	if agency.CommissionRate != existing.CommissionRate {
		n, err := s.payments.RecalculateCommission(ctx, id, agency.CommissionRate)
		if err != nil {
			s.logger.Error().Err(err).Str("agencyId", id).Msg("Failed to recalculate commission")
		} else {
			s.logger.Info().Str("agencyId", id).Int("payments", n).Float64("rate", agency.CommissionRate).Msg("Commission recalculated")
		}
	}
	return agency, nil
}

func (s *agencyServiceImpl) UpdateAgencyStatus(ctx context.Context, id string, status models.AccountStatus) (*models.Agency, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidationFailed, status)
	}
	if err := s.agencyRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.agencyRepo.GetByID(ctx, id)
}

func (s *agencyServiceImpl) DeleteAgency(ctx context.Context, id string) error {
	if err := deleteAgencyCascade(ctx, s.agencyRepo, s.userRepo, id); err != nil {
		return err
	}
	s.logger.Info().Str("agencyId", id).Msg("Agency deleted")
	return nil
}

// deleteAgencyCascade removes an agency and clears the link on its users
func deleteAgencyCascade(ctx context.Context, agencyRepo repositories.IAgencyRepository, userRepo repositories.IUserRepository, id string) error {
	if err := agencyRepo.Delete(ctx, id); err != nil {
		return err
	}
	if _, err := userRepo.ClearAgency(ctx, id); err != nil {
		return fmt.Errorf("error unlinking users from agency: %w", err)
	}
	return nil
}

func (s *agencyServiceImpl) GetProfile(ctx context.Context, actor Actor) (*models.Agency, error) {
	if err := actor.requireAgency(); err != nil {
		return nil, err
	}
	return s.agencyRepo.GetByID(ctx, actor.AgencyID)
}

func (s *agencyServiceImpl) UpdateProfile(ctx context.Context, actor Actor, req *dto.UpdateAgencyProfileRequest) (*models.Agency, error) {
	agency, err := s.GetProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	agency.Name = strings.TrimSpace(req.Name)
	agency.Phone = req.Phone
	agency.Address = req.Address
	agency.City = req.City
	agency.Country = req.Country
	agency.ContactPerson = req.ContactPerson

	if err := s.agencyRepo.Update(ctx, agency); err != nil {
		return nil, err
	}
	return agency, nil
}
