package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/auth"
	"github.com/yigit/agencyportal/internal/pkg/email"
)

// UserService is admin user management
type UserService interface {
	ListUsers(ctx context.Context, filter repositories.UserFilter) ([]*models.User, int64, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id string, req *dto.UpdateUserRequest) (*models.User, error)
	// UpdateUserStatus changes the account status. Activating an agency user
	// also activates their agency when it is still pending.
	UpdateUserStatus(ctx context.Context, id string, status models.AccountStatus) (*models.User, error)
	// DeleteUser removes the user and the agency linked to them
	DeleteUser(ctx context.Context, id string) error
}

type userServiceImpl struct {
	userRepo   repositories.IUserRepository
	agencyRepo repositories.IAgencyRepository
	mailer     email.EmailService
	options    Options
	logger     zerolog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(
	userRepo repositories.IUserRepository,
	agencyRepo repositories.IAgencyRepository,
	mailer email.EmailService,
	options Options,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:   userRepo,
		agencyRepo: agencyRepo,
		mailer:     mailer,
		options:    options,
		logger:     logger,
	}
}

func (s *userServiceImpl) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, filter)
}

func (s *userServiceImpl) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userServiceImpl) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	status := req.Status
	if status == "" {
		status = models.StatusActive
	}

	user := &models.User{
		Name:   strings.TrimSpace(req.Name),
		Email:  req.Email,
		Role:   req.Role,
		Status: status,
	}

	var createdAgency *models.Agency
	if req.Role == models.RoleAgency {
		switch {
		case req.AgencyID != nil && *req.AgencyID != "":
			if _, err := s.agencyRepo.GetByID(ctx, *req.AgencyID); err != nil {
				return nil, err
			}
			user.AgencyID = req.AgencyID
		case req.Agency != nil:
			createdAgency = req.Agency.ToModel(s.options.DefaultCommissionRate)
			if createdAgency.Status == "" {
				createdAgency.Status = status
			}
			if err := s.agencyRepo.Create(ctx, createdAgency); err != nil {
				return nil, fmt.Errorf("error creating agency: %w", err)
			}
			user.AgencyID = &createdAgency.ID
		default:
			return nil, fmt.Errorf("%w: agency users need an agencyId or an agency", apperrors.ErrValidationFailed)
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hash

	if err := s.userRepo.Create(ctx, user); err != nil {
		if createdAgency != nil {
			if delErr := s.agencyRepo.Delete(ctx, createdAgency.ID); delErr != nil {
				s.logger.Error().Err(delErr).Str("agencyId", createdAgency.ID).Msg("Failed to remove agency after user creation failed")
			}
		}
		return nil, err
	}

	s.logger.Info().Str("userId", user.ID).Str("role", string(user.Role)).Msg("User created")
	return user, nil
}

func (s *userServiceImpl) UpdateUser(ctx context.Context, id string, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Email = req.Email
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	if req.AgencyID != nil {
		if _, err := s.agencyRepo.GetByID(ctx, *req.AgencyID); err != nil {
			return nil, err
		}
		user.AgencyID = req.AgencyID
	}

	switch user.Role {
	case models.RoleAdmin:
		user.AgencyID = nil
	case models.RoleAgency:
		if user.AgencyID == nil {
			return nil, fmt.Errorf("%w: agency users need an agencyId", apperrors.ErrValidationFailed)
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userServiceImpl) UpdateUserStatus(ctx context.Context, id string, status models.AccountStatus) (*models.User, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidationFailed, status)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := user.Status

	if err := s.userRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	user.Status = status

	if status == models.StatusActive && previous != models.StatusActive {
		s.activateAgency(ctx, user)
		if err := s.mailer.SendAccountActivatedEmail(user.Email, user.Name); err != nil {
			s.logger.Error().Err(err).Str("userId", user.ID).Msg("Failed to send activation email")
		}
	}
	return user, nil
}

// activateAgency moves a pending agency to active alongside its user
func (s *userServiceImpl) activateAgency(ctx context.Context, user *models.User) {
	if user.Role != models.RoleAgency || user.AgencyID == nil {
		return
	}
	agency, err := s.agencyRepo.GetByID(ctx, *user.AgencyID)
	if err != nil {
		s.logger.Warn().Err(err).Str("agencyId", *user.AgencyID).Msg("Agency of activated user not found")
		return
	}
	if agency.Status != models.StatusPending {
		return
	}
	if err := s.agencyRepo.UpdateStatus(ctx, agency.ID, models.StatusActive); err != nil {
		s.logger.Error().Err(err).Str("agencyId", agency.ID).Msg("Failed to activate agency")
		return
	}
	s.logger.Info().Str("agencyId", agency.ID).Msg("Agency activated with its user")
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, id string) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	if user.AgencyID != nil {
		if err := deleteAgencyCascade(ctx, s.agencyRepo, s.userRepo, *user.AgencyID); err != nil &&
			!errors.Is(err, apperrors.ErrResourceNotFound) {
			return fmt.Errorf("error deleting agency of user: %w", err)
		}
	}

	s.logger.Info().Str("userId", id).Msg("User deleted")
	return nil
}
