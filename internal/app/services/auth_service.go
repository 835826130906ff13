package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/auth"
)

// AuthService handles authentication operations
type AuthService interface {
	// Login verifies credentials and returns a signed session token
	Login(ctx context.Context, req *dto.LoginRequest) (string, *dto.SessionResponse, error)
	Session(claims *auth.Claims) *dto.SessionResponse
	// RegisterAgency creates a pending agency and its pending user
	RegisterAgency(ctx context.Context, req *dto.RegisterAgencyRequest) (*models.User, error)
}

type authServiceImpl struct {
	userRepo   repositories.IUserRepository
	agencyRepo repositories.IAgencyRepository
	sessions   *auth.SessionService
	options    Options
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	agencyRepo repositories.IAgencyRepository,
	sessions *auth.SessionService,
	options Options,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		agencyRepo: agencyRepo,
		sessions:   sessions,
		options:    options,
		logger:     logger,
	}
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (string, *dto.SessionResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("error getting user by email: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Str("email", user.Email).Msg("Failed login attempt")
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive() {
		return "", nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled,
			fmt.Sprintf("account is %s", user.Status))
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Error().Err(err).Str("userId", user.ID).Msg("Failed to record last login")
	}

	token, expiresAt, err := s.sessions.IssueToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("error issuing session token: %w", err)
	}

	s.logger.Info().Str("userId", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return token, &dto.SessionResponse{
		User: dto.SessionUser{
			ID:       user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Role:     user.Role,
			AgencyID: user.AgencyIDValue(),
		},
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authServiceImpl) Session(claims *auth.Claims) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		User: dto.SessionUser{
			ID:       claims.UserID,
			Name:     claims.Name,
			Email:    claims.Email,
			Role:     claims.Role,
			AgencyID: claims.AgencyID,
		},
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return resp
}

func (s *authServiceImpl) RegisterAgency(ctx context.Context, req *dto.RegisterAgencyRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, fmt.Errorf("error checking email: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	agency := &models.Agency{
		Name:           strings.TrimSpace(req.AgencyName),
		Email:          email,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		Country:        req.Country,
		ContactPerson:  req.ContactPerson,
		CommissionRate: s.options.DefaultCommissionRate,
		Status:         models.StatusPending,
	}
	if err := s.agencyRepo.Create(ctx, agency); err != nil {
		return nil, fmt.Errorf("error creating agency: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.ContactPerson),
		Email:    email,
		Password: hash,
		Role:     models.RoleAgency,
		Status:   models.StatusPending,
		AgencyID: &agency.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if delErr := s.agencyRepo.Delete(ctx, agency.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("agencyId", agency.ID).Msg("Failed to remove agency after user creation failed")
		}
		return nil, err
	}

	s.logger.Info().Str("agencyId", agency.ID).Str("userId", user.ID).Msg("Agency registered, awaiting activation")
	return user, nil
}
