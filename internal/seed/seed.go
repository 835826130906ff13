package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/agencyportal/internal/app/models"
	appRepos "github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/auth"
)

// AdminAccount describes the bootstrap administrator
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// CreateDefaultData makes sure an administrator exists and the settings row is present.
// Existing records are left untouched, so it is safe to run on every start.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, admin AdminAccount, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Admin/Settings)...")
	var finalErr error

	if err := ensureAdmin(ctx, repos.Users, admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error creating default admin")
		finalErr = errors.Join(finalErr, err)
	}

	settings, err := repos.Settings.Get(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error reading settings")
		finalErr = errors.Join(finalErr, err)
	} else if settings.UpdatedAt.IsZero() {
		if err := repos.Settings.Save(ctx, settings); err != nil {
			lgr.Error().Err(err).Msg("Error creating default settings")
			finalErr = errors.Join(finalErr, err)
		} else {
			lgr.Info().Msg("Default settings created")
		}
	}

	lgr.Info().Msg("Default data check completed.")
	return finalErr
}

func ensureAdmin(ctx context.Context, users appRepos.IUserRepository, admin AdminAccount, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		lgr.Warn().Msg("Seed admin credentials not configured, skipping admin creation")
		return nil
	}

	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return err
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	name := admin.Name
	if name == "" {
		name = "Administrator"
	}
	user := &appModels.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     appModels.RoleAdmin,
		Status:   appModels.StatusActive,
	}
	if err := users.Create(ctx, user); err != nil {
		return err
	}
	lgr.Info().Str("email", email).Msg("Default admin created")
	return nil
}
