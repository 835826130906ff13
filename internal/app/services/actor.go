package services

import (
	"context"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/auth"
)

// Actor is the caller of a service operation
type Actor struct {
	UserID   string
	Name     string
	Email    string
	Role     models.Role
	AgencyID string
}

// ActorFromClaims builds the actor from a verified session
func ActorFromClaims(c *auth.Claims) Actor {
	if c == nil {
		return Actor{}
	}
	return Actor{
		UserID:   c.UserID,
		Name:     c.Name,
		Email:    c.Email,
		Role:     c.Role,
		AgencyID: c.AgencyID,
	}
}

// IsAdmin reports whether the actor is an administrator
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanSee reports whether records owned by agencyID are visible to the actor
func (a Actor) CanSee(agencyID string) bool {
	return a.IsAdmin() || (a.AgencyID != "" && a.AgencyID == agencyID)
}

func (a Actor) requireAgency() error {
	if a.AgencyID == "" {
		return apperrors.ErrAgencyNotLinked
	}
	return nil
}

// scopeAgency pins an agency actor's list queries to their own agency
func (a Actor) scopeAgency(requested string) string {
	if a.IsAdmin() {
		return requested
	}
	return a.AgencyID
}

// loadApplication fetches an application the actor may see. Another agency's
// application is reported as missing.
func loadApplication(ctx context.Context, repo repositories.IApplicationRepository, actor Actor, id string) (*models.Application, error) {
	app, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSee(app.AgencyID) {
		return nil, apperrors.NewResourceNotFoundError("application not found")
	}
	return app, nil
}
