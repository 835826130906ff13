package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
)

func TestRegisterAndActivateAgency(t *testing.T) {
	f := newFixture(t)

	user, err := f.svc.Auth.RegisterAgency(f.ctx, &dto.RegisterAgencyRequest{
		AgencyName:    "Global Edu",
		ContactPerson: "Priya Sharma",
		Email:         "Priya@GlobalEdu.in",
		Password:      "changeme123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, user.Status)
	require.NotNil(t, user.AgencyID)

	agency, err := f.repos.Agencies.GetByID(f.ctx, *user.AgencyID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, agency.Status)
	assert.Equal(t, 10.0, agency.CommissionRate)

	// pending accounts cannot log in
	_, _, err = f.svc.Auth.Login(f.ctx, &dto.LoginRequest{Email: "priya@globaledu.in", Password: "changeme123"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)

	_, err = f.svc.Users.UpdateUserStatus(f.ctx, user.ID, models.StatusActive)
	require.NoError(t, err)

	agency, err = f.repos.Agencies.GetByID(f.ctx, *user.AgencyID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, agency.Status)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "account_activated", f.mailer.sent[0].kind)

	token, session, err := f.svc.Auth.Login(f.ctx, &dto.LoginRequest{Email: "priya@globaledu.in", Password: "changeme123"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, agency.ID, session.User.AgencyID)
	assert.Equal(t, models.RoleAgency, session.User.Role)

	stored, err := f.repos.Users.GetByID(f.ctx, user.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestRegisterAgencyDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	req := &dto.RegisterAgencyRequest{AgencyName: "A", ContactPerson: "A", Email: "a@example.com", Password: "changeme123"}

	_, err := f.svc.Auth.RegisterAgency(f.ctx, req)
	require.NoError(t, err)
	_, err = f.svc.Auth.RegisterAgency(f.ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Users.CreateUser(f.ctx, &dto.CreateUserRequest{
		Name: "Admin", Email: "admin@example.com", Password: "changeme123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	_, _, err = f.svc.Auth.Login(f.ctx, &dto.LoginRequest{Email: "admin@example.com", Password: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, _, err = f.svc.Auth.Login(f.ctx, &dto.LoginRequest{Email: "missing@example.com", Password: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestCreateAgencyUserWithInlineAgency(t *testing.T) {
	f := newFixture(t)
	rate := 15.0

	user, err := f.svc.Users.CreateUser(f.ctx, &dto.CreateUserRequest{
		Name:     "Priya",
		Email:    "priya@example.com",
		Password: "changeme123",
		Role:     models.RoleAgency,
		Agency:   &dto.CreateAgencyRequest{Name: "Global Edu", Email: "contact@globaledu.in", CommissionRate: &rate},
	})
	require.NoError(t, err)
	require.NotNil(t, user.AgencyID)

	agency, err := f.repos.Agencies.GetByID(f.ctx, *user.AgencyID)
	require.NoError(t, err)
	assert.Equal(t, 15.0, agency.CommissionRate)
	assert.Equal(t, models.StatusActive, agency.Status)
}

func TestCreateAgencyUserNeedsAgency(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Users.CreateUser(f.ctx, &dto.CreateUserRequest{
		Name: "Priya", Email: "priya@example.com", Password: "changeme123", Role: models.RoleAgency,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDeleteUserRemovesAgency(t *testing.T) {
	f := newFixture(t)
	agency, _ := f.agency(t, "globaledu", 10)

	owner, err := f.svc.Users.CreateUser(f.ctx, &dto.CreateUserRequest{
		Name: "Owner", Email: "owner@example.com", Password: "changeme123", Role: models.RoleAgency, AgencyID: &agency.ID,
	})
	require.NoError(t, err)
	staff, err := f.svc.Users.CreateUser(f.ctx, &dto.CreateUserRequest{
		Name: "Staff", Email: "staff@example.com", Password: "changeme123", Role: models.RoleAgency, AgencyID: &agency.ID,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Users.DeleteUser(f.ctx, owner.ID))

	_, err = f.repos.Agencies.GetByID(f.ctx, agency.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	remaining, err := f.repos.Users.GetByID(f.ctx, staff.ID)
	require.NoError(t, err)
	assert.Nil(t, remaining.AgencyID)
}

func TestUpdateUserKeepsPasswordWhenEmpty(t *testing.T) {
	f := newFixture(t)
	user, err := f.svc.Users.CreateUser(f.ctx, &dto.CreateUserRequest{
		Name: "Admin", Email: "admin@example.com", Password: "changeme123", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	_, err = f.svc.Users.UpdateUser(f.ctx, user.ID, &dto.UpdateUserRequest{Name: "Renamed", Email: "admin@example.com"})
	require.NoError(t, err)

	_, _, err = f.svc.Auth.Login(f.ctx, &dto.LoginRequest{Email: "admin@example.com", Password: "changeme123"})
	assert.NoError(t, err)
}

func TestAgencyProfileUpdateKeepsCommission(t *testing.T) {
	f := newFixture(t)
	agency, actor := f.agency(t, "globaledu", 12)

	updated, err := f.svc.Agencies.UpdateProfile(f.ctx, actor, &dto.UpdateAgencyProfileRequest{Name: "Global Edu Pvt", City: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, "Global Edu Pvt", updated.Name)
	assert.Equal(t, 12.0, updated.CommissionRate)
	assert.Equal(t, agency.Email, updated.Email)

	_, err = f.svc.Agencies.GetProfile(f.ctx, Actor{Role: models.RoleAgency})
	assert.ErrorIs(t, err, apperrors.ErrAgencyNotLinked)
}

func TestDeleteCollegeRemovesCourses(t *testing.T) {
	f := newFixture(t)
	college, course := f.catalog(t, 1000)

	require.NoError(t, f.svc.Colleges.DeleteCollege(f.ctx, college.ID))
	_, err := f.repos.Courses.GetByID(f.ctx, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestAgencySeesOnlyActiveColleges(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	f.catalog(t, 1000)
	closed := &models.College{Name: "Closed College", Status: models.StatusInactive}
	require.NoError(t, f.svc.Colleges.CreateCollege(f.ctx, closed))

	list, total, err := f.svc.Colleges.ListColleges(f.ctx, actor, repositories.CollegeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	_, err = f.svc.Colleges.GetCollege(f.ctx, actor, closed.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, total, err = f.svc.Colleges.ListColleges(f.ctx, f.admin, repositories.CollegeFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
