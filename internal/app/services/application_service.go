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
	"github.com/yigit/agencyportal/internal/pkg/email"
	"github.com/yigit/agencyportal/internal/pkg/pdf"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

// ApplicationService defines the student application workflow
type ApplicationService interface {
	ListApplications(ctx context.Context, actor Actor, filter repositories.ApplicationFilter) ([]*models.Application, int64, error)
	GetApplication(ctx context.Context, actor Actor, id string) (*models.Application, error)
	// CreateApplication files an application for the actor's agency and
	// derives its payment record
	CreateApplication(ctx context.Context, actor Actor, req *dto.ApplicationRequest) (*models.Application, error)
	UpdateApplication(ctx context.Context, actor Actor, id string, req *dto.ApplicationRequest) (*models.Application, error)
	DeleteApplication(ctx context.Context, actor Actor, id string) error
	// UpdateApplicationStatus records an admin decision. Approval or rejection
	// is carried over to every document of the application.
	UpdateApplicationStatus(ctx context.Context, id string, req *dto.UpdateApplicationStatusRequest) (*models.Application, error)
	SummaryPDF(ctx context.Context, actor Actor, id string) ([]byte, string, error)
}

type applicationServiceImpl struct {
	applicationRepo repositories.IApplicationRepository
	collegeRepo     repositories.ICollegeRepository
	courseRepo      repositories.ICourseRepository
	agencyRepo      repositories.IAgencyRepository
	paymentRepo     repositories.IPaymentRepository
	documentRepo    repositories.IDocumentRepository
	events          realtime.Publisher
	mailer          email.EmailService
	options         Options
	logger          zerolog.Logger
}

// NewApplicationService creates a new application service instance
func NewApplicationService(
	repos *repositories.Repositories,
	events realtime.Publisher,
	mailer email.EmailService,
	options Options,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationServiceImpl{
		applicationRepo: repos.Applications,
		collegeRepo:     repos.Colleges,
		courseRepo:      repos.Courses,
		agencyRepo:      repos.Agencies,
		paymentRepo:     repos.Payments,
		documentRepo:    repos.Documents,
		events:          events,
		mailer:          mailer,
		options:         options,
		logger:          logger,
	}
}

// resolveCourse checks the course exists and belongs to the college
func (s *applicationServiceImpl) resolveCourse(ctx context.Context, collegeID, courseID string) (*models.Course, error) {
	college, err := s.collegeRepo.GetByID(ctx, collegeID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.CollegeID != college.ID {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, apperrors.ErrCourseCollegeMismatch)
	}
	return course, nil
}

func (s *applicationServiceImpl) ListApplications(ctx context.Context, actor Actor, filter repositories.ApplicationFilter) ([]*models.Application, int64, error) {
	filter.AgencyID = actor.scopeAgency(filter.AgencyID)
	return s.applicationRepo.List(ctx, filter)
}

func (s *applicationServiceImpl) GetApplication(ctx context.Context, actor Actor, id string) (*models.Application, error) {
	return loadApplication(ctx, s.applicationRepo, actor, id)
}

func (s *applicationServiceImpl) CreateApplication(ctx context.Context, actor Actor, req *dto.ApplicationRequest) (*models.Application, error) {
	if err := actor.requireAgency(); err != nil {
		return nil, err
	}

	course, err := s.resolveCourse(ctx, req.CollegeID, req.CourseID)
	if err != nil {
		return nil, err
	}

	app := req.ToModel()
	app.StudentName = strings.TrimSpace(app.StudentName)
	app.AgencyID = actor.AgencyID
	app.CreatedBy = actor.UserID
	app.Status = models.ApplicationPending
	app.Fee = course.Fee

	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("error creating application: %w", err)
	}

	// The payment is written separately; a failure here is repaired by payment sync.
	s.createPayment(ctx, app)

	created, err := s.applicationRepo.GetByID(ctx, app.ID)
	if err != nil {
		created = app
	}

	s.events.Publish(realtime.NewEvent(realtime.EventApplicationCreated, created.AgencyID, created))
	s.logger.Info().Str("applicationId", created.ID).Str("agencyId", created.AgencyID).Msg("Application created")
	return created, nil
}

func (s *applicationServiceImpl) createPayment(ctx context.Context, app *models.Application) {
	rate := s.options.DefaultCommissionRate
	if agency, err := s.agencyRepo.GetByID(ctx, app.AgencyID); err == nil {
		rate = agency.CommissionRate
	} else {
		s.logger.Warn().Err(err).Str("agencyId", app.AgencyID).Msg("Agency not found, using default commission rate")
	}

	if _, err := s.paymentRepo.CreateIfAbsent(ctx, models.NewPaymentForApplication(app, rate)); err != nil {
		s.logger.Error().Err(err).Str("applicationId", app.ID).Msg("Failed to create payment for application")
	}
}

func (s *applicationServiceImpl) UpdateApplication(ctx context.Context, actor Actor, id string, req *dto.ApplicationRequest) (*models.Application, error) {
	existing, err := loadApplication(ctx, s.applicationRepo, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !existing.IsEditable() {
		return nil, apperrors.ErrApplicationLocked
	}

	course, err := s.resolveCourse(ctx, req.CollegeID, req.CourseID)
	if err != nil {
		return nil, err
	}

	app := req.ToModel()
	app.ID = existing.ID
	app.StudentName = strings.TrimSpace(app.StudentName)
	app.AgencyID = existing.AgencyID
	app.Status = existing.Status
	app.CreatedBy = existing.CreatedBy
	app.Fee = existing.Fee
	if course.ID != existing.CourseID {
		app.Fee = course.Fee
	}

	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	s.syncPaymentDetails(ctx, app)

	return s.applicationRepo.GetByID(ctx, id)
}

// syncPaymentDetails carries student and course edits over to the payment
func (s *applicationServiceImpl) syncPaymentDetails(ctx context.Context, app *models.Application) {
	p, err := s.paymentRepo.GetByApplicationID(ctx, app.ID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Error().Err(err).Str("applicationId", app.ID).Msg("Failed to load payment of application")
		}
		return
	}

	p.StudentName = app.StudentName
	p.CollegeID = app.CollegeID
	p.CourseID = app.CourseID
	if p.PaymentStatus != models.PaymentPaid && p.Fee != app.Fee {
		p.Fee = app.Fee
		p.CommissionAmount = models.CalculateCommission(p.Fee, p.CommissionRate)
	}
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("paymentId", p.ID).Msg("Failed to update payment after application edit")
	}
}

func (s *applicationServiceImpl) DeleteApplication(ctx context.Context, actor Actor, id string) error {
	app, err := loadApplication(ctx, s.applicationRepo, actor, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && !app.IsEditable() {
		return apperrors.ErrApplicationLocked
	}

	if err := s.applicationRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.paymentRepo.DeleteByApplicationID(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("applicationId", id).Msg("Failed to delete payment of application")
	}
	if n, err := s.documentRepo.DeleteByApplication(ctx, id); err != nil {
		s.logger.Error().Err(err).Str("applicationId", id).Msg("Failed to delete documents of application")
	} else if n > 0 {
		s.logger.Debug().Str("applicationId", id).Int64("documents", n).Msg("Documents removed with application")
	}

	s.logger.Info().Str("applicationId", id).Msg("Application deleted")
	return nil
}

func (s *applicationServiceImpl) UpdateApplicationStatus(ctx context.Context, id string, req *dto.UpdateApplicationStatusRequest) (*models.Application, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown application status %q", apperrors.ErrValidationFailed, req.Status)
	}
	if _, err := s.applicationRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.applicationRepo.UpdateStatus(ctx, id, req.Status, req.Remarks); err != nil {
		return nil, err
	}

	var docStatus models.DocumentStatus
	switch req.Status {
	case models.ApplicationApproved:
		docStatus = models.DocumentApproved
	case models.ApplicationRejected:
		docStatus = models.DocumentRejected
	}
	if docStatus != "" {
		if _, err := s.documentRepo.UpdateStatusByApplication(ctx, id, docStatus); err != nil {
			return nil, fmt.Errorf("error updating documents of application: %w", err)
		}
	}

	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.events.Publish(realtime.NewEvent(realtime.EventApplicationStatus, app.AgencyID, app))
	s.notifyAgency(ctx, app)
	return app, nil
}

func (s *applicationServiceImpl) notifyAgency(ctx context.Context, app *models.Application) {
	agency, err := s.agencyRepo.GetByID(ctx, app.AgencyID)
	if err != nil {
		s.logger.Warn().Err(err).Str("agencyId", app.AgencyID).Msg("Skipping status email, agency not found")
		return
	}
	if err := s.mailer.SendApplicationStatusEmail(agency.Email, agency.Name, app.StudentName, string(app.Status), app.Remarks); err != nil {
		s.logger.Error().Err(err).Str("applicationId", app.ID).Msg("Failed to send application status email")
	}
}

func (s *applicationServiceImpl) SummaryPDF(ctx context.Context, actor Actor, id string) ([]byte, string, error) {
	app, err := loadApplication(ctx, s.applicationRepo, actor, id)
	if err != nil {
		return nil, "", err
	}
	docs, err := s.documentRepo.List(ctx, repositories.DocumentFilter{ApplicationID: id})
	if err != nil {
		return nil, "", fmt.Errorf("error listing documents: %w", err)
	}
	return pdf.ApplicationSummary(app, docs, s.options.Currency, time.Now())
}
