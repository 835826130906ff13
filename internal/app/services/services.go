// Package services holds the portal's business rules. Controllers call into
// the interfaces defined here; implementations depend only on repository
// interfaces, so tests run them over the in-memory store.
//
// Services defined in this package:
//   - AuthService: login, session lookup and agency self-registration
//   - UserService: admin user management and account activation
//   - AgencyService: agency records, agency profile
//   - CollegeService, CourseService: the catalog
//   - ApplicationService: student applications and their status workflow
//   - DocumentService: base64 uploads stored in the document store
//   - PaymentService: payment sync, commission and settlement
//   - OfflinePaymentService: bank transfer proofs and their review
//   - SettingsService: the singleton settings record
//   - ReportService: CSV, JSON and HTML exports
package services

import (
	"github.com/rs/zerolog"

	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/auth"
	"github.com/yigit/agencyportal/internal/pkg/email"
	"github.com/yigit/agencyportal/internal/pkg/filestorage"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

// Options are the tunables services read from configuration
type Options struct {
	DefaultCommissionRate float64
	Currency              string
	MaxUploadBytes        int64
}

// Deps is everything the services need from the outside
type Deps struct {
	Repos    *repositories.Repositories
	Sessions *auth.SessionService
	Events   realtime.Publisher
	Mailer   email.EmailService
	Storage  filestorage.FileStorage
	Logger   zerolog.Logger
	Options  Options
}

// Services holds all the service instances
type Services struct {
	Auth            AuthService
	Users           UserService
	Agencies        AgencyService
	Colleges        CollegeService
	Courses         CourseService
	Applications    ApplicationService
	Documents       DocumentService
	Payments        PaymentService
	OfflinePayments OfflinePaymentService
	Settings        SettingsService
	Reports         ReportService
}

// NewServices wires every service over one set of dependencies
func NewServices(deps Deps) *Services {
	if deps.Events == nil {
		deps.Events = realtime.NopPublisher{}
	}
	if deps.Mailer == nil {
		deps.Mailer = email.NopEmailService{}
	}
	if deps.Options.Currency == "" {
		deps.Options.Currency = "INR"
	}
	if deps.Options.MaxUploadBytes <= 0 {
		deps.Options.MaxUploadBytes = 10 << 20
	}

	repos := deps.Repos
	payments := NewPaymentService(repos, deps.Events, deps.Options, deps.Logger)

	return &Services{
		Auth:            NewAuthService(repos.Users, repos.Agencies, deps.Sessions, deps.Options, deps.Logger),
		Users:           NewUserService(repos.Users, repos.Agencies, deps.Mailer, deps.Options, deps.Logger),
		Agencies:        NewAgencyService(repos.Agencies, repos.Users, payments, deps.Options, deps.Logger),
		Colleges:        NewCollegeService(repos.Colleges, repos.Courses, deps.Logger),
		Courses:         NewCourseService(repos.Courses, repos.Colleges),
		Applications:    NewApplicationService(repos, deps.Events, deps.Mailer, deps.Options, deps.Logger),
		Documents:       NewDocumentService(repos, deps.Events, deps.Options, deps.Logger),
		Payments:        payments,
		OfflinePayments: NewOfflinePaymentService(repos.OfflinePayments, repos.Agencies, deps.Storage, deps.Events, deps.Mailer, deps.Options, deps.Logger),
		Settings:        NewSettingsService(repos.Settings),
		Reports:         NewReportService(repos),
	}
}
