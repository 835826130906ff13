package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/pkg/helpers"
)

// ListOptions pages a list query. Size 0 returns every row.
type ListOptions struct {
	Page int
	Size int
}

// paginate applies LIMIT/OFFSET when a page size is set
func (o ListOptions) paginate(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	if o.Size <= 0 {
		return q
	}
	offset, limit := helpers.CalculateOffsetLimit(o.Page, o.Size)
	return q.Limit(uint64(limit)).Offset(offset)
}

type UserFilter struct {
	ListOptions
	Role     models.Role
	Status   models.AccountStatus
	AgencyID string
	Search   string
}

type AgencyFilter struct {
	ListOptions
	Status models.AccountStatus
	Search string
}

type CollegeFilter struct {
	ListOptions
	Status models.AccountStatus
	Search string
}

type CourseFilter struct {
	ListOptions
	CollegeID string
	Status    models.AccountStatus
	Search    string
}

type ApplicationFilter struct {
	ListOptions
	AgencyID  string
	CollegeID string
	CourseID  string
	Status    models.ApplicationStatus
	Search    string
	From      *time.Time
	To        *time.Time
}

type PaymentFilter struct {
	ListOptions
	AgencyID      string
	PaymentStatus models.PaymentStatus
	LeadStatus    models.LeadStatus
	Search        string
}

type OfflinePaymentFilter struct {
	ListOptions
	AgencyID string
	Status   models.OfflinePaymentStatus
}

type DocumentFilter struct {
	ApplicationID string
	AgencyID      string
	Status        models.DocumentStatus
	Type          string
}

// IUserRepository persists portal users
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	UpdateStatus(ctx context.Context, id string, status models.AccountStatus) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	ClearAgency(ctx context.Context, agencyID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// IAgencyRepository persists agencies
type IAgencyRepository interface {
	Create(ctx context.Context, agency *models.Agency) error
	GetByID(ctx context.Context, id string) (*models.Agency, error)
	List(ctx context.Context, filter AgencyFilter) ([]*models.Agency, int64, error)
	Update(ctx context.Context, agency *models.Agency) error
	UpdateStatus(ctx context.Context, id string, status models.AccountStatus) error
	Delete(ctx context.Context, id string) error
}

// ICollegeRepository persists colleges
type ICollegeRepository interface {
	Create(ctx context.Context, college *models.College) error
	GetByID(ctx context.Context, id string) (*models.College, error)
	List(ctx context.Context, filter CollegeFilter) ([]*models.College, int64, error)
	Update(ctx context.Context, college *models.College) error
	Delete(ctx context.Context, id string) error
}

// ICourseRepository persists courses
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]*models.Course, int64, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	DeleteByCollege(ctx context.Context, collegeID string) (int64, error)
}

// IApplicationRepository persists student applications
type IApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error)
	Update(ctx context.Context, app *models.Application) error
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, remarks string) error
	Delete(ctx context.Context, id string) error
}

// IPaymentRepository persists payment records derived from applications
type IPaymentRepository interface {
	// CreateIfAbsent inserts unless a payment for the same application exists.
	// It reports whether a row was written.
	CreateIfAbsent(ctx context.Context, payment *models.Payment) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*models.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]*models.Payment, int64, error)
	ApplicationIDs(ctx context.Context) (map[string]struct{}, error)
	Update(ctx context.Context, payment *models.Payment) error
	UpdateDocuments(ctx context.Context, id string, docs models.DocumentFlags) error
	DeleteByApplicationID(ctx context.Context, applicationID string) error
}

// IOfflinePaymentRepository persists bank transfer proofs
type IOfflinePaymentRepository interface {
	Create(ctx context.Context, payment *models.OfflinePayment) error
	GetByID(ctx context.Context, id string) (*models.OfflinePayment, error)
	List(ctx context.Context, filter OfflinePaymentFilter) ([]*models.OfflinePayment, int64, error)
	UpdateReview(ctx context.Context, payment *models.OfflinePayment) error
}

// ISettingsRepository persists the singleton settings row
type ISettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

// IDocumentRepository persists uploaded documents with their inline payload
type IDocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	// GetByID returns the document including its base64 payload
	GetByID(ctx context.Context, id string) (*models.Document, error)
	// List returns metadata only
	List(ctx context.Context, filter DocumentFilter) ([]*models.Document, error)
	UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, remarks string) error
	UpdateStatusByApplication(ctx context.Context, applicationID string, status models.DocumentStatus) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByApplication(ctx context.Context, applicationID string) (int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Users           IUserRepository
	Agencies        IAgencyRepository
	Colleges        ICollegeRepository
	Courses         ICourseRepository
	Applications    IApplicationRepository
	Payments        IPaymentRepository
	OfflinePayments IOfflinePaymentRepository
	Settings        ISettingsRepository
	Documents       IDocumentRepository
}

// NewRepositories wires the Postgres repositories and the Mongo document store
func NewRepositories(db DBTX, mongoDB *mongo.Database) *Repositories {
	return &Repositories{
		Users:           NewUserRepository(db),
		Agencies:        NewAgencyRepository(db),
		Colleges:        NewCollegeRepository(db),
		Courses:         NewCourseRepository(db),
		Applications:    NewApplicationRepository(db),
		Payments:        NewPaymentRepository(db),
		OfflinePayments: NewOfflinePaymentRepository(db),
		Settings:        NewSettingsRepository(db),
		Documents:       NewDocumentRepository(mongoDB),
	}
}

// DBTX is the subset of *pgxpool.Pool the repositories need. A pgx.Tx
// satisfies it as well.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// decodeJSONB unmarshals a JSONB column. NULL or empty leaves dst untouched.
func decodeJSONB(raw []byte, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// likePattern builds a case-insensitive substring pattern
func likePattern(s string) string {
	return "%" + s + "%"
}
