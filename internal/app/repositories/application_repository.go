package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/dberrors"
	"github.com/yigit/agencyportal/internal/pkg/logger"
)

var applicationColumns = []string{
	"id", "student_name", "student_email", "student_phone", "date_of_birth", "nationality",
	"address", "qualification", "session", "stream", "agency_id", "college_id", "course_id",
	"fee", "status", "remarks", "created_by", "created_at", "updated_at",
}

// ApplicationRepository handles application database operations
type ApplicationRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db DBTX) *ApplicationRepository {
	return &ApplicationRepository{db: db, sb: newBuilder()}
}

// selectJoined selects every application column plus the joined display names
func (r *ApplicationRepository) selectJoined() squirrel.SelectBuilder {
	cols := make([]string, 0, len(applicationColumns)+3)
	for _, c := range applicationColumns {
		cols = append(cols, "a."+c)
	}
	cols = append(cols,
		"COALESCE(ag.name, '')", "COALESCE(co.name, '')", "COALESCE(cr.name, '')")

	return r.sb.Select(cols...).
		From("applications a").
		LeftJoin("agencies ag ON ag.id = a.agency_id").
		LeftJoin("colleges co ON co.id = a.college_id").
		LeftJoin("courses cr ON cr.id = a.course_id")
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	a := &models.Application{}
	err := row.Scan(&a.ID, &a.StudentName, &a.StudentEmail, &a.StudentPhone, &a.DateOfBirth,
		&a.Nationality, &a.Address, &a.Qualification, &a.Session, &a.Stream, &a.AgencyID,
		&a.CollegeID, &a.CourseID, &a.Fee, &a.Status, &a.Remarks, &a.CreatedBy,
		&a.CreatedAt, &a.UpdatedAt, &a.AgencyName, &a.CollegeName, &a.CourseName)
	return a, err
}

// Create inserts a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	app.CreatedAt, app.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("applications").
		Columns(applicationColumns...).
		Values(app.ID, app.StudentName, app.StudentEmail, app.StudentPhone, app.DateOfBirth,
			app.Nationality, app.Address, app.Qualification, app.Session, app.Stream,
			app.AgencyID, app.CollegeID, app.CourseID, app.Fee, app.Status, app.Remarks,
			app.CreatedBy, app.CreatedAt, app.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("agencyID", app.AgencyID).Msg("Error creating application")
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

// GetByID retrieves an application with its joined names
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	sql, args, err := r.selectJoined().Where(squirrel.Eq{"a.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("application not found")
		}
		logger.Error().Err(err).Str("applicationID", id).Msg("Error scanning application row")
		return nil, fmt.Errorf("error getting application by ID: %w", err)
	}
	return app, nil
}

func applicationWhere(filter ApplicationFilter) squirrel.And {
	where := squirrel.And{}
	if filter.AgencyID != "" {
		where = append(where, squirrel.Eq{"a.agency_id": filter.AgencyID})
	}
	if filter.CollegeID != "" {
		where = append(where, squirrel.Eq{"a.college_id": filter.CollegeID})
	}
	if filter.CourseID != "" {
		where = append(where, squirrel.Eq{"a.course_id": filter.CourseID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"a.status": filter.Status})
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"a.student_name": p}, squirrel.ILike{"a.student_email": p},
		})
	}
	if filter.From != nil {
		where = append(where, squirrel.GtOrEq{"a.created_at": *filter.From})
	}
	if filter.To != nil {
		where = append(where, squirrel.LtOrEq{"a.created_at": *filter.To})
	}
	return where
}

// List returns applications newest first together with the total count
func (r *ApplicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error) {
	where := applicationWhere(filter)

	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("applications a").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting applications")
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	q := r.selectJoined().Where(where).OrderBy("a.created_at DESC")
	sql, args, err := filter.paginate(q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list applications query")
		return nil, 0, fmt.Errorf("error querying applications: %w", err)
	}
	defer rows.Close()

	apps := []*models.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, total, nil
}

// Update saves the student fields and the college/course selection
func (r *ApplicationRepository) Update(ctx context.Context, app *models.Application) error {
	app.UpdatedAt = time.Now().UTC()
	sql, args, err := r.sb.Update("applications").
		SetMap(map[string]interface{}{
			"student_name":  app.StudentName,
			"student_email": app.StudentEmail,
			"student_phone": app.StudentPhone,
			"date_of_birth": app.DateOfBirth,
			"nationality":   app.Nationality,
			"address":       app.Address,
			"qualification": app.Qualification,
			"session":       app.Session,
			"stream":        app.Stream,
			"college_id":    app.CollegeID,
			"course_id":     app.CourseID,
			"fee":           app.Fee,
			"remarks":       app.Remarks,
			"updated_at":    app.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": app.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update application query: %w", err)
	}
	return r.exec(ctx, sql, args, "update application", app.ID)
}

// UpdateStatus sets the review status and remarks
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, remarks string) error {
	sql, args, err := r.sb.Update("applications").
		Set("status", status).
		Set("remarks", remarks).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update application status query: %w", err)
	}
	return r.exec(ctx, sql, args, "update application status", id)
}

// Delete removes an application by ID
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("applications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete application query: %w", err)
	}
	return r.exec(ctx, sql, args, "delete application", id)
}

func (r *ApplicationRepository) exec(ctx context.Context, sql string, args []interface{}, op, id string) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("applicationID", id).Msgf("Error executing %s query", op)
		return fmt.Errorf("error executing %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("application not found")
	}
	return nil
}
