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

var courseColumns = []string{
	"id", "college_id", "name", "level", "duration", "fee", "sessions", "streams",
	"eligibility", "status", "created_at", "updated_at",
}

// CourseRepository handles course database operations
type CourseRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db, sb: newBuilder()}
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	c := &models.Course{}
	var sessions, streams []byte
	if err := row.Scan(&c.ID, &c.CollegeID, &c.Name, &c.Level, &c.Duration, &c.Fee, &sessions,
		&streams, &c.Eligibility, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return c, err
	}
	if err := decodeJSONB(sessions, &c.Sessions); err != nil {
		return c, fmt.Errorf("error decoding course sessions: %w", err)
	}
	if err := decodeJSONB(streams, &c.Streams); err != nil {
		return c, fmt.Errorf("error decoding course streams: %w", err)
	}
	if c.Sessions == nil {
		c.Sessions = []string{}
	}
	if c.Streams == nil {
		c.Streams = []string{}
	}
	return c, nil
}

// Create inserts a new course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt, course.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("courses").
		Columns(courseColumns...).
		Values(course.ID, course.CollegeID, course.Name, course.Level, course.Duration, course.Fee,
			course.Sessions, course.Streams, course.Eligibility, course.Status,
			course.CreatedAt, course.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("name", course.Name).Msg("Error creating course")
		return fmt.Errorf("error creating course: %w", err)
	}
	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).From("courses").
		Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("course not found")
		}
		logger.Error().Err(err).Str("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}
	return course, nil
}

// List returns courses matching the filter ordered by name
func (r *CourseRepository) List(ctx context.Context, filter CourseFilter) ([]*models.Course, int64, error) {
	where := squirrel.And{}
	if filter.CollegeID != "" {
		where = append(where, squirrel.Eq{"college_id": filter.CollegeID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		where = append(where, squirrel.Or{squirrel.ILike{"name": p}, squirrel.ILike{"level": p}})
	}

	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("courses").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count courses query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting courses")
		return nil, 0, fmt.Errorf("error counting courses: %w", err)
	}

	q := r.sb.Select(courseColumns...).From("courses").Where(where).OrderBy("name ASC")
	sql, args, err := filter.paginate(q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, 0, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating course rows: %w", err)
	}
	return courses, total, nil
}

// Update saves every editable course field
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	sql, args, err := r.sb.Update("courses").
		SetMap(map[string]interface{}{
			"college_id":  course.CollegeID,
			"name":        course.Name,
			"level":       course.Level,
			"duration":    course.Duration,
			"fee":         course.Fee,
			"sessions":    course.Sessions,
			"streams":     course.Streams,
			"eligibility": course.Eligibility,
			"status":      course.Status,
			"updated_at":  course.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("courseID", course.ID).Msg("Error executing update course query")
		return fmt.Errorf("error updating course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	return nil
}

// Delete removes a course by ID
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("courseID", id).Msg("Error executing delete course query")
		return fmt.Errorf("error deleting course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("course not found")
	}
	return nil
}

// DeleteByCollege removes every course of a college
func (r *CourseRepository) DeleteByCollege(ctx context.Context, collegeID string) (int64, error) {
	sql, args, err := r.sb.Delete("courses").Where(squirrel.Eq{"college_id": collegeID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete courses by college query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("collegeID", collegeID).Msg("Error deleting courses of college")
		return 0, fmt.Errorf("error deleting courses: %w", err)
	}
	return tag.RowsAffected(), nil
}
