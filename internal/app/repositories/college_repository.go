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

var collegeColumns = []string{
	"id", "name", "code", "location", "description", "website", "ranking",
	"established_year", "status", "created_at", "updated_at",
}

// CollegeRepository handles college database operations
type CollegeRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewCollegeRepository creates a new CollegeRepository
func NewCollegeRepository(db DBTX) *CollegeRepository {
	return &CollegeRepository{db: db, sb: newBuilder()}
}

func scanCollege(row pgx.Row) (*models.College, error) {
	c := &models.College{}
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Location, &c.Description, &c.Website,
		&c.Ranking, &c.EstablishedYear, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create inserts a new college
func (r *CollegeRepository) Create(ctx context.Context, college *models.College) error {
	if college.ID == "" {
		college.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	college.CreatedAt, college.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("colleges").
		Columns(collegeColumns...).
		Values(college.ID, college.Name, college.Code, college.Location, college.Description,
			college.Website, college.Ranking, college.EstablishedYear, college.Status,
			college.CreatedAt, college.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create college query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("name", college.Name).Msg("Error creating college")
		return fmt.Errorf("error creating college: %w", err)
	}
	return nil
}

// GetByID retrieves a college by ID
func (r *CollegeRepository) GetByID(ctx context.Context, id string) (*models.College, error) {
	sql, args, err := r.sb.Select(collegeColumns...).From("colleges").
		Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get college query: %w", err)
	}

	college, err := scanCollege(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("college not found")
		}
		logger.Error().Err(err).Str("collegeID", id).Msg("Error scanning college row")
		return nil, fmt.Errorf("error getting college by ID: %w", err)
	}
	return college, nil
}

// List returns colleges by ranking ascending, unranked last, then by name
func (r *CollegeRepository) List(ctx context.Context, filter CollegeFilter) ([]*models.College, int64, error) {
	where := squirrel.And{}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": p}, squirrel.ILike{"code": p}, squirrel.ILike{"location": p},
		})
	}

	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("colleges").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count colleges query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting colleges")
		return nil, 0, fmt.Errorf("error counting colleges: %w", err)
	}

	q := r.sb.Select(collegeColumns...).From("colleges").Where(where).
		OrderBy("ranking ASC NULLS LAST", "name ASC")
	sql, args, err := filter.paginate(q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list colleges query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list colleges query")
		return nil, 0, fmt.Errorf("error querying colleges: %w", err)
	}
	defer rows.Close()

	colleges := []*models.College{}
	for rows.Next() {
		c, err := scanCollege(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning college row: %w", err)
		}
		colleges = append(colleges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating college rows: %w", err)
	}
	return colleges, total, nil
}

// Update saves every editable college field
func (r *CollegeRepository) Update(ctx context.Context, college *models.College) error {
	college.UpdatedAt = time.Now().UTC()
	sql, args, err := r.sb.Update("colleges").
		SetMap(map[string]interface{}{
			"name":             college.Name,
			"code":             college.Code,
			"location":         college.Location,
			"description":      college.Description,
			"website":          college.Website,
			"ranking":          college.Ranking,
			"established_year": college.EstablishedYear,
			"status":           college.Status,
			"updated_at":       college.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": college.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update college query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("collegeID", college.ID).Msg("Error executing update college query")
		return fmt.Errorf("error updating college: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("college not found")
	}
	return nil
}

// Delete removes a college by ID. Courses are removed by the caller.
func (r *CollegeRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("colleges").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete college query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("collegeID", id).Msg("Error executing delete college query")
		return fmt.Errorf("error deleting college: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("college not found")
	}
	return nil
}
