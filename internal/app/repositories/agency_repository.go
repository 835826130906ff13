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

var agencyColumns = []string{
	"id", "name", "email", "phone", "address", "city", "country", "contact_person",
	"commission_rate", "status", "created_at", "updated_at",
}

// AgencyRepository handles agency database operations
type AgencyRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewAgencyRepository creates a new AgencyRepository
func NewAgencyRepository(db DBTX) *AgencyRepository {
	return &AgencyRepository{db: db, sb: newBuilder()}
}

func scanAgency(row pgx.Row) (*models.Agency, error) {
	a := &models.Agency{}
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.Address, &a.City, &a.Country,
		&a.ContactPerson, &a.CommissionRate, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts a new agency
func (r *AgencyRepository) Create(ctx context.Context, agency *models.Agency) error {
	if agency.ID == "" {
		agency.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	agency.CreatedAt, agency.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("agencies").
		Columns(agencyColumns...).
		Values(agency.ID, agency.Name, agency.Email, agency.Phone, agency.Address, agency.City,
			agency.Country, agency.ContactPerson, agency.CommissionRate, agency.Status,
			agency.CreatedAt, agency.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create agency query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		logger.Error().Err(err).Str("name", agency.Name).Msg("Error creating agency")
		return fmt.Errorf("error creating agency: %w", err)
	}
	return nil
}

// GetByID retrieves an agency by ID
func (r *AgencyRepository) GetByID(ctx context.Context, id string) (*models.Agency, error) {
	sql, args, err := r.sb.Select(agencyColumns...).From("agencies").
		Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get agency query: %w", err)
	}

	agency, err := scanAgency(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("agency not found")
		}
		logger.Error().Err(err).Str("agencyID", id).Msg("Error scanning agency row")
		return nil, fmt.Errorf("error getting agency by ID: %w", err)
	}
	return agency, nil
}

// List returns agencies ordered by name
func (r *AgencyRepository) List(ctx context.Context, filter AgencyFilter) ([]*models.Agency, int64, error) {
	where := squirrel.And{}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": filter.Status})
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": p}, squirrel.ILike{"email": p}, squirrel.ILike{"city": p},
		})
	}

	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("agencies").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count agencies query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting agencies")
		return nil, 0, fmt.Errorf("error counting agencies: %w", err)
	}

	q := r.sb.Select(agencyColumns...).From("agencies").Where(where).OrderBy("name ASC")
	sql, args, err := filter.paginate(q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list agencies query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list agencies query")
		return nil, 0, fmt.Errorf("error querying agencies: %w", err)
	}
	defer rows.Close()

	agencies := []*models.Agency{}
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning agency row: %w", err)
		}
		agencies = append(agencies, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating agency rows: %w", err)
	}
	return agencies, total, nil
}

// Update saves every editable agency field
func (r *AgencyRepository) Update(ctx context.Context, agency *models.Agency) error {
	agency.UpdatedAt = time.Now().UTC()
	sql, args, err := r.sb.Update("agencies").
		SetMap(map[string]interface{}{
			"name":            agency.Name,
			"email":           agency.Email,
			"phone":           agency.Phone,
			"address":         agency.Address,
			"city":            agency.City,
			"country":         agency.Country,
			"contact_person":  agency.ContactPerson,
			"commission_rate": agency.CommissionRate,
			"status":          agency.Status,
			"updated_at":      agency.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": agency.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update agency query: %w", err)
	}
	return r.exec(ctx, sql, args, "update agency", agency.ID)
}

// UpdateStatus changes the agency status
func (r *AgencyRepository) UpdateStatus(ctx context.Context, id string, status models.AccountStatus) error {
	sql, args, err := r.sb.Update("agencies").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update agency status query: %w", err)
	}
	return r.exec(ctx, sql, args, "update agency status", id)
}

// Delete removes an agency by ID
func (r *AgencyRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("agencies").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete agency query: %w", err)
	}
	return r.exec(ctx, sql, args, "delete agency", id)
}

func (r *AgencyRepository) exec(ctx context.Context, sql string, args []interface{}, op, id string) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("agencyID", id).Msgf("Error executing %s query", op)
		return fmt.Errorf("error executing %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("agency not found")
	}
	return nil
}
