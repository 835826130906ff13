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

var offlinePaymentColumns = []string{
	"id", "agency_id", "amount", "currency", "reference", "bank_name", "payment_date",
	"proof_path", "proof_name", "status", "remarks", "reviewed_by", "reviewed_at",
	"created_at", "updated_at",
}

// OfflinePaymentRepository handles offline payment database operations
type OfflinePaymentRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewOfflinePaymentRepository creates a new OfflinePaymentRepository
func NewOfflinePaymentRepository(db DBTX) *OfflinePaymentRepository {
	return &OfflinePaymentRepository{db: db, sb: newBuilder()}
}

func (r *OfflinePaymentRepository) selectJoined() squirrel.SelectBuilder {
	cols := make([]string, 0, len(offlinePaymentColumns)+1)
	for _, c := range offlinePaymentColumns {
		cols = append(cols, "o."+c)
	}
	cols = append(cols, "COALESCE(ag.name, '')")
	return r.sb.Select(cols...).
		From("offline_payments o").
		LeftJoin("agencies ag ON ag.id = o.agency_id")
}

func scanOfflinePayment(row pgx.Row) (*models.OfflinePayment, error) {
	o := &models.OfflinePayment{}
	err := row.Scan(&o.ID, &o.AgencyID, &o.Amount, &o.Currency, &o.Reference, &o.BankName,
		&o.PaymentDate, &o.ProofPath, &o.ProofName, &o.Status, &o.Remarks, &o.ReviewedBy,
		&o.ReviewedAt, &o.CreatedAt, &o.UpdatedAt, &o.AgencyName)
	return o, err
}

// Create inserts a submitted transfer proof
func (r *OfflinePaymentRepository) Create(ctx context.Context, payment *models.OfflinePayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt, payment.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("offline_payments").
		Columns(offlinePaymentColumns...).
		Values(payment.ID, payment.AgencyID, payment.Amount, payment.Currency, payment.Reference,
			payment.BankName, payment.PaymentDate, payment.ProofPath, payment.ProofName,
			payment.Status, payment.Remarks, payment.ReviewedBy, payment.ReviewedAt,
			payment.CreatedAt, payment.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create offline payment query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("agencyID", payment.AgencyID).Msg("Error creating offline payment")
		return fmt.Errorf("error creating offline payment: %w", err)
	}
	return nil
}

// GetByID retrieves an offline payment by ID
func (r *OfflinePaymentRepository) GetByID(ctx context.Context, id string) (*models.OfflinePayment, error) {
	sql, args, err := r.selectJoined().Where(squirrel.Eq{"o.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get offline payment query: %w", err)
	}

	payment, err := scanOfflinePayment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("offline payment not found")
		}
		logger.Error().Err(err).Str("offlinePaymentID", id).Msg("Error scanning offline payment row")
		return nil, fmt.Errorf("error getting offline payment by ID: %w", err)
	}
	return payment, nil
}

// List returns offline payments newest first
func (r *OfflinePaymentRepository) List(ctx context.Context, filter OfflinePaymentFilter) ([]*models.OfflinePayment, int64, error) {
	where := squirrel.And{}
	if filter.AgencyID != "" {
		where = append(where, squirrel.Eq{"o.agency_id": filter.AgencyID})
	}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"o.status": filter.Status})
	}

	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("offline_payments o").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count offline payments query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting offline payments")
		return nil, 0, fmt.Errorf("error counting offline payments: %w", err)
	}

	q := r.selectJoined().Where(where).OrderBy("o.created_at DESC")
	sql, args, err := filter.paginate(q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list offline payments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list offline payments query")
		return nil, 0, fmt.Errorf("error querying offline payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.OfflinePayment{}
	for rows.Next() {
		o, err := scanOfflinePayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning offline payment row: %w", err)
		}
		payments = append(payments, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating offline payment rows: %w", err)
	}
	return payments, total, nil
}

// UpdateReview stores the admin decision on a transfer proof
func (r *OfflinePaymentRepository) UpdateReview(ctx context.Context, payment *models.OfflinePayment) error {
	payment.UpdatedAt = time.Now().UTC()
	sql, args, err := r.sb.Update("offline_payments").
		Set("status", payment.Status).
		Set("remarks", payment.Remarks).
		Set("reviewed_by", payment.ReviewedBy).
		Set("reviewed_at", payment.ReviewedAt).
		Set("updated_at", payment.UpdatedAt).
		Where(squirrel.Eq{"id": payment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build review offline payment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("offlinePaymentID", payment.ID).Msg("Error reviewing offline payment")
		return fmt.Errorf("error reviewing offline payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("offline payment not found")
	}
	return nil
}
