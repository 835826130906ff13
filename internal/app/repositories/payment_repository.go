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

var paymentColumns = []string{
	"id", "application_id", "agency_id", "college_id", "course_id", "student_name", "fee",
	"commission_rate", "commission_amount", "amount_paid", "payment_status", "lead_status",
	"documents", "paid_at", "notes", "created_at", "updated_at",
}

// PaymentRepository handles payment database operations
type PaymentRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db, sb: newBuilder()}
}

func (r *PaymentRepository) selectJoined() squirrel.SelectBuilder {
	cols := make([]string, 0, len(paymentColumns)+1)
	for _, c := range paymentColumns {
		cols = append(cols, "p."+c)
	}
	cols = append(cols, "COALESCE(ag.name, '')")
	return r.sb.Select(cols...).
		From("payments p").
		LeftJoin("agencies ag ON ag.id = p.agency_id")
}

func scanPayment(row pgx.Row) (*models.Payment, error) {
	p := &models.Payment{}
	var documents []byte
	if err := row.Scan(&p.ID, &p.ApplicationID, &p.AgencyID, &p.CollegeID, &p.CourseID,
		&p.StudentName, &p.Fee, &p.CommissionRate, &p.CommissionAmount, &p.AmountPaid,
		&p.PaymentStatus, &p.LeadStatus, &documents, &p.PaidAt, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt, &p.AgencyName); err != nil {
		return p, err
	}
	if err := decodeJSONB(documents, &p.Documents); err != nil {
		return p, fmt.Errorf("error decoding payment documents: %w", err)
	}
	if p.Documents == nil {
		p.Documents = models.DocumentFlags{}
	}
	return p, nil
}

// CreateIfAbsent inserts the payment unless one already exists for the application.
// The unique constraint on application_id makes concurrent syncs safe.
func (r *PaymentRepository) CreateIfAbsent(ctx context.Context, payment *models.Payment) (bool, error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.Documents == nil {
		payment.Documents = models.DocumentFlags{}
	}
	now := time.Now().UTC()
	payment.CreatedAt, payment.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("payments").
		Columns(paymentColumns...).
		Values(payment.ID, payment.ApplicationID, payment.AgencyID, payment.CollegeID,
			payment.CourseID, payment.StudentName, payment.Fee, payment.CommissionRate,
			payment.CommissionAmount, payment.AmountPaid, payment.PaymentStatus,
			payment.LeadStatus, payment.Documents, payment.PaidAt, payment.Notes,
			payment.CreatedAt, payment.UpdatedAt).
		Suffix("ON CONFLICT (application_id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build create payment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err, "payments_application_id_key") {
			return false, nil
		}
		logger.Error().Err(err).Str("applicationID", payment.ApplicationID).Msg("Error creating payment")
		return false, fmt.Errorf("error creating payment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PaymentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Payment, error) {
	sql, args, err := r.selectJoined().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get payment query: %w", err)
	}

	payment, err := scanPayment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.NewResourceNotFoundError("payment not found")
		}
		logger.Error().Err(err).Msg("Error scanning payment row")
		return nil, fmt.Errorf("error getting payment: %w", err)
	}
	return payment, nil
}

// GetByID retrieves a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return r.getOne(ctx, squirrel.Eq{"p.id": id})
}

// GetByApplicationID retrieves the payment derived from an application
func (r *PaymentRepository) GetByApplicationID(ctx context.Context, applicationID string) (*models.Payment, error) {
	return r.getOne(ctx, squirrel.Eq{"p.application_id": applicationID})
}

// List returns payments newest first together with the total count
func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]*models.Payment, int64, error) {
	where := squirrel.And{}
	if filter.AgencyID != "" {
		where = append(where, squirrel.Eq{"p.agency_id": filter.AgencyID})
	}
	if filter.PaymentStatus != "" {
		where = append(where, squirrel.Eq{"p.payment_status": filter.PaymentStatus})
	}
	if filter.LeadStatus != "" {
		where = append(where, squirrel.Eq{"p.lead_status": filter.LeadStatus})
	}
	if filter.Search != "" {
		where = append(where, squirrel.ILike{"p.student_name": likePattern(filter.Search)})
	}

	var total int64
	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("payments p").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count payments query: %w", err)
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting payments")
		return nil, 0, fmt.Errorf("error counting payments: %w", err)
	}

	q := r.selectJoined().Where(where).OrderBy("p.created_at DESC")
	sql, args, err := filter.paginate(q).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list payments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list payments query")
		return nil, 0, fmt.Errorf("error querying payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating payment rows: %w", err)
	}
	return payments, total, nil
}

// ApplicationIDs returns the set of application ids that already have a payment
func (r *PaymentRepository) ApplicationIDs(ctx context.Context) (map[string]struct{}, error) {
	sql, args, err := r.sb.Select("application_id").From("payments").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payment application ids query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying payment application ids")
		return nil, fmt.Errorf("error querying payment application ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning application id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Update saves the mutable settlement fields of a payment
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	if payment.Documents == nil {
		payment.Documents = models.DocumentFlags{}
	}
	sql, args, err := r.sb.Update("payments").
		SetMap(map[string]interface{}{
			"agency_id":         payment.AgencyID,
			"college_id":        payment.CollegeID,
			"course_id":         payment.CourseID,
			"student_name":      payment.StudentName,
			"fee":               payment.Fee,
			"commission_rate":   payment.CommissionRate,
			"commission_amount": payment.CommissionAmount,
			"amount_paid":       payment.AmountPaid,
			"payment_status":    payment.PaymentStatus,
			"lead_status":       payment.LeadStatus,
			"documents":         payment.Documents,
			"paid_at":           payment.PaidAt,
			"notes":             payment.Notes,
			"updated_at":        payment.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": payment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update payment query: %w", err)
	}
	return r.exec(ctx, sql, args, "update payment", payment.ID)
}

// UpdateDocuments replaces the document flag map of a payment
func (r *PaymentRepository) UpdateDocuments(ctx context.Context, id string, docs models.DocumentFlags) error {
	if docs == nil {
		docs = models.DocumentFlags{}
	}
	sql, args, err := r.sb.Update("payments").
		Set("documents", docs).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update payment documents query: %w", err)
	}
	return r.exec(ctx, sql, args, "update payment documents", id)
}

// DeleteByApplicationID removes the payment of an application, if any
func (r *PaymentRepository) DeleteByApplicationID(ctx context.Context, applicationID string) error {
	sql, args, err := r.sb.Delete("payments").Where(squirrel.Eq{"application_id": applicationID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete payment query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("applicationID", applicationID).Msg("Error deleting payment")
		return fmt.Errorf("error deleting payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) exec(ctx context.Context, sql string, args []interface{}, op, id string) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("paymentID", id).Msgf("Error executing %s query", op)
		return fmt.Errorf("error executing %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("payment not found")
	}
	return nil
}
