package repositories

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/app/models"
)

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = "$" + strconv.Itoa(i+1)
	}
	return strings.Join(ps, ",")
}

var (
	insertPaymentSQL = "INSERT INTO payments (" + strings.Join(paymentColumns, ",") + ") VALUES (" +
		placeholders(len(paymentColumns)) + ") ON CONFLICT (application_id) DO NOTHING"

	paymentResultColumns = append(append([]string{}, paymentColumns...), "agency_name")
)

func paymentSelectSQL(rest string) string {
	cols := make([]string, 0, len(paymentColumns))
	for _, c := range paymentColumns {
		cols = append(cols, "p."+c)
	}
	return "SELECT " + strings.Join(cols, ", ") + ", COALESCE(ag.name, '') FROM payments p" +
		" LEFT JOIN agencies ag ON ag.id = p.agency_id" + rest
}

func paymentRow(id string, documents []byte) []interface{} {
	created := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	return []interface{}{
		id, "app-" + id, "agency-1", "college-1", "course-1", "Ravi Kumar", 250000.0,
		10.0, 25000.0, 0.0, "pending", "applied", documents, nil, "",
		created, created, "Northstar",
	}
}

func TestPaymentCreateIfAbsent(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts once per application", func(t *testing.T) {
		mock := newMockDB(t)
		repo := NewPaymentRepository(mock)

		mock.ExpectExec(insertPaymentSQL).WithArgs(anyArgs(len(paymentColumns))...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(insertPaymentSQL).WithArgs(anyArgs(len(paymentColumns))...).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		payment := models.NewPaymentForApplication(&models.Application{
			ID: "app-1", AgencyID: "agency-1", StudentName: "Ravi Kumar", Fee: 250000,
		}, 10)
		created, err := repo.CreateIfAbsent(ctx, payment)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, payment.ID)
		assert.False(t, payment.CreatedAt.IsZero())

		created, err = repo.CreateIfAbsent(ctx, &models.Payment{ApplicationID: "app-1"})
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("unique violation on the application is not an error", func(t *testing.T) {
		mock := newMockDB(t)
		repo := NewPaymentRepository(mock)

		mock.ExpectExec(insertPaymentSQL).WithArgs(anyArgs(len(paymentColumns))...).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "payments_application_id_key"})

		created, err := repo.CreateIfAbsent(ctx, &models.Payment{ApplicationID: "app-1"})
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("other failures are returned", func(t *testing.T) {
		mock := newMockDB(t)
		repo := NewPaymentRepository(mock)

		mock.ExpectExec(insertPaymentSQL).WithArgs(anyArgs(len(paymentColumns))...).
			WillReturnError(errors.New("connection reset"))

		created, err := repo.CreateIfAbsent(ctx, &models.Payment{ApplicationID: "app-1"})
		require.Error(t, err)
		assert.False(t, created)
	})
}

func TestPaymentListFiltersAndPagination(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPaymentRepository(mock)

	where := " WHERE (p.agency_id = $1 AND p.payment_status = $2 AND p.student_name ILIKE $3)"
	mock.ExpectQuery("SELECT COUNT(*) FROM payments p"+where).
		WithArgs("agency-1", models.PaymentPending, "%ravi%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectQuery(paymentSelectSQL(where+" ORDER BY p.created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("agency-1", models.PaymentPending, "%ravi%").
		WillReturnRows(pgxmock.NewRows(paymentResultColumns).
			AddRow(paymentRow("p1", []byte(`{"passport":{"uploaded":true,"requested":false}}`))...).
			AddRow(paymentRow("p2", nil)...))

	payments, total, err := repo.List(context.Background(), PaymentFilter{
		ListOptions:   ListOptions{Page: 2, Size: 10},
		AgencyID:      "agency-1",
		PaymentStatus: models.PaymentPending,
		Search:        "ravi",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, payments, 2)

	assert.Equal(t, "p1", payments[0].ID)
	assert.Equal(t, models.PaymentPending, payments[0].PaymentStatus)
	assert.Equal(t, "Northstar", payments[0].AgencyName)
	assert.Nil(t, payments[0].PaidAt)
	assert.Equal(t, models.DocumentFlags{"passport": {Uploaded: true}}, payments[0].Documents)

	// NULL documents still yield an empty map
	assert.Equal(t, models.DocumentFlags{}, payments[1].Documents)
}

func TestPaymentListUnpaged(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPaymentRepository(mock)

	mock.ExpectQuery("SELECT COUNT(*) FROM payments p WHERE (1=1)").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(paymentSelectSQL(" WHERE (1=1) ORDER BY p.created_at DESC")).
		WillReturnRows(pgxmock.NewRows(paymentResultColumns))

	payments, total, err := repo.List(context.Background(), PaymentFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, payments)
	assert.Empty(t, payments)
}

func TestPaymentGetByIDRejectsMalformedDocuments(t *testing.T) {
	mock := newMockDB(t)
	repo := NewPaymentRepository(mock)

	mock.ExpectQuery(paymentSelectSQL(" WHERE p.id = $1 LIMIT 1")).
		WithArgs("p1").
		WillReturnRows(pgxmock.NewRows(paymentResultColumns).AddRow(paymentRow("p1", []byte(`[1,2]`))...))

	_, err := repo.GetByID(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error decoding payment documents")
}
