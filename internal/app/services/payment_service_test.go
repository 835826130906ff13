package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/app/repositories"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
)

// orphan inserts an application without going through the service, so it has no payment
func (f *fixture) orphan(t *testing.T, agencyID string, fee float64) *models.Application {
	t.Helper()
	app := &models.Application{StudentName: "Orphan", AgencyID: agencyID, Fee: fee, Status: models.ApplicationPending}
	require.NoError(t, f.repos.Applications.Create(f.ctx, app))
	return app
}

func TestSyncPaymentsIsIdempotent(t *testing.T) {
	f := newFixture(t)
	agency, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	f.application(t, actor, college, course, "Rahul")
	orphan := f.orphan(t, agency.ID, 3000)

	first, err := f.svc.Payments.SyncPayments(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Scanned: 2, Created: 1, Skipped: 1}, *first)

	second, err := f.svc.Payments.SyncPayments(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Scanned: 2, Created: 0, Skipped: 2}, *second)

	p, err := f.repos.Payments.GetByApplicationID(f.ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, p.CommissionAmount)

	_, total, err := f.repos.Payments.List(f.ctx, repositories.PaymentFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestConcurrentSyncNeverDuplicates(t *testing.T) {
	f := newFixture(t)
	agency, _ := f.agency(t, "globaledu", 10)
	for i := 0; i < 20; i++ {
		f.orphan(t, agency.ID, 1000)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Payments.SyncPayments(f.ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, total, err := f.repos.Payments.List(f.ctx, repositories.PaymentFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 20, total)
}

func TestSyncUsesDefaultRateForMissingAgency(t *testing.T) {
	f := newFixture(t)
	app := f.orphan(t, "gone", 2000)

	_, err := f.svc.Payments.SyncPayments(f.ctx)
	require.NoError(t, err)

	p, err := f.repos.Payments.GetByApplicationID(f.ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.CommissionRate)
	assert.Equal(t, 200.0, p.CommissionAmount)
}

func TestRunSyncLoopStopsWithContext(t *testing.T) {
	f := newFixture(t)
	agency, _ := f.agency(t, "globaledu", 10)
	app := f.orphan(t, agency.ID, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.svc.Payments.RunSyncLoop(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, err := f.repos.Payments.GetByApplicationID(f.ctx, app.ID)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sync loop did not stop")
	}
}

func TestCommissionRateChangeRecalculatesUnpaid(t *testing.T) {
	f := newFixture(t)
	agency, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	open := f.application(t, actor, college, course, "Open")
	settled := f.application(t, actor, college, course, "Settled")

	sp, err := f.repos.Payments.GetByApplicationID(f.ctx, settled.ID)
	require.NoError(t, err)
	_, err = f.svc.Payments.UpdatePaymentStatus(f.ctx, sp.ID, models.PaymentPaid)
	require.NoError(t, err)

	rate := 20.0
	_, err = f.svc.Agencies.UpdateAgency(f.ctx, agency.ID, &dto.UpdateAgencyRequest{
		Name: agency.Name, Email: agency.Email, CommissionRate: &rate,
	})
	require.NoError(t, err)

	op, err := f.repos.Payments.GetByApplicationID(f.ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, op.CommissionRate)
	assert.Equal(t, 200.0, op.CommissionAmount)

	sp, err = f.repos.Payments.GetByApplicationID(f.ctx, settled.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, sp.CommissionRate)
	assert.Equal(t, 100.0, sp.CommissionAmount)
}

func TestUpdatePaymentAmountSettles(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")
	p, err := f.repos.Payments.GetByApplicationID(f.ctx, app.ID)
	require.NoError(t, err)

	partial := 400.0
	updated, err := f.svc.Payments.UpdatePayment(f.ctx, p.ID, &dto.UpdatePaymentRequest{AmountPaid: &partial})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPartial, updated.PaymentStatus)
	assert.Nil(t, updated.PaidAt)

	full := 1000.0
	notes := "cleared"
	updated, err = f.svc.Payments.UpdatePayment(f.ctx, p.ID, &dto.UpdatePaymentRequest{AmountPaid: &full, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.NotNil(t, updated.PaidAt)
	assert.Equal(t, "cleared", updated.Notes)
}

func TestAgencyLeadStatusScoped(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	_, other := f.agency(t, "rival", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")
	p, err := f.repos.Payments.GetByApplicationID(f.ctx, app.ID)
	require.NoError(t, err)

	_, err = f.svc.Payments.UpdateLeadStatus(f.ctx, other, p.ID, models.LeadContacted)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	updated, err := f.svc.Payments.UpdateLeadStatus(f.ctx, actor, p.ID, models.LeadContacted)
	require.NoError(t, err)
	assert.Equal(t, models.LeadContacted, updated.LeadStatus)
}

func TestRequestDocumentSetsFlag(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")
	p, err := f.repos.Payments.GetByApplicationID(f.ctx, app.ID)
	require.NoError(t, err)

	_, err = f.svc.Payments.RequestDocument(f.ctx, p.ID, "Passport copy")
	require.NoError(t, err)

	stored, err := f.repos.Payments.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Documents["passport"].Requested)
	assert.False(t, stored.Documents["passport"].Uploaded)
}

func TestPaymentSummary(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	_, other := f.agency(t, "rival", 10)
	college, course := f.catalog(t, 1000)
	paid := f.application(t, actor, college, course, "A")
	f.application(t, actor, college, course, "B")
	f.application(t, other, college, course, "C")

	p, err := f.repos.Payments.GetByApplicationID(f.ctx, paid.ID)
	require.NoError(t, err)
	_, err = f.svc.Payments.UpdatePaymentStatus(f.ctx, p.ID, models.PaymentPaid)
	require.NoError(t, err)

	sum, err := f.svc.Payments.Summary(f.ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
	assert.Equal(t, 1, sum.ByPaymentStatus[models.PaymentPaid])
	assert.Equal(t, 2000.0, sum.TotalFee)
	assert.Equal(t, 200.0, sum.TotalCommission)
	assert.Equal(t, 100.0, sum.PaidCommission)
	assert.Equal(t, 100.0, sum.PendingCommission)

	all, err := f.svc.Payments.Summary(f.ctx, f.admin)
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
}

func TestPaymentReceipt(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	college, course := f.catalog(t, 1000)
	app := f.application(t, actor, college, course, "Rahul")
	p, err := f.repos.Payments.GetByApplicationID(f.ctx, app.ID)
	require.NoError(t, err)

	_, name, err := f.svc.Payments.Receipt(f.ctx, actor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "payment-receipt-"+p.ID+".pdf", name)
}
