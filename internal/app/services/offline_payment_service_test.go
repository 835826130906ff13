package services

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
	"github.com/yigit/agencyportal/internal/pkg/apperrors"
	"github.com/yigit/agencyportal/internal/pkg/realtime"
)

func TestOfflinePaymentSubmitAndReview(t *testing.T) {
	f := newFixture(t)
	agency, actor := f.agency(t, "globaledu", 10)
	proof := multipartFile(t, "proof", "Transfer.PNG", []byte("png-bytes"))

	op, err := f.svc.OfflinePayments.SubmitOfflinePayment(f.ctx, actor, &dto.CreateOfflinePaymentForm{
		Amount:      5000,
		Reference:   "UTR123",
		BankName:    "HDFC",
		PaymentDate: "2025-06-01",
	}, proof)
	require.NoError(t, err)
	assert.Equal(t, models.OfflinePaymentPending, op.Status)
	assert.Equal(t, "INR", op.Currency)
	assert.Equal(t, "Transfer.PNG", op.ProofName)
	assert.Contains(t, f.events.types(), realtime.EventOfflinePaymentCreated)

	path, name, err := f.svc.OfflinePayments.ProofFile(f.ctx, actor, op.ID)
	require.NoError(t, err)
	assert.Equal(t, "Transfer.PNG", name)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	reviewed, err := f.svc.OfflinePayments.ReviewOfflinePayment(f.ctx, f.admin, op.ID, &dto.ReviewOfflinePaymentRequest{
		Status: models.OfflinePaymentVerified, Remarks: "received",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OfflinePaymentVerified, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, f.admin.UserID, *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, agency.Email, f.mailer.sent[0].to)

	_, err = f.svc.OfflinePayments.ReviewOfflinePayment(f.ctx, f.admin, op.ID, &dto.ReviewOfflinePaymentRequest{
		Status: models.OfflinePaymentRejected,
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestOfflinePaymentValidation(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	form := &dto.CreateOfflinePaymentForm{Amount: 100, Reference: "UTR", PaymentDate: "01/06/2025"}

	_, err := f.svc.OfflinePayments.SubmitOfflinePayment(f.ctx, actor, form, nil)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.OfflinePayments.SubmitOfflinePayment(f.ctx, actor, form, multipartFile(t, "proof", "p.pdf", []byte("x")))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.OfflinePayments.SubmitOfflinePayment(f.ctx, f.admin, form, nil)
	assert.ErrorIs(t, err, apperrors.ErrAgencyNotLinked)
}

func TestOfflinePaymentHiddenFromOtherAgency(t *testing.T) {
	f := newFixture(t)
	_, actor := f.agency(t, "globaledu", 10)
	_, other := f.agency(t, "rival", 10)
	op, err := f.svc.OfflinePayments.SubmitOfflinePayment(f.ctx, actor, &dto.CreateOfflinePaymentForm{
		Amount: 100, Reference: "UTR", PaymentDate: "2025-06-01",
	}, multipartFile(t, "proof", "p.pdf", []byte("x")))
	require.NoError(t, err)

	_, err = f.svc.OfflinePayments.GetOfflinePayment(f.ctx, other, op.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, name, err := f.svc.OfflinePayments.Receipt(f.ctx, actor, op.ID)
	require.NoError(t, err)
	assert.Equal(t, "offline-payment-"+op.ID+".pdf", name)
}

func TestAgencySettingsHideGateway(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Settings.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{
		BankDetails: models.BankDetails{AccountName: "Portal", IFSC: "HDFC0001"},
		EscalationMatrix: []models.EscalationContact{
			{Level: 2, Name: "Manager"},
			{Level: 1, Name: "Support"},
		},
		PaymentGateway: models.PaymentGateway{Provider: "razorpay", KeyID: "k", KeySecret: "s", Mode: "test", Enabled: true},
	})
	require.NoError(t, err)

	full, err := f.svc.Settings.GetSettings(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "s", full.PaymentGateway.KeySecret)
	require.Len(t, full.EscalationMatrix, 2)
	assert.Equal(t, "Support", full.EscalationMatrix[0].Name)

	view, err := f.svc.Settings.GetAgencySettings(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "HDFC0001", view.BankDetails.IFSC)
	assert.Len(t, view.EscalationMatrix, 2)
}

func TestSettingsRejectIncompleteGateway(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Settings.UpdateSettings(f.ctx, &dto.UpdateSettingsRequest{
		PaymentGateway: models.PaymentGateway{Enabled: true},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
