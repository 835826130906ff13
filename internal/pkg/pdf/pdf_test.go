package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/agencyportal/internal/app/models"
)

func TestPaymentReceipt(t *testing.T) {
	paid := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	p := &models.Payment{
		ID: "p1", ApplicationID: "a1", StudentName: "Rahul Verma", AgencyName: "Global Edu",
		Fee: 250000, CommissionRate: 10, CommissionAmount: 25000, AmountPaid: 25000,
		PaymentStatus: models.PaymentPaid, PaidAt: &paid,
	}

	out, name, err := PaymentReceipt(p, "INR", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "payment-receipt-p1.pdf", name)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestApplicationSummaryWithoutDocuments(t *testing.T) {
	a := &models.Application{ID: "a1", StudentName: "Anaïs Dupont", Status: models.ApplicationPending}

	out, name, err := ApplicationSummary(a, nil, "INR", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "application-a1.pdf", name)
	assert.NotEmpty(t, out)
}

func TestOfflinePaymentReceipt(t *testing.T) {
	o := &models.OfflinePayment{ID: "o1", Amount: 5000, Currency: "INR", Reference: "UTR1", PaymentDate: time.Now(), Status: models.OfflinePaymentPending}

	out, name, err := OfflinePaymentReceipt(o, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "offline-payment-o1.pdf", name)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "INR 1234.50", Money(1234.5, "INR"))
}
