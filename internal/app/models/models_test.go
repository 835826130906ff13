package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDocumentType(t *testing.T) {
	cases := map[string]string{
		"10th Marksheet":         "marksheet_10th",
		"marksheet_10th":         "marksheet_10th",
		"Class 12 result":        "marksheet_12th",
		"HSC marks":              "marksheet_12th",
		"Passport copy":          "passport",
		"passport size photo":    "photo",
		"Aadhar Card":            "aadhaar",
		"TC":                     "transfer_certificate",
		"Migration Certificate":  "migration_certificate",
		"Degree certificate":     "graduation",
		"Medical Fitness Report": "medical_fitness_report",
		"  ":                     DocumentTypeOther,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDocumentType(in), in)
	}
}

func TestNormalizeDocumentTypePassportPhotos(t *testing.T) {
	for _, in := range []string{"passport photo", "Passport Photograph", "passport-size picture", "Photo (passport)"} {
		assert.Equal(t, "photo", NormalizeDocumentType(in), in)
	}
	assert.Equal(t, "passport", NormalizeDocumentType("passport photocopy"))
}

func TestCalculateCommission(t *testing.T) {
	assert.Equal(t, 25000.0, CalculateCommission(250000, 10))
	assert.Equal(t, 1234.57, CalculateCommission(12345.67, 10))
	assert.Equal(t, 0.0, CalculateCommission(1000, 0))
}

func TestPaymentApplyAmountPaid(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	p := &Payment{Fee: 1000, PaymentStatus: PaymentPending}

	p.ApplyAmountPaid(400, now)
	assert.Equal(t, PaymentPartial, p.PaymentStatus)
	assert.Nil(t, p.PaidAt)

	p.ApplyAmountPaid(1000, now)
	assert.Equal(t, PaymentPaid, p.PaymentStatus)
	if assert.NotNil(t, p.PaidAt) {
		assert.Equal(t, now, *p.PaidAt)
	}

	p.ApplyAmountPaid(0, now)
	assert.Equal(t, PaymentPending, p.PaymentStatus)
	assert.Nil(t, p.PaidAt)
}

func TestPaymentDocumentFlags(t *testing.T) {
	now := time.Now()
	p := &Payment{}

	p.MarkDocumentRequested("passport", now)
	p.MarkDocumentUploaded("passport", now)

	flag := p.Documents["passport"]
	assert.True(t, flag.Requested)
	assert.True(t, flag.Uploaded)
	assert.NotNil(t, flag.UploadedAt)
}

func TestStatusValidation(t *testing.T) {
	assert.True(t, ApplicationApproved.IsValid())
	assert.False(t, ApplicationStatus("done").IsValid())
	assert.True(t, LeadDocumentsReceived.IsValid())
	assert.False(t, PaymentStatus("refunded").IsValid())
	assert.True(t, RoleAgency.IsValid())
	assert.Equal(t, "approved", Normalize(" Approved "))
}
