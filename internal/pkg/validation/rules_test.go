package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/agencyportal/internal/app/models"
	"github.com/yigit/agencyportal/internal/app/models/dto"
)

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, Register(v))
	return v
}

func TestStatusRules(t *testing.T) {
	v := newValidator(t)

	ok := dto.UpdateApplicationStatusRequest{Status: models.ApplicationApproved}
	assert.NoError(t, v.Struct(ok))

	bad := dto.UpdateApplicationStatusRequest{Status: "finished"}
	err := v.Struct(bad)
	require.Error(t, err)

	detail := dto.HandleValidationError(err)
	assert.Equal(t, dto.ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, "status", detail.Field)
}

func TestLeadAndPaymentRules(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Struct(dto.UpdateLeadStatusRequest{LeadStatus: models.LeadEnrolled}))
	assert.Error(t, v.Struct(dto.UpdateLeadStatusRequest{LeadStatus: "won"}))

	paid := models.PaymentPaid
	assert.NoError(t, v.Struct(dto.UpdatePaymentRequest{PaymentStatus: &paid}))
	assert.NoError(t, v.Struct(dto.UpdatePaymentRequest{}))
}

func TestFieldNamesUseJSONTags(t *testing.T) {
	v := newValidator(t)

	err := v.Struct(dto.LoginRequest{Email: "not-an-email"})
	require.Error(t, err)

	detail := dto.HandleValidationError(err)
	fields, ok := detail.Details.([]dto.FieldError)
	require.True(t, ok)
	names := []string{}
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password"}, names)
}
