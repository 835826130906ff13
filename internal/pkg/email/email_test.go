package email

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendWithoutCredentialsIsSkipped(t *testing.T) {
	svc := NewEmailService(SMTPConfig{Host: "localhost", Port: 25}, zerolog.Nop()).(*EmailServiceImpl)
	called := false
	svc.send = func(string, []byte) error { called = true; return nil }

	require.NoError(t, svc.SendAccountActivatedEmail("a@example.com", "Agency"))
	assert.False(t, called)
}

func TestApplicationStatusEmailIsRenderedAndEscaped(t *testing.T) {
	svc := NewEmailService(SMTPConfig{Username: "u", Password: "p", FromName: "Portal", FromEmail: "no-reply@example.com"}, zerolog.Nop()).(*EmailServiceImpl)
	var sent string
	svc.send = func(to string, msg []byte) error {
		assert.Equal(t, "agency@example.com", to)
		sent = string(msg)
		return nil
	}

	require.NoError(t, svc.SendApplicationStatusEmail("agency@example.com", "Global Edu", "<Rahul>", "approved", "docs ok"))
	assert.Contains(t, sent, "Subject: Application approved: <Rahul>")
	assert.Contains(t, sent, "&lt;Rahul&gt;")
	assert.Contains(t, sent, "APPROVED")
	assert.Contains(t, sent, "Remarks: docs ok")
}

func TestSendErrorIsReturned(t *testing.T) {
	svc := NewEmailService(SMTPConfig{Username: "u", Password: "p"}, zerolog.Nop()).(*EmailServiceImpl)
	svc.send = func(string, []byte) error { return errors.New("boom") }

	assert.Error(t, svc.SendOfflinePaymentReviewedEmail("a@example.com", "A", "UTR1", "verified", ""))
}
