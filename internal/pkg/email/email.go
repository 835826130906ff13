package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// EmailService defines the notifications the portal sends
type EmailService interface {
	SendApplicationStatusEmail(toEmail, toName, studentName, status, remarks string) error
	SendAccountActivatedEmail(toEmail, toName string) error
	SendOfflinePaymentReviewedEmail(toEmail, toName, reference, status, remarks string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// EmailServiceImpl implements EmailService over SMTP
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(to string, msg []byte) error
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	s := &EmailServiceImpl{config: config, logger: logger}
	s.send = s.deliver
	return s
}

var layout = template.Must(template.New("email").Parse(`<html>
<body>
	<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
		<h2 style="color: #333;">{{.Title}}</h2>
		<p>Hello {{.Name}},</p>
		{{range .Lines}}<p>{{.}}</p>
		{{end}}<p>Best regards,<br>The Admissions Team</p>
	</div>
</body>
</html>`))

type emailBody struct {
	Title string
	Name  string
	Lines []string
}

// SendApplicationStatusEmail tells an agency about a decision on one of its applications
func (s *EmailServiceImpl) SendApplicationStatusEmail(toEmail, toName, studentName, status, remarks string) error {
	lines := []string{fmt.Sprintf("The application for %s is now %s.", studentName, strings.ToUpper(status))}
	if remarks != "" {
		lines = append(lines, "Remarks: "+remarks)
	}
	return s.sendHTMLEmail(toEmail, "Application "+status+": "+studentName, emailBody{
		Title: "Application update", Name: toName, Lines: lines,
	})
}

// SendAccountActivatedEmail tells an agency user that they can log in
func (s *EmailServiceImpl) SendAccountActivatedEmail(toEmail, toName string) error {
	return s.sendHTMLEmail(toEmail, "Your agency account is active", emailBody{
		Title: "Welcome aboard",
		Name:  toName,
		Lines: []string{"Your account has been approved. You can now log in and submit applications."},
	})
}

// SendOfflinePaymentReviewedEmail reports the outcome of a bank transfer review
func (s *EmailServiceImpl) SendOfflinePaymentReviewedEmail(toEmail, toName, reference, status, remarks string) error {
	lines := []string{fmt.Sprintf("Your payment with reference %s was %s.", reference, status)}
	if remarks != "" {
		lines = append(lines, "Remarks: "+remarks)
	}
	return s.sendHTMLEmail(toEmail, "Offline payment "+status, emailBody{
		Title: "Payment review", Name: toName, Lines: lines,
	})
}

func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject string, body emailBody) error {
	if toEmail == "" {
		return nil
	}
	// Without credentials the message is only logged
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}

	var html bytes.Buffer
	if err := layout.Execute(&html, body); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", toEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.Write(html.Bytes())

	if err := s.send(toEmail, msg.Bytes()); err != nil {
		s.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send email")
		return err
	}
	return nil
}

func (s *EmailServiceImpl) deliver(toEmail string, message []byte) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, message); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: s.config.Host})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	return w.Close()
}

// NopEmailService drops every message
type NopEmailService struct{}

func (NopEmailService) SendApplicationStatusEmail(string, string, string, string, string) error {
	return nil
}
func (NopEmailService) SendAccountActivatedEmail(string, string) error { return nil }
func (NopEmailService) SendOfflinePaymentReviewedEmail(string, string, string, string, string) error {
	return nil
}
