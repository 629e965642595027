package service

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/receipt"
)

type emailService struct {
	fromEmail  string
	fromName   string
	adminEmail string
	send       func(*mail.SGMailV3) (*rest.Response, error)
}

// NewEmailService sends through SendGrid. With an empty apiKey messages are
// only logged, which is what local development runs with.
func NewEmailService(apiKey, fromEmail, fromName, adminEmail string) EmailService {
	s := &emailService{
		fromEmail:  fromEmail,
		fromName:   fromName,
		adminEmail: adminEmail,
	}
	if apiKey != "" {
		s.send = sendgrid.NewSendClient(apiKey).Send
	}
	return s
}

func (s *emailService) deliver(ctx context.Context, to, subject, plainText string) error {
	if s.send == nil {
		logger.InfoContext(ctx, "Email delivery disabled, logging message", "to", to, "subject", subject)
		logger.Debug("Email body", "body", plainText)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	htmlContent := "<pre>" + html.EscapeString(plainText) + "</pre>"
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	response, err := s.send(message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "send", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "send", nil, "status", response.StatusCode)
	return nil
}

func (s *emailService) SendBookingConfirmation(ctx context.Context, to string, r *receipt.Receipt) error {
	subject := fmt.Sprintf("Booking confirmed - %s", r.Reference)
	body := fmt.Sprintf("Hello,\n\nYour deposit has been received and your bike is reserved.\n\n%s\nSee you at pickup!\n", r.Text())
	return s.deliver(ctx, to, subject, body)
}

func (s *emailService) SendSettlementReceipt(ctx context.Context, to string, r *receipt.Receipt) error {
	subject := fmt.Sprintf("Your rental receipt - %s", r.Reference)
	body := fmt.Sprintf("Hello,\n\nThanks for riding with us. Here is your final receipt.\n\n%s", r.Text())
	return s.deliver(ctx, to, subject, body)
}

func (s *emailService) SendAdminAlert(ctx context.Context, subject, body string) error {
	if s.adminEmail == "" {
		logger.Warn("Admin alert not emailed, no admin address configured", "subject", subject)
		return nil
	}
	return s.deliver(ctx, s.adminEmail, "[Admin] "+subject, body)
}
