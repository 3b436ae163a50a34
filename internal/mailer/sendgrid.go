package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends email through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
	logger zerolog.Logger
}

// NewSendGridMailer builds a mailer with the given API key and sender identity.
func NewSendGridMailer(apiKey, fromName, fromAddress string, logger zerolog.Logger) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromAddress),
		logger: logger.With().Str("service", "SendGridMailer").Logger(),
	}
}

func (m *SendGridMailer) SendPaymentConfirmation(ctx context.Context, msg PaymentConfirmation) error {
	to := sgmail.NewEmail(msg.StudentName, msg.StudentEmail)
	subject := fmt.Sprintf("Payment Confirmation for %s", msg.ItemTitle)
	plain := fmt.Sprintf(
		"Dear %s,\n\nYour payment for %s has been confirmed.\n\nTransaction ID: %s\nPayment method: %s\nAmount: %d BDT\n\nHappy learning!",
		msg.StudentName, msg.ItemTitle, msg.TransactionID, msg.PaymentMethod, msg.Amount,
	)
	html := fmt.Sprintf(
		"<p>Dear %s,</p><p>Your payment for <strong>%s</strong> has been confirmed.</p><ul><li>Transaction ID: %s</li><li>Payment method: %s</li><li>Amount: %d BDT</li></ul><p>Happy learning!</p>",
		msg.StudentName, msg.ItemTitle, msg.TransactionID, msg.PaymentMethod, msg.Amount,
	)

	mail := sgmail.NewSingleEmail(m.from, subject, to, plain, html)
	resp, err := m.client.SendWithContext(ctx, mail)
	if err != nil {
		return fmt.Errorf("sending payment confirmation: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid rejected payment confirmation: status %d: %s", resp.StatusCode, resp.Body)
	}
	m.logger.Info().Str("to", msg.StudentEmail).Str("transaction_id", msg.TransactionID).Msg("Payment confirmation sent")
	return nil
}
