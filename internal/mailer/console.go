package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// ConsoleMailer logs email instead of sending it. Used when no SendGrid key
// is configured (local development).
type ConsoleMailer struct {
	logger zerolog.Logger
}

func NewConsoleMailer(logger zerolog.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: logger.With().Str("service", "ConsoleMailer").Logger()}
}

func (m *ConsoleMailer) SendPaymentConfirmation(_ context.Context, msg PaymentConfirmation) error {
	m.logger.Info().
		Str("to", msg.StudentEmail).
		Str("item", msg.ItemTitle).
		Str("transaction_id", msg.TransactionID).
		Msg("Payment confirmation (console)")
	return nil
}
