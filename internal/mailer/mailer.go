package mailer

import "context"

// PaymentConfirmation carries everything the payment-confirmation email needs.
type PaymentConfirmation struct {
	StudentEmail  string
	StudentName   string
	ItemTitle     string // course or material title
	TransactionID string
	PaymentMethod string
	Amount        int
}

// Mailer sends transactional email.
type Mailer interface {
	SendPaymentConfirmation(ctx context.Context, msg PaymentConfirmation) error
}
