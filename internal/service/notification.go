package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"travel/internal/domain"
)

// Mailer delivers a composed email. The real transport (SMTP, SendGrid)
// lives behind this interface; the default implementation logs.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outgoing mail to the process log.
type LogMailer struct{}

// NewLogMailer creates a log-backed Mailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send logs the email instead of delivering it.
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	log.Printf("[MAIL] To=%s, Subject=%s\n%s", to, subject, body)
	return nil
}

// Notification represents a composed notification.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// NotificationService composes and sends payment notifications.
type NotificationService struct {
	mailer Mailer
	from   string
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(mailer Mailer, from string) *NotificationService {
	return &NotificationService{mailer: mailer, from: from}
}

// SendPaymentConfirmation sends the payment confirmation email to the payer
// captured on the record at initiation time. Failure to send never affects
// the payment's status.
func (s *NotificationService) SendPaymentConfirmation(ctx context.Context, payment *domain.Payment) error {
	n := Notification{
		Recipient: payment.PayerEmail,
		Subject:   "Payment Confirmation",
		Body: fmt.Sprintf(
			"Dear %s,\n\n"+
				"Your payment for booking reference %s was successful.\n"+
				"Amount: %.2f %s\n"+
				"Transaction ID: %s\n"+
				"Status: %s\n\n"+
				"Thank you for your booking!",
			payment.PayerName,
			payment.BookingReference,
			payment.Amount,
			payment.Currency,
			payment.TransactionRef,
			payment.Status,
		),
		CreatedAt: time.Now(),
	}

	if err := s.mailer.Send(ctx, n.Recipient, n.Subject, n.Body); err != nil {
		return fmt.Errorf("send payment confirmation: %w", err)
	}

	return nil
}
