package notification

import (
	"context"

	"github.com/Filament-Bry/gd-checkout/internal/email"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
)

// EmailSender is satisfied by *email.Email
type EmailSender interface {
	SendEmail(ctx context.Context, req email.SendEmailRequest) (*email.SendEmailResponse, error)
}

// EmailSink sends a plain-text payment notice to the site owner
type EmailSink struct {
	sender    EmailSender
	toAddress string
}

func NewEmailSink(sender EmailSender, toAddress string) *EmailSink {
	return &EmailSink{
		sender:    sender,
		toAddress: toAddress,
	}
}

func (s *EmailSink) Name() string {
	return "email"
}

func (s *EmailSink) Send(ctx context.Context, record *PaymentRecord) error {
	resp, err := s.sender.SendEmail(ctx, email.SendEmailRequest{
		ToAddress: s.toAddress,
		Subject:   record.Subject(),
		Text:      record.Text(),
	})
	if err != nil {
		return err
	}

	if resp == nil || !resp.Success {
		reason := "unknown"
		if resp != nil && resp.Error != "" {
			reason = resp.Error
		}
		return ierr.NewError("email was not sent").
			WithHint("Notification email was not sent").
			WithReportableDetails(map[string]any{
				"reason": reason,
			}).
			Mark(ierr.ErrSink)
	}
	return nil
}
