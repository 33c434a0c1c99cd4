package email

import (
	"context"

	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/validator"
)

// Email sends transactional email through the configured client
type Email struct {
	client *EmailClient
	logger *logger.Logger
}

// NewEmail creates a new email service
func NewEmail(client *EmailClient, logger *logger.Logger) *Email {
	return &Email{
		client: client,
		logger: logger,
	}
}

// IsEnabled reports whether emails will actually be sent
func (s *Email) IsEnabled() bool {
	return s.client.IsEnabled()
}

// SendEmail sends a plain text email
func (s *Email) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping email send",
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{
			Success: false,
			Error:   "email client is disabled",
		}, nil
	}

	if req.FromAddress == "" {
		req.FromAddress = s.client.GetFromAddress()
	}

	if err := validator.ValidateRequest(req); err != nil {
		return &SendEmailResponse{
			Success: false,
			Error:   err.Error(),
		}, err
	}

	messageID, err := s.client.SendEmail(ctx, req.FromAddress, req.ToAddress, req.Subject, "", req.Text)
	if err != nil {
		s.logger.Errorw("failed to send email",
			"error", err,
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{
			Success: false,
			Error:   err.Error(),
		}, err
	}

	s.logger.Infow("email sent successfully",
		"message_id", messageID,
		"to", req.ToAddress,
		"subject", req.Subject,
	)

	return &SendEmailResponse{
		MessageID: messageID,
		Success:   true,
	}, nil
}
