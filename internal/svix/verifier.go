package svix

import (
	"net/http"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	svix "github.com/svix/svix-webhooks/go"
)

// Standard Webhooks headers. The svix-* names are accepted as well.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"

	headerWebhookID        = "webhook-id"
	headerWebhookSignature = "webhook-signature"
)

// Verifier authenticates deliveries relayed through Svix or any Standard Webhooks sender
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier creates a verifier for a whsec_ prefixed base64 secret
func NewVerifier(cfg *config.Configuration) (*Verifier, error) {
	if cfg.Stripe.WebhookSecret == "" {
		return nil, ierr.NewError("webhook secret not configured").
			WithHint("Webhook endpoint is not configured").
			Mark(ierr.ErrSignature)
	}

	wh, err := svix.NewWebhook(cfg.Stripe.WebhookSecret)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Webhook secret is not a valid Standard Webhooks secret").
			Mark(ierr.ErrValidation)
	}

	return &Verifier{wh: wh}, nil
}

func (v *Verifier) Scheme() types.SigningScheme {
	return types.SigningSchemeSvix
}

// DeliveryID returns the sender's message id
func (v *Verifier) DeliveryID(header http.Header) string {
	if id := header.Get(HeaderID); id != "" {
		return id
	}
	return header.Get(headerWebhookID)
}

// Verify checks the signature and the timestamp window enforced by the svix library
func (v *Verifier) Verify(payload []byte, header http.Header) error {
	if header.Get(HeaderSignature) == "" && header.Get(headerWebhookSignature) == "" {
		return ierr.NewError("missing svix-signature header").
			WithHint("Missing webhook signature").
			Mark(ierr.ErrSignature)
	}

	if err := v.wh.Verify(payload, header); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid webhook signature").
			Mark(ierr.ErrSignature)
	}

	return nil
}
