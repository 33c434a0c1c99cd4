package stripe

import (
	"net/http"
	"time"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/stripe/stripe-go/v82/webhook"
)

// SignatureHeader carries "t=<unix>,v1=<hex hmac>" on every Stripe delivery
const SignatureHeader = "Stripe-Signature"

// SignatureVerifier checks Stripe-Signature headers against the endpoint secret
type SignatureVerifier struct {
	secret    string
	tolerance time.Duration
}

// NewSignatureVerifier creates a verifier for the configured endpoint secret
func NewSignatureVerifier(cfg *config.Configuration) *SignatureVerifier {
	return &SignatureVerifier{
		secret:    cfg.Stripe.WebhookSecret,
		tolerance: cfg.Stripe.WebhookTolerance,
	}
}

func (v *SignatureVerifier) Scheme() types.SigningScheme {
	return types.SigningSchemeStripe
}

// DeliveryID is always empty, Stripe puts the event id in the body
func (v *SignatureVerifier) DeliveryID(_ http.Header) string {
	return ""
}

// Verify authenticates payload exactly as received. The HMAC comparison is
// constant time and timestamps outside the tolerance window are rejected.
func (v *SignatureVerifier) Verify(payload []byte, header http.Header) error {
	if v.secret == "" {
		return ierr.NewError("webhook secret not configured").
			WithHint("Webhook endpoint is not configured").
			Mark(ierr.ErrSignature)
	}

	signature := header.Get(SignatureHeader)
	if signature == "" {
		return ierr.NewError("missing Stripe-Signature header").
			WithHint("Missing webhook signature").
			Mark(ierr.ErrSignature)
	}

	err := webhook.ValidatePayloadWithTolerance(payload, signature, v.secret, v.tolerance)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Invalid webhook signature").
			WithReportableDetails(map[string]any{
				"reason": signatureFailureReason(err),
			}).
			Mark(ierr.ErrSignature)
	}

	return nil
}

func signatureFailureReason(err error) string {
	switch {
	case ierr.Is(err, webhook.ErrNotSigned):
		return "not_signed"
	case ierr.Is(err, webhook.ErrInvalidHeader):
		return "invalid_header"
	case ierr.Is(err, webhook.ErrTooOld):
		return "timestamp_outside_tolerance"
	case ierr.Is(err, webhook.ErrNoValidSignature):
		return "no_valid_signature"
	default:
		return "unknown"
	}
}
