package stripe

import (
	"context"

	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/stripe/stripe-go/v82"
)

// SessionCreator creates hosted checkout sessions at the payment provider
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)
}

// CheckoutSessionRequest is a single line item payment for a fixed amount
type CheckoutSessionRequest struct {
	AmountCents    int64
	Currency       string
	Description    string
	CustomerEmail  string
	Metadata       types.Metadata
	SuccessURL     string
	CancelURL      string
	IdempotencyKey string
}

// CheckoutSession is the part of the provider session the caller needs
type CheckoutSession struct {
	ID  string
	URL string
}

// CreateCheckoutSession creates a payment mode checkout session with one line item
func (c *Client) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	metadata := map[string]string(req.Metadata.Compact())

	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if len(metadata) > 0 {
		params.Metadata = metadata
		params.PaymentIntentData = &stripe.CheckoutSessionCreatePaymentIntentDataParams{
			Metadata: metadata,
		}
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	session, err := c.api.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		c.logger.Errorw("failed to create Stripe checkout session",
			"error", err,
			"amount_cents", req.AmountCents,
			"currency", req.Currency,
		)
		return nil, providerError(err)
	}

	if session.URL == "" {
		c.logger.Errorw("stripe returned a checkout session without a url",
			"session_id", session.ID,
		)
		return nil, ierr.NewError("checkout session has no url").
			WithHint("Payment provider did not return a checkout URL").
			WithReportableDetails(map[string]any{
				"session_id": session.ID,
			}).
			Mark(ierr.ErrProvider)
	}

	c.logger.Infow("created stripe checkout session",
		"session_id", session.ID,
		"amount_cents", req.AmountCents,
		"currency", req.Currency,
	)

	return &CheckoutSession{
		ID:  session.ID,
		URL: session.URL,
	}, nil
}

// providerError keeps the Stripe error code and type and drops everything else
func providerError(err error) error {
	details := map[string]any{}
	hint := "Unable to create Stripe checkout session"

	var stripeErr *stripe.Error
	if ierr.As(err, &stripeErr) {
		details["code"] = string(stripeErr.Code)
		details["type"] = string(stripeErr.Type)
		details["status"] = stripeErr.HTTPStatusCode
		// Msg can echo a masked API key, keep it out of responses
		if stripeErr.Type == stripe.ErrorTypeCard {
			hint = "The card was declined by the payment provider"
		}
	}

	return ierr.WithError(err).
		WithHint(hint).
		WithReportableDetails(details).
		Mark(ierr.ErrProvider)
}
