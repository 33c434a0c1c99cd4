package service

import (
	"context"

	"github.com/Filament-Bry/gd-checkout/internal/api/dto"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/idempotency"
	"github.com/Filament-Bry/gd-checkout/internal/integration/stripe"
	"github.com/Filament-Bry/gd-checkout/internal/types"
)

// CheckoutService turns an order into a hosted payment page
type CheckoutService interface {
	CreateSession(ctx context.Context, req *dto.CreateCheckoutRequest) (*dto.CheckoutSessionResponse, error)
}

type checkoutService struct {
	ServiceParams
	idempotency *idempotency.Generator
}

func NewCheckoutService(params ServiceParams) CheckoutService {
	return &checkoutService{
		ServiceParams: params,
		idempotency:   idempotency.NewGenerator(),
	}
}

// CreateSession validates the order and creates a provider checkout session.
// Redirects always go to the configured success and cancel URLs.
func (s *checkoutService) CreateSession(ctx context.Context, req *dto.CreateCheckoutRequest) (*dto.CheckoutSessionResponse, error) {
	order, err := req.ToOrder(s.Config.Checkout)
	if err != nil {
		s.Logger.Infow("rejected checkout request",
			"request_id", types.GetRequestID(ctx),
			"error", err,
		)
		return nil, err
	}

	var idempotencyKey string
	if requestID := types.GetRequestID(ctx); requestID != "" {
		idempotencyKey = s.idempotency.GenerateKey(idempotency.ScopeCheckoutSession, map[string]interface{}{
			"request_id": requestID,
			"amount":     order.AmountCents,
			"currency":   order.Currency,
			"email":      order.Email,
		})
	}

	session, err := s.Sessions.CreateCheckoutSession(ctx, &stripe.CheckoutSessionRequest{
		AmountCents:    order.AmountCents,
		Currency:       order.Currency,
		Description:    order.Description,
		CustomerEmail:  order.Email,
		Metadata:       order.Metadata,
		SuccessURL:     s.Config.Checkout.SuccessURL,
		CancelURL:      s.Config.Checkout.CancelURL,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		if !ierr.IsProvider(err) {
			err = ierr.WithError(err).
				WithHint("Unable to create checkout session").
				Mark(ierr.ErrProvider)
		}
		return nil, err
	}

	if session == nil || session.URL == "" {
		return nil, ierr.NewError("checkout session has no url").
			WithHint("Payment provider did not return a checkout URL").
			Mark(ierr.ErrProvider)
	}

	return &dto.CheckoutSessionResponse{
		URL: session.URL,
		ID:  session.ID,
	}, nil
}
