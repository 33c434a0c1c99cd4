package webhook

import (
	"context"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/idempotency"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/notification"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	inbound "github.com/Filament-Bry/gd-checkout/internal/webhook"
	stripeapi "github.com/stripe/stripe-go/v82"
)

// Handler handles Stripe checkout webhook events
type Handler struct {
	notifier        notification.Notifier
	idempotency     *idempotency.Generator
	defaultCurrency string
	logger          *logger.Logger
}

// NewHandler creates a new Stripe webhook handler
func NewHandler(cfg *config.Configuration, notifier notification.Notifier, logger *logger.Logger) *Handler {
	return &Handler{
		notifier:        notifier,
		idempotency:     idempotency.NewGenerator(),
		defaultCurrency: types.NormalizeCurrency(cfg.Checkout.DefaultCurrency),
		logger:          logger,
	}
}

// RegisterHandlers adds the checkout session handlers to the dispatch table
func (h *Handler) RegisterHandlers(d *inbound.Dispatcher) {
	d.Register(types.WebhookEventTypeCheckoutSessionCompleted, h.handleCheckoutSessionCompleted)
	d.Register(types.WebhookEventTypeCheckoutSessionAsyncPaymentSucceeded, h.handleCheckoutSessionAsyncPaymentSucceeded)
	d.Register(types.WebhookEventTypeCheckoutSessionAsyncPaymentFailed, h.handleCheckoutSessionAsyncPaymentFailed)
	d.Register(types.WebhookEventTypeCheckoutSessionExpired, h.handleCheckoutSessionExpired)
}

// handleCheckoutSessionCompleted records the payment unless the payment method settles later
func (h *Handler) handleCheckoutSessionCompleted(ctx context.Context, event *inbound.VerifiedEvent) error {
	session, err := decodeSession(event)
	if err != nil {
		return err
	}

	// delayed notification methods complete unpaid and settle with an async_payment_* event
	if session.PaymentStatus == stripeapi.CheckoutSessionPaymentStatusUnpaid {
		h.logger.Infow("checkout session completed, awaiting payment",
			"event_id", event.ID(),
			"session_id", session.ID,
			"payment_status", session.PaymentStatus,
		)
		return nil
	}

	h.notifier.Notify(ctx, h.buildRecord(event, session))
	return nil
}

func (h *Handler) handleCheckoutSessionAsyncPaymentSucceeded(ctx context.Context, event *inbound.VerifiedEvent) error {
	session, err := decodeSession(event)
	if err != nil {
		return err
	}

	h.notifier.Notify(ctx, h.buildRecord(event, session))
	return nil
}

func (h *Handler) handleCheckoutSessionAsyncPaymentFailed(_ context.Context, event *inbound.VerifiedEvent) error {
	session, err := decodeSession(event)
	if err != nil {
		return err
	}

	h.logger.Warnw("checkout session payment failed",
		"event_id", event.ID(),
		"session_id", session.ID,
		"amount_total", session.AmountTotal,
		"currency", session.Currency,
	)
	return nil
}

func (h *Handler) handleCheckoutSessionExpired(_ context.Context, event *inbound.VerifiedEvent) error {
	session, err := decodeSession(event)
	if err != nil {
		return err
	}

	h.logger.Infow("checkout session expired",
		"event_id", event.ID(),
		"session_id", session.ID,
	)
	return nil
}

func decodeSession(event *inbound.VerifiedEvent) (*stripeapi.CheckoutSession, error) {
	var session stripeapi.CheckoutSession
	if err := event.DecodeObject(&session); err != nil {
		return nil, err
	}

	if session.ID == "" {
		return nil, ierr.NewError("checkout session has no id").
			WithHint("Malformed checkout session").
			WithReportableDetails(map[string]any{
				"event_id":   event.ID(),
				"event_type": event.Type(),
			}).
			Mark(ierr.ErrValidation)
	}
	return &session, nil
}

func (h *Handler) buildRecord(event *inbound.VerifiedEvent, session *stripeapi.CheckoutSession) *notification.PaymentRecord {
	customerEmail := session.CustomerEmail
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		customerEmail = session.CustomerDetails.Email
	}

	created := session.Created
	if created == 0 && !event.Created().IsZero() {
		created = event.Created().Unix()
	}

	currency := types.NormalizeCurrency(string(session.Currency))
	if currency == "" {
		currency = h.defaultCurrency
	}

	metadata := types.Metadata(session.Metadata)

	return &notification.PaymentRecord{
		EventID:       event.ID(),
		EventType:     event.Type(),
		SessionID:     session.ID,
		CreatedUnix:   created,
		AmountTotal:   session.AmountTotal,
		Currency:      currency,
		CustomerEmail: customerEmail,
		BusinessName:  metadata.Get(types.MetadataKeyBusinessName),
		ContactName:   metadata.Get(types.MetadataKeyContactName),
		Phone:         metadata.Get(types.MetadataKeyPhone),
		PaymentStatus: string(session.PaymentStatus),
		Livemode:      event.Livemode(),
		DedupKey: h.idempotency.GenerateKey(idempotency.ScopeWebhookEvent, map[string]interface{}{
			"session_id": session.ID,
		}),
	}
}
