package types

// WebhookEventType represents the type of an inbound provider event
type WebhookEventType string

const (
	// Stripe checkout events
	WebhookEventTypeCheckoutSessionCompleted             WebhookEventType = "checkout.session.completed"
	WebhookEventTypeCheckoutSessionAsyncPaymentSucceeded WebhookEventType = "checkout.session.async_payment_succeeded"
	WebhookEventTypeCheckoutSessionAsyncPaymentFailed    WebhookEventType = "checkout.session.async_payment_failed"
	WebhookEventTypeCheckoutSessionExpired               WebhookEventType = "checkout.session.expired"

	// WebhookEventTypeUnrecognized is the variant every unknown type dispatches as
	WebhookEventTypeUnrecognized WebhookEventType = "unrecognized"
)

// KnownWebhookEventTypes lists the event types that have a dedicated handler
var KnownWebhookEventTypes = []WebhookEventType{
	WebhookEventTypeCheckoutSessionCompleted,
	WebhookEventTypeCheckoutSessionAsyncPaymentSucceeded,
	WebhookEventTypeCheckoutSessionAsyncPaymentFailed,
	WebhookEventTypeCheckoutSessionExpired,
}

// String returns the string representation of the webhook event type
func (w WebhookEventType) String() string {
	return string(w)
}
