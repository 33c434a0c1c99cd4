package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Filament-Bry/gd-checkout/internal/integration/stripe"
	"github.com/Filament-Bry/gd-checkout/internal/notification"
	"github.com/stripe/stripe-go/v82/webhook"
)

// FakeSessionCreator implements stripe.SessionCreator
type FakeSessionCreator struct {
	mu       sync.Mutex
	requests []*stripe.CheckoutSessionRequest

	// Session is returned when Err is nil
	Session *stripe.CheckoutSession
	Err     error
}

func NewFakeSessionCreator() *FakeSessionCreator {
	return &FakeSessionCreator{
		Session: &stripe.CheckoutSession{
			ID:  "cs_test_123",
			URL: "https://checkout.stripe.com/c/pay/cs_test_123",
		},
	}
}

func (f *FakeSessionCreator) CreateCheckoutSession(_ context.Context, req *stripe.CheckoutSessionRequest) (*stripe.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Session, nil
}

// Requests returns every request received so far
func (f *FakeSessionCreator) Requests() []*stripe.CheckoutSessionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*stripe.CheckoutSessionRequest(nil), f.requests...)
}

func (f *FakeSessionCreator) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

// RecordingNotifier implements notification.Notifier
type RecordingNotifier struct {
	mu      sync.Mutex
	records []*notification.PaymentRecord
}

func (n *RecordingNotifier) Notify(_ context.Context, record *notification.PaymentRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, record)
}

func (n *RecordingNotifier) Records() []*notification.PaymentRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*notification.PaymentRecord(nil), n.records...)
}

func (n *RecordingNotifier) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = nil
}

// RecordingReporter collects captured exceptions
type RecordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *RecordingReporter) CaptureException(_ context.Context, err error, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *RecordingReporter) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func (r *RecordingReporter) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = nil
}

// StripeSignatureHeader signs payload the way Stripe does for the given endpoint secret
func StripeSignatureHeader(payload []byte, secret string, ts time.Time) http.Header {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	})
	header := http.Header{}
	header.Set(stripe.SignatureHeader, signed.Header)
	return header
}
