package webhook

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/notification"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	inbound "github.com/Filament-Bry/gd-checkout/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type acceptAll struct{}

func (acceptAll) Scheme() types.SigningScheme { return types.SigningSchemeStripe }
func (acceptAll) DeliveryID(http.Header) string { return "" }
func (acceptAll) Verify([]byte, http.Header) error { return nil }

type recordingNotifier struct {
	mu      sync.Mutex
	records []*notification.PaymentRecord
}

func (n *recordingNotifier) Notify(_ context.Context, record *notification.PaymentRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.records = append(n.records, record)
}

type HandlerSuite struct {
	suite.Suite
	notifier   *recordingNotifier
	dispatcher *inbound.Dispatcher
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.notifier = &recordingNotifier{}
	log := logger.NewNopLogger()
	s.dispatcher = inbound.NewDispatcher(log, NewHandler(config.GetDefaultConfig(), s.notifier, log))
}

func (s *HandlerSuite) dispatch(payload string) error {
	v, err := inbound.Authenticate(acceptAll{}, []byte(payload), http.Header{})
	s.Require().NoError(err)
	event, err := inbound.Parse(v, []byte(payload))
	s.Require().NoError(err)
	return s.dispatcher.Dispatch(context.Background(), event)
}

func (s *HandlerSuite) TestRegistersCheckoutEvents() {
	for _, eventType := range types.KnownWebhookEventTypes {
		s.True(s.dispatcher.Handles(eventType), eventType)
	}
}

func (s *HandlerSuite) TestCompletedPaidIsRecorded() {
	err := s.dispatch(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"created": 1700000100,
		"data": {"object": {
			"id": "cs_test_1",
			"object": "checkout.session",
			"created": 1700000000,
			"amount_total": 2500,
			"currency": "cad",
			"payment_status": "paid",
			"customer_email": "fallback@example.com",
			"customer_details": {"email": "a@b.co"},
			"metadata": {"businessName": "Acme", "contactName": "Jo"}
		}}
	}`)
	s.Require().NoError(err)
	s.Require().Len(s.notifier.records, 1)

	record := s.notifier.records[0]
	s.Equal("evt_1", record.EventID)
	s.Equal(types.WebhookEventTypeCheckoutSessionCompleted, record.EventType)
	s.Equal("cs_test_1", record.SessionID)
	s.Equal(int64(1700000000), record.CreatedUnix)
	s.Equal(int64(2500), record.AmountTotal)
	s.Equal("25.00", record.FormattedAmount())
	s.Equal("CAD", record.CurrencyCode())
	s.Equal("a@b.co", record.CustomerEmail)
	s.Equal("Acme", record.BusinessName)
	s.Equal("Jo", record.ContactName)
	s.Empty(record.Phone)
	s.Equal("paid", record.PaymentStatus)
	s.NotEmpty(record.DedupKey)
}

func (s *HandlerSuite) TestCompletedWithoutPaymentStatusIsRecorded() {
	err := s.dispatch(`{"id":"evt_p","type":"checkout.session.completed","data":{"object":{
		"id":"cs_p","amount_total":2500,"currency":"cad"}}}`)
	s.Require().NoError(err)
	s.Require().Len(s.notifier.records, 1)

	record := s.notifier.records[0]
	s.Equal("cs_p", record.SessionID)
	s.Equal("Payment received — 25.00 CAD", record.Subject())
	s.Empty(record.PaymentStatus)
}

func (s *HandlerSuite) TestMissingCurrencyUsesDefault() {
	err := s.dispatch(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{
		"id":"cs_test_1","amount_total":2500,"payment_status":"paid"}}}`)
	s.Require().NoError(err)
	s.Require().Len(s.notifier.records, 1)

	record := s.notifier.records[0]
	s.Equal("CAD", record.CurrencyCode())
	s.Equal("CAD", record.SheetRow().Currency)
	s.Equal("Payment received — 25.00 CAD", record.Subject())
}

func (s *HandlerSuite) TestCustomerEmailFallback() {
	err := s.dispatch(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{
		"id":"cs_test_1","amount_total":2500,"currency":"cad","payment_status":"paid",
		"customer_email":"fallback@example.com"}}}`)
	s.Require().NoError(err)
	s.Require().Len(s.notifier.records, 1)
	s.Equal("fallback@example.com", s.notifier.records[0].CustomerEmail)
}

func (s *HandlerSuite) TestCompletedUnpaidWaitsForAsyncEvent() {
	err := s.dispatch(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{
		"id":"cs_test_1","amount_total":2500,"currency":"cad","payment_status":"unpaid"}}}`)
	s.Require().NoError(err)
	s.Empty(s.notifier.records)

	err = s.dispatch(`{"id":"evt_2","type":"checkout.session.async_payment_succeeded","data":{"object":{
		"id":"cs_test_1","amount_total":2500,"currency":"cad","payment_status":"paid"}}}`)
	s.Require().NoError(err)
	s.Require().Len(s.notifier.records, 1)
	s.Equal(types.WebhookEventTypeCheckoutSessionAsyncPaymentSucceeded, s.notifier.records[0].EventType)
}

func (s *HandlerSuite) TestSameSessionSharesDedupKey() {
	s.Require().NoError(s.dispatch(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{
		"id":"cs_test_1","amount_total":2500,"currency":"cad","payment_status":"paid"}}}`))
	s.Require().NoError(s.dispatch(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{
		"id":"cs_test_1","amount_total":2500,"currency":"cad","payment_status":"paid"}}}`))

	s.Require().Len(s.notifier.records, 2)
	s.Equal(s.notifier.records[0].DedupKey, s.notifier.records[1].DedupKey)
}

func (s *HandlerSuite) TestNonRecordingEvents() {
	payloads := []string{
		`{"id":"evt_3","type":"checkout.session.async_payment_failed","data":{"object":{"id":"cs_test_1","payment_status":"unpaid"}}}`,
		`{"id":"evt_4","type":"checkout.session.expired","data":{"object":{"id":"cs_test_1"}}}`,
		`{"id":"evt_5","type":"customer.created","data":{"object":{"id":"cus_1"}}}`,
	}
	for _, payload := range payloads {
		s.NoError(s.dispatch(payload))
	}
	s.Empty(s.notifier.records)
}

func (s *HandlerSuite) TestMalformedSessionIsHandlerError() {
	err := s.dispatch(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"amount_total":2500}}}`)
	s.Require().Error(err)
	s.True(ierr.IsHandler(err))
	s.Empty(s.notifier.records)
}

func TestZeroDecimalCurrencyRecord(t *testing.T) {
	notifier := &recordingNotifier{}
	log := logger.NewNopLogger()
	d := inbound.NewDispatcher(log, NewHandler(config.GetDefaultConfig(), notifier, log))

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{
		"id":"cs_test_1","amount_total":500,"currency":"jpy","payment_status":"paid"}}}`)
	v, err := inbound.Authenticate(acceptAll{}, payload, http.Header{})
	require.NoError(t, err)
	event, err := inbound.Parse(v, payload)
	require.NoError(t, err)

	require.NoError(t, d.Dispatch(context.Background(), event))
	require.Len(t, notifier.records, 1)
	assert.Equal(t, "500", notifier.records[0].FormattedAmount())
	assert.Equal(t, "Payment received — 500 JPY", notifier.records[0].Subject())
}
