package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	v1 "github.com/Filament-Bry/gd-checkout/internal/api/v1"
	"github.com/Filament-Bry/gd-checkout/internal/cache"
	"github.com/Filament-Bry/gd-checkout/internal/config"
	"github.com/Filament-Bry/gd-checkout/internal/integration/stripe"
	stripewebhook "github.com/Filament-Bry/gd-checkout/internal/integration/stripe/webhook"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/service"
	"github.com/Filament-Bry/gd-checkout/internal/testutil"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/Filament-Bry/gd-checkout/internal/validator"
	"github.com/Filament-Bry/gd-checkout/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paidEvent = `{"id":"evt_paid","type":"checkout.session.completed","created":1700000000,"data":{"object":{"id":"cs_test_1","object":"checkout.session","amount_total":2500,"currency":"cad","payment_status":"paid","customer_details":{"email":"a@b.co"}}}}`

type testServer struct {
	router   *gin.Engine
	config   *config.Configuration
	sessions *testutil.FakeSessionCreator
	notifier *testutil.RecordingNotifier
}

func newTestServer(t *testing.T, registrars ...webhook.Registrar) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Stripe.WebhookSecret = testutil.TestWebhookSecret
	cfg.Webhook.MaxBodyBytes = 4096
	log := logger.NewNopLogger()

	ts := &testServer{
		config:   cfg,
		sessions: testutil.NewFakeSessionCreator(),
		notifier: &testutil.RecordingNotifier{},
	}

	if len(registrars) == 0 {
		registrars = []webhook.Registrar{stripewebhook.NewHandler(cfg, ts.notifier, log)}
	}

	params := service.ServiceParams{
		Logger:     log,
		Config:     cfg,
		Sessions:   ts.sessions,
		Verifier:   stripe.NewSignatureVerifier(cfg),
		Dispatcher: webhook.NewDispatcher(log, registrars...),
		EventCache: cache.NewInMemoryCache(cfg.Webhook.DedupTTL),
		Reporter:   &testutil.RecordingReporter{},
	}

	ts.router = NewRouter(Handlers{
		Checkout: v1.NewCheckoutHandler(service.NewCheckoutService(params), log),
		Webhook:  v1.NewWebhookHandler(cfg, service.NewWebhookService(params), log),
		Health:   v1.NewHealthHandler(),
	}, cfg, log)

	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) postWebhook(payload string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/stripe-webhook", strings.NewReader(payload))
	for k, v := range header {
		req.Header[k] = v
	}
	return ts.do(req)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreateCheckout(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCalls  int
		check      func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:       "post returns session url",
			method:     http.MethodPost,
			target:     "/api/create-checkout",
			body:       `{"amount_cents":2500,"email":"a@b.co","businessName":"Acme"}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"url":"https://checkout.stripe.com/c/pay/cs_test_123","id":"cs_test_123"}`, w.Body.String())
			},
		},
		{
			name:       "amount as string",
			method:     http.MethodPost,
			target:     "/api/create-checkout",
			body:       `{"amount_cents":"2500"}`,
			wantStatus: http.StatusOK,
			wantCalls:  1,
		},
		{
			name:       "get redirects",
			method:     http.MethodGet,
			target:     "/api/create-checkout?amount_cents=2500&email=a%40b.co",
			wantStatus: http.StatusSeeOther,
			wantCalls:  1,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_123", w.Header().Get("Location"))
			},
		},
		{
			name:       "amount below minimum",
			method:     http.MethodPost,
			target:     "/api/create-checkout",
			body:       `{"amount_cents":10}`,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Contains(t, w.Body.String(), "Amount too small")
			},
		},
		{
			name:       "get without amount",
			method:     http.MethodGet,
			target:     "/api/create-checkout",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			method:     http.MethodPost,
			target:     "/api/create-checkout",
			body:       `{"amount_cents":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "other methods",
			method:     http.MethodPut,
			target:     "/api/create-checkout",
			wantStatus: http.StatusMethodNotAllowed,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"error":"Method Not Allowed"}`, w.Body.String())
				assert.Equal(t, "https://gabrioladirectory.ca", w.Header().Get("Access-Control-Allow-Origin"))
			},
		},
		{
			name:       "delete carries cors headers",
			method:     http.MethodDelete,
			target:     "/api/create-checkout",
			wantStatus: http.StatusMethodNotAllowed,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "https://gabrioladirectory.ca", w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			},
		},
		{
			name:       "preflight",
			method:     http.MethodOptions,
			target:     "/api/create-checkout",
			wantStatus: http.StatusNoContent,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, "https://gabrioladirectory.ca", w.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Origin", "https://gabrioladirectory.ca")
			w := ts.do(req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Len(t, ts.sessions.Requests(), tt.wantCalls)
			if tt.check != nil {
				tt.check(t, w)
			}
		})
	}
}

func TestCreateCheckoutProviderFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.sessions.Err = errors.New("stripe is down")

	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout", strings.NewReader(`{"amount_cents":2500}`))
	req.Header.Set("Content-Type", "application/json")
	w := ts.do(req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "sk_test")
}

func TestStripeWebhook(t *testing.T) {
	t.Run("verified delivery is acknowledged", func(t *testing.T) {
		ts := newTestServer(t)
		header := testutil.StripeSignatureHeader([]byte(paidEvent), testutil.TestWebhookSecret, time.Now())

		w := ts.postWebhook(paidEvent, header)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
		require.Len(t, ts.notifier.Records(), 1)
		assert.Equal(t, "cs_test_1", ts.notifier.Records()[0].SessionID)
	})

	t.Run("redelivery is flagged", func(t *testing.T) {
		ts := newTestServer(t)
		header := testutil.StripeSignatureHeader([]byte(paidEvent), testutil.TestWebhookSecret, time.Now())

		require.Equal(t, http.StatusOK, ts.postWebhook(paidEvent, header).Code)
		w := ts.postWebhook(paidEvent, header)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true,"duplicate":true}`, w.Body.String())
		assert.Len(t, ts.notifier.Records(), 1)
	})

	t.Run("invalid signature is rejected", func(t *testing.T) {
		ts := newTestServer(t)
		header := http.Header{}
		header.Set(stripe.SignatureHeader, "t=1700000000,v1=deadbeef")

		w := ts.postWebhook(paidEvent, header)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "Webhook Error")
		assert.Empty(t, ts.notifier.Records())
	})

	t.Run("missing signature is rejected", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.postWebhook(paidEvent, http.Header{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, ts.notifier.Records())
	})

	t.Run("unknown event type is acknowledged", func(t *testing.T) {
		ts := newTestServer(t)
		payload := `{"id":"evt_2","type":"customer.created","data":{"object":{"id":"cus_1"}}}`
		header := testutil.StripeSignatureHeader([]byte(payload), testutil.TestWebhookSecret, time.Now())

		w := ts.postWebhook(payload, header)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, ts.notifier.Records())
	})

	t.Run("handler failure is still acknowledged", func(t *testing.T) {
		failing := registrarFunc(func(d *webhook.Dispatcher) {
			d.Register(types.WebhookEventTypeCheckoutSessionCompleted, func(context.Context, *webhook.VerifiedEvent) error {
				return errors.New("sheets unavailable")
			})
		})
		ts := newTestServer(t, failing)
		header := testutil.StripeSignatureHeader([]byte(paidEvent), testutil.TestWebhookSecret, time.Now())

		w := ts.postWebhook(paidEvent, header)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"received":true}`, w.Body.String())
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		ts := newTestServer(t)
		payload := `{"id":"evt_big","type":"checkout.session.completed","pad":"` + strings.Repeat("x", 8192) + `"}`
		header := testutil.StripeSignatureHeader([]byte(payload), testutil.TestWebhookSecret, time.Now())

		w := ts.postWebhook(payload, header)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, ts.notifier.Records())
	})

	t.Run("only post is allowed", func(t *testing.T) {
		ts := newTestServer(t)
		w := ts.do(httptest.NewRequest(http.MethodGet, "/api/stripe-webhook", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

type registrarFunc func(d *webhook.Dispatcher)

func (f registrarFunc) RegisterHandlers(d *webhook.Dispatcher) { f(d) }
