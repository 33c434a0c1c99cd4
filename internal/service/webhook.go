package service

import (
	"context"
	"net/http"
	"time"

	"github.com/Filament-Bry/gd-checkout/internal/cache"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/Filament-Bry/gd-checkout/internal/webhook"
)

// WebhookResult describes how far a delivery got through the pipeline
type WebhookResult struct {
	State     webhook.State
	EventID   string
	EventType types.WebhookEventType
	// Duplicate is set when the event id was already dispatched within the dedup window
	Duplicate bool
	// HandlerErr is set when dispatch failed after verification. The delivery is still acknowledged.
	HandlerErr error
}

// WebhookService authenticates, parses and dispatches inbound provider events
type WebhookService interface {
	// Process runs the pipeline over the raw request body. An error means the
	// delivery is rejected; handler failures are reported on the result instead.
	Process(ctx context.Context, payload []byte, header http.Header) (*WebhookResult, error)
}

type webhookService struct {
	ServiceParams
}

func NewWebhookService(params ServiceParams) WebhookService {
	return &webhookService{
		ServiceParams: params,
	}
}

func (s *webhookService) Process(ctx context.Context, payload []byte, header http.Header) (*WebhookResult, error) {
	result := &WebhookResult{State: webhook.StateRawBodyCaptured}

	verification, err := webhook.Authenticate(s.Verifier, payload, header)
	if err != nil {
		result.State = webhook.StateRejected
		s.Logger.Errorw("webhook signature verification failed",
			"request_id", types.GetRequestID(ctx),
			"payload_bytes", len(payload),
			"hints", ierr.GetHints(err),
			"error", err,
		)
		s.report(ctx, err, "verify", "")
		return result, err
	}
	result.State = webhook.StateSignatureVerified

	event, err := webhook.Parse(verification, payload)
	if err != nil {
		result.State = webhook.StateRejected
		s.Logger.Warnw("verified webhook payload is malformed",
			"request_id", types.GetRequestID(ctx),
			"error", err,
		)
		return result, err
	}
	result.State = webhook.StateEventParsed
	result.EventID = event.ID()
	result.EventType = event.Type()

	ctx = types.SetEventID(ctx, event.ID())
	log := s.Logger.With(
		"event_id", event.ID(),
		"event_type", event.Type(),
		"request_id", types.GetRequestID(ctx),
	)

	dedupKey := cache.GenerateKey(cache.PrefixWebhookEvent, event.ID())
	if !s.EventCache.Add(ctx, dedupKey, time.Now().Unix(), s.Config.Webhook.DedupTTL) {
		log.Infow("duplicate webhook delivery, skipping dispatch")
		result.Duplicate = true
		result.State = webhook.StateAcknowledged
		return result, nil
	}

	log.Infow("dispatching webhook event",
		"kind", event.Kind(),
		"livemode", event.Livemode(),
		"api_version", event.APIVersion(),
		"signing_scheme", event.Scheme(),
	)
	result.State = webhook.StateDispatched

	if err := s.Dispatcher.Dispatch(ctx, event); err != nil {
		// release the claim so a redelivery is dispatched again
		s.EventCache.Delete(ctx, dedupKey)

		log.Errorw("webhook handler failed, acknowledging anyway", "error", err)
		s.report(ctx, err, "dispatch", event.ID())

		result.HandlerErr = err
		result.State = webhook.StateAcknowledgedWithWarning
		return result, nil
	}

	result.State = webhook.StateAcknowledged
	return result, nil
}

func (s *webhookService) report(ctx context.Context, err error, stage, eventID string) {
	if s.Reporter == nil {
		return
	}
	tags := map[string]string{"webhook_stage": stage}
	if eventID != "" {
		tags["event_id"] = eventID
	}
	s.Reporter.CaptureException(ctx, err, tags)
}
