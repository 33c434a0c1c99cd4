package webhook

import (
	"encoding/json"
	"time"

	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/samber/lo"
)

// envelope mirrors the top level fields of a Stripe event
type envelope struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Created    int64  `json:"created"`
	Livemode   bool   `json:"livemode"`
	APIVersion string `json:"api_version"`
	Data       struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// VerifiedEvent is a provider event whose payload passed signature verification.
// Parse is the only way to obtain one.
type VerifiedEvent struct {
	id         string
	eventType  types.WebhookEventType
	kind       types.WebhookEventType
	created    time.Time
	livemode   bool
	apiVersion string
	object     json.RawMessage
	scheme     types.SigningScheme
}

// Parse decodes payload into a VerifiedEvent. verification must have been
// minted by Authenticate for these exact bytes.
func Parse(verification Verification, payload []byte) (*VerifiedEvent, error) {
	if !verification.covers(payload) {
		return nil, ierr.NewError("payload was not verified").
			WithHint("Invalid webhook signature").
			Mark(ierr.ErrSignature)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Malformed event payload").
			Mark(ierr.ErrValidation)
	}

	id := env.ID
	if id == "" {
		id = verification.deliveryID
	}
	if id == "" || env.Type == "" {
		return nil, ierr.NewError("event is missing id or type").
			WithHint("Malformed event payload").
			WithReportableDetails(map[string]any{
				"has_id":   id != "",
				"has_type": env.Type != "",
			}).
			Mark(ierr.ErrValidation)
	}

	eventType := types.WebhookEventType(env.Type)
	kind := types.WebhookEventTypeUnrecognized
	if lo.Contains(types.KnownWebhookEventTypes, eventType) {
		kind = eventType
	}

	var created time.Time
	if env.Created > 0 {
		created = time.Unix(env.Created, 0).UTC()
	}

	return &VerifiedEvent{
		id:         id,
		eventType:  eventType,
		kind:       kind,
		created:    created,
		livemode:   env.Livemode,
		apiVersion: env.APIVersion,
		object:     env.Data.Object,
		scheme:     verification.scheme,
	}, nil
}

func (e *VerifiedEvent) ID() string {
	return e.id
}

// Type is the event type exactly as delivered
func (e *VerifiedEvent) Type() types.WebhookEventType {
	return e.eventType
}

// Kind is Type for event types with a dedicated handler and
// WebhookEventTypeUnrecognized for everything else
func (e *VerifiedEvent) Kind() types.WebhookEventType {
	return e.kind
}

func (e *VerifiedEvent) Created() time.Time {
	return e.created
}

func (e *VerifiedEvent) Livemode() bool {
	return e.livemode
}

func (e *VerifiedEvent) APIVersion() string {
	return e.apiVersion
}

func (e *VerifiedEvent) Scheme() types.SigningScheme {
	return e.scheme
}

// DecodeObject unmarshals data.object into v
func (e *VerifiedEvent) DecodeObject(v any) error {
	if len(e.object) == 0 || string(e.object) == "null" {
		return ierr.NewError("event has no data object").
			WithHint("Malformed event payload").
			WithReportableDetails(map[string]any{
				"event_id":   e.id,
				"event_type": e.eventType,
			}).
			Mark(ierr.ErrValidation)
	}

	if err := json.Unmarshal(e.object, v); err != nil {
		return ierr.WithError(err).
			WithHint("Malformed event data object").
			WithReportableDetails(map[string]any{
				"event_id":   e.id,
				"event_type": e.eventType,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
