package webhook

import (
	"context"

	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/sourcegraph/conc/panics"
)

// HandlerFunc handles one kind of verified event
type HandlerFunc func(ctx context.Context, event *VerifiedEvent) error

// Registrar contributes handlers to the dispatch table at startup
type Registrar interface {
	RegisterHandlers(d *Dispatcher)
}

// Dispatcher routes verified events through a lookup table keyed by event kind.
// Handlers are registered at startup; the table is read-only afterwards.
type Dispatcher struct {
	handlers map[types.WebhookEventType]HandlerFunc
	logger   *logger.Logger
}

// NewDispatcher creates a dispatcher whose only entry acknowledges unrecognized events
func NewDispatcher(logger *logger.Logger, registrars ...Registrar) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[types.WebhookEventType]HandlerFunc),
		logger:   logger,
	}
	d.handlers[types.WebhookEventTypeUnrecognized] = d.ignore

	for _, r := range registrars {
		r.RegisterHandlers(d)
	}
	return d
}

// Register sets the handler for eventType, replacing any previous one
func (d *Dispatcher) Register(eventType types.WebhookEventType, handler HandlerFunc) {
	d.handlers[eventType] = handler
}

// Handles reports whether eventType has a registered handler
func (d *Dispatcher) Handles(eventType types.WebhookEventType) bool {
	_, ok := d.handlers[eventType]
	return ok
}

// Dispatch runs the handler for event.Kind(). Handler errors and panics are
// returned marked ErrHandler.
func (d *Dispatcher) Dispatch(ctx context.Context, event *VerifiedEvent) error {
	handler, ok := d.handlers[event.Kind()]
	if !ok {
		handler = d.handlers[types.WebhookEventTypeUnrecognized]
	}

	var err error
	var pc panics.Catcher
	pc.Try(func() {
		err = handler(ctx, event)
	})

	if recovered := pc.Recovered(); recovered != nil {
		return ierr.WithError(recovered.AsError()).
			WithHint("Webhook handler panicked").
			WithReportableDetails(map[string]any{
				"event_id":   event.ID(),
				"event_type": event.Type(),
			}).
			Mark(ierr.ErrHandler)
	}

	if err != nil {
		if ierr.IsHandler(err) {
			return err
		}
		return ierr.WithError(err).
			WithHint("Webhook handler failed").
			WithReportableDetails(map[string]any{
				"event_id":   event.ID(),
				"event_type": event.Type(),
			}).
			Mark(ierr.ErrHandler)
	}

	return nil
}

func (d *Dispatcher) ignore(_ context.Context, event *VerifiedEvent) error {
	d.logger.Debugw("ignoring unhandled webhook event",
		"event_id", event.ID(),
		"event_type", event.Type(),
	)
	return nil
}
