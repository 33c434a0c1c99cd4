package service

import (
	"context"

	"github.com/Filament-Bry/gd-checkout/internal/cache"
	"github.com/Filament-Bry/gd-checkout/internal/config"
	"github.com/Filament-Bry/gd-checkout/internal/integration/stripe"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/sentry"
	"github.com/Filament-Bry/gd-checkout/internal/webhook"
)

// ErrorReporter receives errors worth alerting on
type ErrorReporter interface {
	CaptureException(ctx context.Context, err error, tags map[string]string)
}

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Payment provider
	Sessions stripe.SessionCreator

	// Inbound webhooks
	Verifier   webhook.Verifier
	Dispatcher *webhook.Dispatcher
	EventCache cache.Cache

	Reporter ErrorReporter
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	stripeClient *stripe.Client,
	verifier webhook.Verifier,
	dispatcher *webhook.Dispatcher,
	sentryService *sentry.Service,
) ServiceParams {
	return ServiceParams{
		Logger:     logger,
		Config:     config,
		Sessions:   stripeClient,
		Verifier:   verifier,
		Dispatcher: dispatcher,
		EventCache: cache.NewInMemoryCache(config.Webhook.DedupTTL),
		Reporter:   sentryService,
	}
}
