package stripe

import (
	"github.com/Filament-Bry/gd-checkout/internal/config"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Client owns the stripe-go client for the process. It is built once from
// configuration and shared by every request.
type Client struct {
	api    *stripe.Client
	logger *logger.Logger
}

// NewClient creates a new Stripe client
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	backendConfig := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(cfg.Stripe.MaxNetworkRetries),
		LeveledLogger:     logger,
	}
	if cfg.Stripe.APIBase != "" {
		backendConfig.URL = stripe.String(cfg.Stripe.APIBase)
	}

	api := stripe.NewClient(cfg.Stripe.SecretKey,
		stripe.WithBackends(stripe.NewBackendsWithConfig(backendConfig)),
	)

	logger.Debugw("stripe client configured",
		"has_secret_key", cfg.Stripe.SecretKey != "",
		"api_base_override", cfg.Stripe.APIBase != "",
		"max_network_retries", cfg.Stripe.MaxNetworkRetries,
	)

	return &Client{
		api:    api,
		logger: logger,
	}
}
