package webhook

import (
	"github.com/Filament-Bry/gd-checkout/internal/config"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/integration/stripe"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/svix"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"go.uber.org/fx"
)

// HandlerGroup is the fx value group Registrars are collected from
const HandlerGroup = `group:"webhook_handlers"`

// Module provides the verifier and the dispatch table
var Module = fx.Options(
	fx.Provide(
		NewVerifier,
		fx.Annotate(
			NewDispatcher,
			fx.ParamTags(``, HandlerGroup),
		),
	),
)

// NewVerifier returns the verifier for the configured signing scheme
func NewVerifier(cfg *config.Configuration, logger *logger.Logger) (Verifier, error) {
	logger.Infow("configuring webhook verifier",
		"signing_scheme", cfg.Stripe.SigningScheme,
		"has_webhook_secret", cfg.Stripe.WebhookSecret != "",
	)

	switch cfg.Stripe.SigningScheme {
	case types.SigningSchemeStripe:
		return stripe.NewSignatureVerifier(cfg), nil
	case types.SigningSchemeSvix:
		v, err := svix.NewVerifier(cfg)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, ierr.NewError("unsupported signing scheme").
			WithHintf("Signing scheme must be %s or %s", types.SigningSchemeStripe, types.SigningSchemeSvix).
			Mark(ierr.ErrValidation)
	}
}
