package webhook

import (
	inbound "github.com/Filament-Bry/gd-checkout/internal/webhook"
	"go.uber.org/fx"
)

// Module contributes the Stripe checkout handlers to the webhook dispatch table
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewHandler,
			fx.As(new(inbound.Registrar)),
			fx.ResultTags(inbound.HandlerGroup),
		),
	),
)
