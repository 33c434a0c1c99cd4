package notification

import (
	"context"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	"github.com/Filament-Bry/gd-checkout/internal/email"
	"github.com/Filament-Bry/gd-checkout/internal/httpclient"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/sentry"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		NewSinks,
		provideFanout,
		func(f *Fanout) Notifier { return f },
	),
	fx.Invoke(registerDrain),
)

// NewSinks builds the enabled sinks. A sink missing its endpoint or credentials is skipped.
func NewSinks(cfg *config.Configuration, client httpclient.Client, mailer *email.Email, logger *logger.Logger) []Sink {
	var sinks []Sink

	if cfg.Sinks.Sheets.Enabled && cfg.Sinks.Sheets.URL != "" {
		sinks = append(sinks, NewSheetsSink(client, cfg.Sinks.Sheets.URL))
	}

	if cfg.Sinks.Email.Enabled && mailer.IsEnabled() && cfg.Sinks.Email.ToAddress != "" {
		sinks = append(sinks, NewEmailSink(mailer, cfg.Sinks.Email.ToAddress))
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logger.Infow("notification sinks configured", "sinks", names)

	return sinks
}

func provideFanout(cfg *config.Configuration, sinks []Sink, reporter *sentry.Service, logger *logger.Logger) *Fanout {
	return NewFanout(cfg, sinks, reporter, logger)
}

// registerDrain lets detached deliveries finish before the process exits
func registerDrain(lc fx.Lifecycle, f *Fanout, logger *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := f.Wait(ctx); err != nil {
				logger.Warnw("shutting down with notifications still in flight", "error", err)
			}
			return nil
		},
	})
}
