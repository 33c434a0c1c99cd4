package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Filament-Bry/gd-checkout/internal/api"
	v1 "github.com/Filament-Bry/gd-checkout/internal/api/v1"
	"github.com/Filament-Bry/gd-checkout/internal/config"
	"github.com/Filament-Bry/gd-checkout/internal/email"
	"github.com/Filament-Bry/gd-checkout/internal/httpclient"
	"github.com/Filament-Bry/gd-checkout/internal/integration/stripe"
	stripewebhook "github.com/Filament-Bry/gd-checkout/internal/integration/stripe/webhook"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/notification"
	"github.com/Filament-Bry/gd-checkout/internal/sentry"
	"github.com/Filament-Bry/gd-checkout/internal/service"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/Filament-Bry/gd-checkout/internal/validator"
	"github.com/Filament-Bry/gd-checkout/internal/webhook"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// HTTP Client
			provideHTTPClient,

			// Email
			provideEmailClient,
			email.NewEmail,

			// Payment provider
			stripe.NewClient,
		),
		sentry.Module(),
	)

	// Webhook dispatch table, its handlers and the notification fan-out
	opts = append(opts,
		webhook.Module,
		stripewebhook.Module,
		notification.Module,
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewCheckoutService,
			service.NewWebhookService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHTTPClient(cfg *config.Configuration) httpclient.Client {
	return httpclient.NewClientWithTimeout(cfg.Webhook.FanoutTimeout)
}

func provideEmailClient(cfg *config.Configuration) (*email.EmailClient, error) {
	return email.NewEmailClient(email.Config{
		Enabled:     cfg.Sinks.Email.Enabled,
		APIKey:      cfg.Sinks.Email.APIKey,
		FromAddress: cfg.Sinks.Email.FromAddress,
		ReplyTo:     cfg.Sinks.Email.ReplyTo,
	})
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	checkoutService service.CheckoutService,
	webhookService service.WebhookService,
) api.Handlers {
	return api.Handlers{
		Checkout: v1.NewCheckoutHandler(checkoutService, logger),
		Webhook:  v1.NewWebhookHandler(cfg, webhookService, logger),
		Health:   v1.NewHealthHandler(),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	log.Infow("starting checkout service",
		"mode", mode,
		"signing_scheme", cfg.Stripe.SigningScheme,
		"has_stripe_key", cfg.Stripe.SecretKey != "",
		"has_webhook_secret", cfg.Stripe.WebhookSecret != "",
		"async_fanout", cfg.Webhook.AsyncFanout,
	)

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(lc, r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func startAWSLambdaAPI(lc fx.Lifecycle, r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// lambda.Start blocks for the life of the execution environment
			go lambda.Start(ginLambda.ProxyWithContext)
			return nil
		},
	})
}
