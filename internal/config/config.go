package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Stripe     StripeConfig     `mapstructure:"stripe" validate:"required"`
	Checkout   CheckoutConfig   `mapstructure:"checkout" validate:"required"`
	Webhook    WebhookConfig    `mapstructure:"webhook" validate:"required"`
	Sinks      SinksConfig      `mapstructure:"sinks"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required,oneof=local api aws_lambda_api"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// StripeConfig holds the provider credentials. Secrets are never logged.
type StripeConfig struct {
	SecretKey         string              `mapstructure:"secret_key" validate:"required"`
	WebhookSecret     string              `mapstructure:"webhook_secret" validate:"required"`
	SigningScheme     types.SigningScheme `mapstructure:"signing_scheme" validate:"required,oneof=stripe svix"`
	WebhookTolerance  time.Duration       `mapstructure:"webhook_tolerance" validate:"gt=0"`
	MaxNetworkRetries int64               `mapstructure:"max_network_retries" validate:"gte=0"`
	// APIBase overrides the Stripe API URL, e.g. for stripe-mock
	APIBase string `mapstructure:"api_base" validate:"omitempty,url"`
}

type CheckoutConfig struct {
	MinAmount          int64           `mapstructure:"min_amount" validate:"gt=0"`
	MaxAmount          int64           `mapstructure:"max_amount" validate:"omitempty,gtfield=MinAmount"` // 0 disables the upper bound
	DefaultCurrency    string          `mapstructure:"default_currency" validate:"required,len=3,alpha"`
	DefaultDescription string          `mapstructure:"default_description" validate:"required"`
	SuccessURL         string          `mapstructure:"success_url" validate:"required,url"`
	CancelURL          string          `mapstructure:"cancel_url" validate:"required,url"`
	AllowedOrigins     []string        `mapstructure:"allowed_origins"`
	RateLimit          RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig configures the token bucket in front of session creation. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gte=0"`
	Burst int     `mapstructure:"burst" validate:"gte=0"`
}

type WebhookConfig struct {
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	DedupTTL      time.Duration `mapstructure:"dedup_ttl" validate:"gte=0"`
	AsyncFanout   bool          `mapstructure:"async_fanout"`
	FanoutTimeout time.Duration `mapstructure:"fanout_timeout" validate:"gt=0"`
}

type SinksConfig struct {
	Sheets SheetsSinkConfig `mapstructure:"sheets"`
	Email  EmailSinkConfig  `mapstructure:"email"`
}

// SheetsSinkConfig points at a spreadsheet append endpoint (e.g. an Apps Script web app)
type SheetsSinkConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url" validate:"required_if=Enabled true"`
}

type EmailSinkConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address" validate:"omitempty,email"`
	ToAddress   string `mapstructure:"to_address" validate:"omitempty,email"`
	ReplyTo     string `mapstructure:"reply_to" validate:"omitempty,email"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	// Modify config paths to ensure config.yaml is found
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/gd-checkout")

	setDefaults(v)

	// Set up environment variables support
	v.SetEnvPrefix("GCHECKOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.signing_scheme", types.SigningSchemeStripe)
	v.SetDefault("stripe.webhook_tolerance", 5*time.Minute)
	v.SetDefault("stripe.max_network_retries", 2)
	v.SetDefault("stripe.api_base", "")

	v.SetDefault("checkout.min_amount", 50)
	v.SetDefault("checkout.max_amount", 99999999)
	v.SetDefault("checkout.default_currency", types.DefaultCurrency)
	v.SetDefault("checkout.default_description", "Gabriola Directory — Listings & Ads")
	v.SetDefault("checkout.success_url", "https://gabrioladirectory.ca/?paid=1")
	v.SetDefault("checkout.cancel_url", "https://gabrioladirectory.ca/?paid=0")
	v.SetDefault("checkout.allowed_origins", []string{
		"https://gabrioladirectory.ca",
		"https://www.gabrioladirectory.ca",
	})
	v.SetDefault("checkout.rate_limit.rps", 5)
	v.SetDefault("checkout.rate_limit.burst", 10)

	v.SetDefault("webhook.max_body_bytes", 1<<20)
	v.SetDefault("webhook.dedup_ttl", 24*time.Hour)
	v.SetDefault("webhook.async_fanout", true)
	v.SetDefault("webhook.fanout_timeout", 10*time.Second)

	v.SetDefault("sinks.sheets.enabled", false)
	v.SetDefault("sinks.sheets.url", "")
	v.SetDefault("sinks.email.enabled", false)
	v.SetDefault("sinks.email.api_key", "")
	v.SetDefault("sinks.email.from_address", "noreply@gabrioladirectory.ca")
	v.SetDefault("sinks.email.to_address", "info@gabrioladirectory.ca")
	v.SetDefault("sinks.email.reply_to", "")

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development and tests.
// Credentials are placeholders and must be replaced before talking to Stripe.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Stripe: StripeConfig{
			SecretKey:         "sk_test_placeholder",
			WebhookSecret:     "whsec_placeholder",
			SigningScheme:     types.SigningSchemeStripe,
			WebhookTolerance:  5 * time.Minute,
			MaxNetworkRetries: 0,
		},
		Checkout: CheckoutConfig{
			MinAmount:          50,
			MaxAmount:          99999999,
			DefaultCurrency:    types.DefaultCurrency,
			DefaultDescription: "Gabriola Directory — Listings & Ads",
			SuccessURL:         "https://gabrioladirectory.ca/?paid=1",
			CancelURL:          "https://gabrioladirectory.ca/?paid=0",
			AllowedOrigins: []string{
				"https://gabrioladirectory.ca",
				"https://www.gabrioladirectory.ca",
			},
		},
		Webhook: WebhookConfig{
			MaxBodyBytes:  1 << 20,
			DedupTTL:      24 * time.Hour,
			AsyncFanout:   false,
			FanoutTimeout: 10 * time.Second,
		},
		Sinks: SinksConfig{
			Email: EmailSinkConfig{
				FromAddress: "noreply@gabrioladirectory.ca",
				ToAddress:   "info@gabrioladirectory.ca",
			},
		},
	}
}
