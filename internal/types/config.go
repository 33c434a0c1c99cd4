package types

type RunMode string

const (
	// ModeLocal is the mode for running the API server locally
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running just the API server
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI is the mode for running the API server in AWS Lambda
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// SigningScheme selects how inbound webhook deliveries are authenticated
type SigningScheme string

const (
	// SigningSchemeStripe verifies the Stripe-Signature header (t=...,v1=...)
	SigningSchemeStripe SigningScheme = "stripe"
	// SigningSchemeSvix verifies Standard Webhooks headers (svix-id, svix-timestamp, svix-signature)
	SigningSchemeSvix SigningScheme = "svix"
)
