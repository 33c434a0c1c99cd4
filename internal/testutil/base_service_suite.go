package testutil

import (
	"context"
	"net/http"
	"time"

	"github.com/Filament-Bry/gd-checkout/internal/config"
	stripewebhook "github.com/Filament-Bry/gd-checkout/internal/integration/stripe/webhook"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/Filament-Bry/gd-checkout/internal/validator"
	"github.com/Filament-Bry/gd-checkout/internal/webhook"
	"github.com/stretchr/testify/suite"
)

// TestWebhookSecret is the endpoint secret configured for every suite
const TestWebhookSecret = "whsec_test_secret"

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	logger     *logger.Logger
	config     *config.Configuration
	now        time.Time
	sessions   *FakeSessionCreator
	notifier   *RecordingNotifier
	reporter   *RecordingReporter
	dispatcher *webhook.Dispatcher
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Stripe.WebhookSecret = TestWebhookSecret
	s.config = cfg
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.now = time.Now().UTC()
	s.sessions = NewFakeSessionCreator()
	s.notifier = &RecordingNotifier{}
	s.reporter = &RecordingReporter{}
	s.dispatcher = webhook.NewDispatcher(s.logger, stripewebhook.NewHandler(s.config, s.notifier, s.logger))
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.sessions.Clear()
	s.notifier.Clear()
	s.reporter.Clear()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

func (s *BaseServiceTestSuite) GetSessions() *FakeSessionCreator {
	return s.sessions
}

func (s *BaseServiceTestSuite) GetNotifier() *RecordingNotifier {
	return s.notifier
}

func (s *BaseServiceTestSuite) GetReporter() *RecordingReporter {
	return s.reporter
}

// GetDispatcher returns a dispatch table with the Stripe checkout handlers
// wired to the recording notifier
func (s *BaseServiceTestSuite) GetDispatcher() *webhook.Dispatcher {
	return s.dispatcher
}

// SignStripe returns headers carrying a valid signature over payload
func (s *BaseServiceTestSuite) SignStripe(payload []byte) http.Header {
	return StripeSignatureHeader(payload, s.config.Stripe.WebhookSecret, time.Now())
}

func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
