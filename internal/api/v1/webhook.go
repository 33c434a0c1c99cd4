package v1

import (
	"io"
	"net/http"
	"strings"

	"github.com/Filament-Bry/gd-checkout/internal/api/dto"
	"github.com/Filament-Bry/gd-checkout/internal/config"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/service"
	"github.com/Filament-Bry/gd-checkout/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// WebhookHandler receives provider event deliveries
type WebhookHandler struct {
	config  *config.Configuration
	service service.WebhookService
	logger  *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(cfg *config.Configuration, service service.WebhookService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		config:  cfg,
		service: service,
		logger:  logger,
	}
}

// HandleStripeWebhook handles POST /api/stripe-webhook.
// The body is read raw; signatures are computed over the exact bytes received.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.config.Webhook.MaxBodyBytes)
	payload, err := io.ReadAll(body)
	if err != nil {
		h.logger.Warnw("failed to read webhook body",
			"request_id", types.GetRequestID(c.Request.Context()),
			"max_body_bytes", h.config.Webhook.MaxBodyBytes,
			"error", err,
		)
		c.JSON(http.StatusBadRequest, dto.ErrorMessage{Error: "Invalid request body"})
		return
	}

	result, err := h.service.Process(c.Request.Context(), payload, c.Request.Header)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorMessage{Error: webhookErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, dto.WebhookAck{
		Received:  true,
		Duplicate: result.Duplicate,
	})
}

func webhookErrorMessage(err error) string {
	hint, ok := lo.Find(ierr.GetHints(err), func(h string) bool {
		return strings.TrimSpace(h) != ""
	})
	if ok {
		return "Webhook Error: " + hint
	}
	if ierr.IsSignature(err) {
		return "Webhook Error: invalid signature"
	}
	return "Webhook Error: malformed payload"
}
