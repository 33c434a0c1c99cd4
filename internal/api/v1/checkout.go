package v1

import (
	"net/http"

	"github.com/Filament-Bry/gd-checkout/internal/api/dto"
	ierr "github.com/Filament-Bry/gd-checkout/internal/errors"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/service"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

func NewCheckoutHandler(service service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log,
	}
}

// CreateCheckoutRedirect handles GET /api/create-checkout, used by plain links and forms.
// The caller is sent straight to the hosted payment page.
func (h *CheckoutHandler) CreateCheckoutRedirect(c *gin.Context) {
	var req dto.CreateCheckoutRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateSession(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.Redirect(http.StatusSeeOther, resp.URL)
}

// CreateCheckoutSession handles POST /api/create-checkout and returns the session url as JSON
func (h *CheckoutHandler) CreateCheckoutSession(c *gin.Context) {
	var req dto.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateSession(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
