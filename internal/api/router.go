package api

import (
	"net/http"

	v1 "github.com/Filament-Bry/gd-checkout/internal/api/v1"
	"github.com/Filament-Bry/gd-checkout/internal/config"
	"github.com/Filament-Bry/gd-checkout/internal/logger"
	"github.com/Filament-Bry/gd-checkout/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Checkout *v1.CheckoutHandler
	Webhook  *v1.WebhookHandler
	Health   *v1.HealthHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(v1.MethodNotAllowed)

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.SentryScopeMiddleware,
	)

	router.GET("/health", handlers.Health.Health)

	api := router.Group("/api")
	{
		checkout := api.Group("/create-checkout")
		checkout.Use(
			middleware.CORSMiddleware(cfg),
			middleware.ErrorHandler(logger),
			middleware.RateLimitMiddleware(cfg),
		)
		{
			checkout.GET("", handlers.Checkout.CreateCheckoutRedirect)
			checkout.POST("", handlers.Checkout.CreateCheckoutSession)
			// answered by the CORS middleware
			checkout.OPTIONS("", func(c *gin.Context) {})
			// registered on the group so browsers can read the 405 body
			for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead} {
				checkout.Handle(method, "", v1.MethodNotAllowed)
			}
		}

		// no CORS, error rendering or binding here, the provider calls server to server
		api.POST("/stripe-webhook", handlers.Webhook.HandleStripeWebhook)
	}

	return router
}
